package recognition

// Capability provides an engine if the environment supports one.
type Capability interface {
	Name() string
	Available() bool
	NewEngine() Engine
}

// Unsupported is the null capability used when no engine is available.
type Unsupported struct{}

func (Unsupported) Name() string      { return "unsupported" }
func (Unsupported) Available() bool   { return false }
func (Unsupported) NewEngine() Engine { return nil }

// Detect returns the first available capability, in preference order, or
// Unsupported.
func Detect(caps ...Capability) Capability {
	for _, c := range caps {
		if c != nil && c.Available() {
			return c
		}
	}
	return Unsupported{}
}
