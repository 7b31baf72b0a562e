package correction

import "sort"

// Profile is a named accent or dialect with the language tag handed to the
// recognition engine and the table applied to its transcripts.
type Profile struct {
	ID       string
	Name     string
	Language string
	Table    *Table
}

// DefaultProfileID is used when a requested profile is unknown.
const DefaultProfileID = "general"

// childSpeech covers common substitutions in young children's speech
// (w for r/l, f for th, dropped initial s). Shared by the children's accent
// profile and the nursery and early-primary age groups.
var childSpeech = []Rule{
	{`wabbit(s?)`, "rabbit${1}"},
	{`lellow|yewwow|wellow`, "yellow"},
	{`bwue`, "blue"},
	{`gween`, "green"},
	{`pwease`, "please"},
	{`fank you|fankyou|fank oo`, "thank you"},
	{`fing(s?)`, "thing${1}"},
	{`pasketti|basketti|sketti|pasghetti`, "spaghetti"},
	{`aminal(s?)`, "animal${1}"},
	{`efalant(s?)|ephelant(s?)|elefunt(s?)`, "elephant${1}${2}${3}"},
	{`hostipal`, "hospital"},
	{`brekfust|brekkist`, "breakfast"},
	{`bwother`, "brother"},
	{`fwend(s?)`, "friend${1}"},
	{`twain(s?)`, "train${1}"},
	{`twee(s?)`, "tree${1}"},
	{`wittle|widdle`, "little"},
	{`puter`, "computer"},
	{`cwayon(s?)`, "crayon${1}"},
	{`pider(s?)`, "spider${1}"},
	{`poon`, "spoon"},
	{`nowman`, "snowman"},
	{`dat`, "that"},
	{`dis`, "this"},
	{`dem`, "them"},
	{`dey`, "they"},
	{`wiv`, "with"},
	{`wook`, "look"},
	{`pwincess`, "princess"},
	{`chockit|chocklit`, "chocolate"},
}

var profiles = map[string]*Profile{
	"general": {
		ID: "general", Name: "General British", Language: "en-GB",
		Table: MustTable(
			Rule{`gonna`, "going to"},
			Rule{`wanna`, "want to"},
			Rule{`gotta`, "got to"},
			Rule{`gimme`, "give me"},
			Rule{`lemme`, "let me"},
			Rule{`dunno`, "don't know"},
			Rule{`kinda`, "kind of"},
			Rule{`sorta`, "sort of"},
		),
	},
	"children": {
		ID: "children", Name: "Children's speech", Language: "en-GB",
		Table: MustTable(childSpeech...),
	},
	"scottish": {
		ID: "scottish", Name: "Scottish", Language: "en-GB",
		Table: MustTable(
			Rule{`dinnae|dinna`, "don't"},
			Rule{`cannae|canna`, "can't"},
			Rule{`wasnae`, "wasn't"},
			Rule{`isnae`, "isn't"},
			Rule{`didnae`, "didn't"},
			Rule{`wouldnae`, "wouldn't"},
			Rule{`couldnae`, "couldn't"},
			Rule{`gonnae`, "going to"},
			Rule{`aye`, "yes"},
			Rule{`naw`, "no"},
			Rule{`wee`, "little"},
			Rule{`ken`, "know"},
			Rule{`bairns`, "children"},
			Rule{`bairn`, "child"},
			Rule{`lassie`, "girl"},
			Rule{`laddie`, "boy"},
			Rule{`greetin`, "crying"},
			Rule{`outwith`, "outside"},
			Rule{`aboot`, "about"},
			Rule{`oot`, "out"},
			Rule{`hoose`, "house"},
			Rule{`doon`, "down"},
			Rule{`noo`, "now"},
			Rule{`whit`, "what"},
			Rule{`dae`, "do"},
			Rule{`ye`, "you"},
		),
	},
	"welsh": {
		ID: "welsh", Name: "Welsh English", Language: "en-GB",
		Table: MustTable(
			Rule{`now in a minute`, "soon"},
			Rule{`cwtch`, "cuddle"},
			Rule{`tamping`, "furious"},
			Rule{`chopsy`, "talkative"},
			Rule{`twp`, "silly"},
			Rule{`bampa`, "grandad"},
			Rule{`mamgu`, "grandma"},
			Rule{`mam`, "mum"},
			Rule{`diolch`, "thank you"},
			Rule{`lush`, "lovely"},
		),
	},
	"irish": {
		ID: "irish", Name: "Irish English", Language: "en-IE",
		Table: MustTable(
			Rule{`giving out`, "complaining"},
			Rule{`amn't`, "am not"},
			Rule{`yous|youse`, "you"},
			Rule{`ye`, "you"},
			Rule{`craic`, "fun"},
			Rule{`eejit`, "idiot"},
			Rule{`mammy`, "mum"},
			Rule{`gaff`, "house"},
		),
	},
	"northern-irish": {
		ID: "northern-irish", Name: "Northern Irish", Language: "en-GB",
		Table: MustTable(
			Rule{`catch yourself on`, "be sensible"},
			Rule{`bout ye`, "how are you"},
			Rule{`dead on`, "fine"},
			Rule{`weans|wains`, "children"},
			Rule{`wean|wain`, "child"},
			Rule{`yous|youse`, "you"},
			Rule{`wee`, "little"},
		),
	},
	"geordie": {
		ID: "geordie", Name: "Geordie", Language: "en-GB",
		Table: MustTable(
			Rule{`howay|haway`, "come on"},
			Rule{`divvent`, "don't"},
			Rule{`gannin`, "going"},
			Rule{`gan`, "go"},
			Rule{`canny`, "nice"},
			Rule{`hinny`, "dear"},
			Rule{`bairns`, "children"},
			Rule{`bairn`, "child"},
			Rule{`nowt`, "nothing"},
			Rule{`owt`, "anything"},
			Rule{`wor`, "our"},
			Rule{`yem`, "home"},
			Rule{`clarty`, "dirty"},
		),
	},
	"scouse": {
		ID: "scouse", Name: "Scouse", Language: "en-GB",
		Table: MustTable(
			Rule{`me mam`, "my mum"},
			Rule{`me dad`, "my dad"},
			Rule{`our kid`, "my brother"},
			Rule{`arl fella`, "dad"},
			Rule{`made up`, "delighted"},
			Rule{`scran`, "food"},
			Rule{`bevvy`, "drink"},
			Rule{`giz`, "give me"},
		),
	},
	"yorkshire": {
		ID: "yorkshire", Name: "Yorkshire", Language: "en-GB",
		Table: MustTable(
			Rule{`summat`, "something"},
			Rule{`nowt`, "nothing"},
			Rule{`owt`, "anything"},
			Rule{`reet`, "right"},
			Rule{`aye`, "yes"},
			Rule{`nay`, "no"},
			Rule{`thee|tha`, "you"},
			Rule{`laikin`, "playing"},
			Rule{`laik`, "play"},
			Rule{`mardy`, "grumpy"},
			Rule{`ginnel|snicket`, "alley"},
		),
	},
	"cockney": {
		ID: "cockney", Name: "London / Cockney", Language: "en-GB",
		Table: MustTable(
			Rule{`innit`, "isn't it"},
			Rule{`ain't`, "isn't"},
			Rule{`nuffink|nuffin`, "nothing"},
			Rule{`somefink|somefin`, "something"},
			Rule{`anyfink|anyfin`, "anything"},
			Rule{`everyfink|everyfin`, "everything"},
			Rule{`fink`, "think"},
			Rule{`bruvver|bruv`, "brother"},
			Rule{`muvver`, "mother"},
			Rule{`farver|faver`, "father"},
			Rule{`bovver`, "bother"},
			Rule{`wiv`, "with"},
			Rule{`wot`, "what"},
		),
	},
	"west-country": {
		ID: "west-country", Name: "West Country", Language: "en-GB",
		Table: MustTable(
			Rule{`where's it to`, "where is it"},
			Rule{`proper job`, "well done"},
			Rule{`gert|gurt`, "very"},
			Rule{`dreckly`, "later"},
			Rule{`babber`, "baby"},
			Rule{`emmet(s?)`, "tourist${1}"},
			Rule{`bist`, "are"},
			Rule{`lush`, "lovely"},
		),
	},
	"midlands": {
		ID: "midlands", Name: "Midlands / Black Country", Language: "en-GB",
		Table: MustTable(
			Rule{`ow bist`, "how are you"},
			Rule{`ta-?ra`, "goodbye"},
			Rule{`bostin`, "brilliant"},
			Rule{`babby`, "baby"},
			Rule{`yow`, "you"},
			Rule{`summat`, "something"},
			Rule{`mardy`, "grumpy"},
		),
	},
	"us": {
		ID: "us", Name: "American English", Language: "en-US",
		Table: MustTable(
			Rule{`color(s?)`, "colour${1}"},
			Rule{`favorite(s?)`, "favourite${1}"},
			Rule{`center(s?)`, "centre${1}"},
			Rule{`theater(s?)`, "theatre${1}"},
			Rule{`neighbor(s?)`, "neighbour${1}"},
			Rule{`behavior`, "behaviour"},
			Rule{`organize`, "organise"},
			Rule{`realize`, "realise"},
			Rule{`gray`, "grey"},
			Rule{`math`, "maths"},
			Rule{`mom`, "mum"},
		),
	},
}

// LookupProfile returns the profile for id and whether it exists.
func LookupProfile(id string) (*Profile, bool) {
	p, ok := profiles[id]
	return p, ok
}

// ProfileIDs returns all profile ids, sorted.
func ProfileIDs() []string {
	ids := make([]string, 0, len(profiles))
	for id := range profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
