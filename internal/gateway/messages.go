package gateway

import (
	"github.com/lexiqai/voice-input/internal/commands"
	"github.com/lexiqai/voice-input/internal/recognition"
	"github.com/lexiqai/voice-input/internal/store"
)

// Client message types
const (
	MsgHello       = "hello"
	MsgStart       = "start"
	MsgStop        = "stop"
	MsgAbort       = "abort"
	MsgResult      = "result"
	MsgEngineStart = "engine_start"
	MsgEngineEnd   = "engine_end"
	MsgEngineError = "engine_error"
	MsgEdit        = "edit"
	MsgCursor      = "cursor"
	MsgClear       = "clear"
	MsgSave        = "save"
)

// Server message types
const (
	MsgState      = "state"
	MsgEngine     = "engine"
	MsgTranscript = "transcript"
	MsgCommand    = "command"
	MsgNoMatch    = "no_match"
	MsgFeedback   = "feedback"
	MsgDictation  = "dictation"
	MsgSaved      = "saved"
	MsgError      = "error"
)

// Session modes
const (
	ModeCommand   = "command"
	ModeDictation = "dictation"
)

// Gateway error kinds, in addition to the recognition error kinds.
const (
	ErrInvalidMessage = "invalid-message"
	ErrRateLimited    = "rate-limited"
	ErrSaveFailed     = "save-failed"
)

// ClientMessage is a JSON message from the client. Fields are populated
// according to Type.
type ClientMessage struct {
	Type string `json:"type" validate:"required"`

	// hello
	SpeechSupported bool   `json:"speech_supported,omitempty"`
	Mode            string `json:"mode,omitempty" validate:"omitempty,oneof=command dictation"`
	Accent          string `json:"accent,omitempty"`
	AgeGroup        string `json:"age_group,omitempty" validate:"omitempty,oneof=nursery early-primary late-primary secondary adult"`
	KeyStage        string `json:"key_stage,omitempty" validate:"omitempty,oneof=early-years ks1 ks2 ks3 ks4"`
	Sensitivity     *int   `json:"sensitivity,omitempty" validate:"omitempty,min=0,max=100"`
	Adaptive        *bool  `json:"adaptive,omitempty"`
	AutoStop        *bool  `json:"auto_stop,omitempty"` // stop server-side recognition after trailing silence

	// result
	Alternatives []recognition.Alternative `json:"alternatives,omitempty"`
	Final        bool                      `json:"final,omitempty"`

	// engine_error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`

	// edit, cursor
	Text   string `json:"text,omitempty"`
	Cursor int    `json:"cursor,omitempty"`
}

// ServerMessage is a JSON message to the client. Exactly one payload is set,
// matching Type.
type ServerMessage struct {
	Type       string                    `json:"type"`
	State      *StatePayload             `json:"state,omitempty"`
	Engine     *recognition.RelayCommand `json:"engine,omitempty"`
	Transcript *TranscriptPayload        `json:"transcript,omitempty"`
	Command    *CommandPayload           `json:"command,omitempty"`
	NoMatch    *NoMatchPayload           `json:"no_match,omitempty"`
	Feedback   string                    `json:"feedback,omitempty"`
	Dictation  *DictationPayload         `json:"dictation,omitempty"`
	Saved      *store.Dictation          `json:"saved,omitempty"`
	Error      *ErrorPayload             `json:"error,omitempty"`
}

// StatePayload describes the session and its recognizer.
type StatePayload struct {
	SessionID string `json:"session_id"`
	Supported bool   `json:"supported"`
	Listening bool   `json:"listening"`
	Engine    string `json:"engine"`
	Mode      string `json:"mode"`
	KeyStage  string `json:"key_stage"`
	Language  string `json:"language"`
}

// TranscriptPayload carries a result after correction. Raw is the engine text.
type TranscriptPayload struct {
	Text       string  `json:"text"`
	Raw        string  `json:"raw,omitempty"`
	Final      bool    `json:"final"`
	Accepted   bool    `json:"accepted"`
	Confidence float64 `json:"confidence"`
}

// CommandPayload is a matched voice command and the phrase that triggered it.
type CommandPayload struct {
	Phrase      string            `json:"phrase"`
	Action      commands.Action   `json:"action"`
	Category    commands.Category `json:"category"`
	Description string            `json:"description"`
	Heard       string            `json:"heard"`
}

// NoMatchPayload reports a final transcript that matched no command.
type NoMatchPayload struct {
	Heard       string   `json:"heard"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// DictationPayload is the dictation buffer after a change.
type DictationPayload struct {
	Text   string `json:"text"`
	Cursor int    `json:"cursor"`
}

// ErrorPayload reports a recognition or protocol error.
type ErrorPayload struct {
	Kind    string `json:"kind"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}
