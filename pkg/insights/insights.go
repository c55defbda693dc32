package insights

import (
	"context"
	"io"
)

type TranscriptionEventType string

const (
	EventSessionStarted TranscriptionEventType = "session_started"
	EventSessionStopped TranscriptionEventType = "session_stopped"
	EventSpeechStarted  TranscriptionEventType = "speech_started"
	EventRecognizing    TranscriptionEventType = "recognizing"
	EventRecognized     TranscriptionEventType = "recognized"
	EventNoMatch        TranscriptionEventType = "no_match"
	EventCanceled       TranscriptionEventType = "canceled"
)

// TranscriptionEvent is one notification coming from a live recognizer.
type TranscriptionEvent struct {
	Type TranscriptionEventType
	Text string
	// Reason and ErrorDetails are only set for EventCanceled.
	Reason       string
	ErrorDetails string
}

// TranscriptionStream is a live speech recognition session.
// Audio is pushed with Write, recognizer events are read from Events
// until Done is closed.
type TranscriptionStream interface {
	// Write accepts a chunk of 16 kHz, 16 bit, mono PCM audio.
	io.Writer

	// Close stops the recognizer and releases the push stream.
	io.Closer

	Events() <-chan *TranscriptionEvent
	Done() <-chan struct{}
}

// SpeechProvider opens live transcription sessions.
type SpeechProvider interface {
	CreateTranscription(ctx context.Context, connId, spokenLang string) (TranscriptionStream, error)
}

// Synthesizer turns text into raw 16 kHz, 16 bit, mono PCM audio.
type Synthesizer interface {
	SynthesizeText(ctx context.Context, text string) (io.ReadCloser, error)
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChunk is one piece of a streamed answer. A chunk with Err set is
// always the last one.
type ChatChunk struct {
	Text string
	Err  error
}

// ChatProvider is the contract every chat completion backend fulfills.
type ChatProvider interface {
	Complete(ctx context.Context, model string, messages []ChatMessage) (string, error)
	// CompleteStream returns a channel which is closed when the answer is complete.
	CompleteStream(ctx context.Context, model string, messages []ChatMessage) (<-chan ChatChunk, error)
}
