// Package recorder drives a recording session: microphone capture, a
// streaming speech recognizer and the record-then-transcribe flow. All
// session state is owned by a single Orchestrator goroutine.
package recorder

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/talkscribe/internal/audio"
)

// EventKind classifies recognizer output.
type EventKind int

const (
	EventInterim EventKind = iota
	EventFinal
	EventError
)

// Error codes carried by EventError.
const (
	CodeNotAllowed = "not-allowed"
	CodeNoSpeech   = "no-speech"
	CodeNetwork    = "network"
)

// Event is one recognizer result or failure.
type Event struct {
	Kind EventKind
	Text string
	Code string
}

var (
	// ErrNotAllowed is returned by Start when the service rejects the session.
	ErrNotAllowed = errors.New("recognizer: not allowed")
	// ErrSessionClosed is returned by SendAudio after Stop.
	ErrSessionClosed = errors.New("recognizer: session is closed")
)

// Session is one live recognition stream.
//
// Stop initiates shutdown and returns immediately. Events is closed once the
// final results are flushed, after which Done is closed.
type Session interface {
	SendAudio(frame []int16) error
	Events() <-chan Event
	Stop()
	Done() <-chan struct{}
}

// Recognizer opens recognition sessions. It is chosen once at startup.
type Recognizer interface {
	Supported() bool
	Start(ctx context.Context, f audio.Format) (Session, error)
}

// Unsupported is the Recognizer used when no recognition service is
// configured.
type Unsupported struct{}

func (Unsupported) Supported() bool { return false }

func (Unsupported) Start(context.Context, audio.Format) (Session, error) {
	return nil, ErrRecognitionUnsupported
}
