// Package events publishes domain notifications (transcript created,
// deleted) to a message bus so other services can react to new text.
package events

import (
	"context"
	"time"
)

// Subjects used on the bus.
const (
	SubjectTranscriptCreated = "talkscribe.transcripts.created"
	SubjectTranscriptDeleted = "talkscribe.transcripts.deleted"
)

// TranscriptEvent is the payload published for transcript lifecycle changes.
type TranscriptEvent struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title,omitempty"`
	Content   string    `json:"content,omitempty"`
	Duration  int       `json:"audio_duration"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits transcript events. Implementations must be safe for
// concurrent use.
type Publisher interface {
	TranscriptCreated(ctx context.Context, ev TranscriptEvent) error
	TranscriptDeleted(ctx context.Context, ev TranscriptEvent) error
	Close() error
}

// Nop discards every event. It is used when no bus is configured.
type Nop struct{}

func (Nop) TranscriptCreated(context.Context, TranscriptEvent) error { return nil }
func (Nop) TranscriptDeleted(context.Context, TranscriptEvent) error { return nil }
func (Nop) Close() error                                            { return nil }
