package models

import "time"

// Transcript is one finished recording owned by UserID.
type Transcript struct {
	ID                string
	UserID            string
	Title             string
	Content           string
	TranslatedContent *string
	AudioDuration     int
	CreatedAt         time.Time
}

// TranscriptPatch carries the fields to overwrite; nil fields are kept.
type TranscriptPatch struct {
	Title             *string
	Content           *string
	TranslatedContent *string
}

// Empty reports whether the patch changes nothing.
func (p TranscriptPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.TranslatedContent == nil
}
