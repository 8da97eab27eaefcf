package models

import "time"

// Transcript is one saved recording result owned by a single user.
type Transcript struct {
	ID                string
	UserID            string
	Title             string
	Content           string
	TranslatedContent *string
	// AudioDuration is in whole seconds.
	AudioDuration int
	// AudioKey is the object-storage key of the archived recording, if any.
	AudioKey  *string
	CreatedAt time.Time
}

// TranscriptPatch carries the fields of a partial update. Nil fields are left
// untouched.
type TranscriptPatch struct {
	Title             *string
	Content           *string
	TranslatedContent *string
	AudioKey          *string
}

// Empty reports whether the patch changes nothing.
func (p TranscriptPatch) Empty() bool {
	return p.Title == nil && p.Content == nil && p.TranslatedContent == nil && p.AudioKey == nil
}
