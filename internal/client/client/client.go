package client

import (
	"context"
	"time"
)

// RemoteUser is the account as the server reports it.
type RemoteUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Tokens is the server session. Both values are empty when logged out.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// TranscribeResult is the ASR relay answer.
type TranscribeResult struct {
	Transcript string `json:"transcript"`
	ID         string `json:"id"`
}

// Client is the TalkScribe server API as the terminal client uses it.
type Client interface {
	Ping(ctx context.Context) error
	Register(ctx context.Context, email, password string) (*RemoteUser, error)
	Login(ctx context.Context, email, password string) (*RemoteUser, error)
	Logout(ctx context.Context) error
	Transcribe(ctx context.Context, wav []byte, durationSeconds int) (*TranscribeResult, error)
	Translate(ctx context.Context, text, target string) (string, error)
	Tokens() Tokens
	SetTokens(t Tokens)
}
