package cli

import (
	"context"

	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
)

// relayTranslator prefers the server's translation relay while a server
// session exists and calls the public endpoints directly otherwise.
type relayTranslator struct {
	api interface {
		Translate(ctx context.Context, text, target string) (string, error)
		Tokens() client.Tokens
	}
	local interface {
		Translate(ctx context.Context, text, target string) string
	}
	log logging.Logger
}

func (t *relayTranslator) Translate(ctx context.Context, text, target string) string {
	if t.api != nil && t.api.Tokens().AccessToken != "" {
		out, err := t.api.Translate(ctx, text, target)
		if err == nil {
			return out
		}
		t.log.Warn(ctx, "server translation failed, calling providers directly", "error", err)
	}
	return t.local.Translate(ctx, text, target)
}
