// Package translate implements the translation relay: a primary public
// endpoint (MyMemory), a fallback (Google gtx) and fixed placeholders when
// neither yields text. Translate never returns an error.
package translate

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/tidwall/gjson"
)

const (
	DefaultPrimaryURL  = "https://api.mymemory.translated.net/get"
	DefaultFallbackURL = "https://translate.googleapis.com/translate_a/single"
	DefaultTimeout     = 10 * time.Second
	DefaultLanguage    = "es"
	SourceLanguage     = "en"

	// MsgUnavailable is returned when both providers answer without text.
	MsgUnavailable = "Translation service temporarily unavailable. Please try again later."
	// MsgFailed is returned when the fallback provider cannot be reached.
	MsgFailed = "Translation failed. Please check your internet connection and try again."
)

// Language is a supported translation target.
type Language struct {
	Code string
	Name string
}

// Languages lists the supported targets in display order.
var Languages = []Language{
	{"es", "Spanish"},
	{"fr", "French"},
	{"de", "German"},
	{"it", "Italian"},
	{"pt", "Portuguese"},
	{"ru", "Russian"},
	{"ja", "Japanese"},
	{"ko", "Korean"},
	{"zh", "Chinese"},
	{"hi", "Hindi"},
	{"ar", "Arabic"},
	{"tr", "Turkish"},
}

// IsSupported reports whether code is one of Languages.
func IsSupported(code string) bool {
	for _, l := range Languages {
		if l.Code == code {
			return true
		}
	}
	return false
}

// IsPlaceholder reports whether s is one of the texts Translate returns when
// no provider produced a translation.
func IsPlaceholder(s string) bool {
	return s == MsgUnavailable || s == MsgFailed
}

// Config configures a Translator. Zero values fall back to the defaults.
type Config struct {
	PrimaryURL  string
	FallbackURL string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// Translator relays text to the public translation endpoints.
type Translator struct {
	client      *http.Client
	primaryURL  string
	fallbackURL string
	timeout     time.Duration
	log         logging.Logger

	// OnResult, when set, is called once per provider attempt with the
	// provider name and one of "ok", "empty", "error".
	OnResult func(ctx context.Context, provider, status string)
}

// NewTranslator builds a Translator from cfg.
func NewTranslator(cfg Config, log logging.Logger) *Translator {
	t := &Translator{
		client:      cfg.HTTPClient,
		primaryURL:  cfg.PrimaryURL,
		fallbackURL: cfg.FallbackURL,
		timeout:     cfg.Timeout,
		log:         log.With("module", "translate"),
	}
	if t.client == nil {
		t.client = &http.Client{}
	}
	if t.primaryURL == "" {
		t.primaryURL = DefaultPrimaryURL
	}
	if t.fallbackURL == "" {
		t.fallbackURL = DefaultFallbackURL
	}
	if t.timeout <= 0 {
		t.timeout = DefaultTimeout
	}
	return t
}

// Translate returns text translated from English into target. Unknown or
// empty targets use DefaultLanguage. Empty text yields an empty result
// without any network call.
func (t *Translator) Translate(ctx context.Context, text, target string) string {
	if text == "" {
		return ""
	}
	if target == "" {
		target = DefaultLanguage
	}

	q := url.Values{}
	q.Set("q", text)
	q.Set("langpair", SourceLanguage+"|"+target)

	body, err := t.get(ctx, t.primaryURL+"?"+q.Encode())
	if err != nil {
		t.log.Warn(ctx, "primary translation request failed", "error", err)
		t.report(ctx, "mymemory", "error")
	} else if r := gjson.GetBytes(body, "responseData.translatedText"); r.Type == gjson.String && r.Str != "" {
		t.report(ctx, "mymemory", "ok")
		return r.Str
	} else {
		t.report(ctx, "mymemory", "empty")
	}

	t.log.Info(ctx, "primary translation failed, using fallback", "target", target)

	q = url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", SourceLanguage)
	q.Set("tl", target)
	q.Set("dt", "t")
	q.Set("q", text)

	body, err = t.get(ctx, t.fallbackURL+"?"+q.Encode())
	if err != nil {
		t.log.Error(ctx, "translation error", "error", err)
		t.report(ctx, "google", "error")
		return MsgFailed
	}

	if r := gjson.GetBytes(body, "0.0.0"); r.Type == gjson.String && r.Str != "" {
		t.report(ctx, "google", "ok")
		return r.Str
	}

	t.report(ctx, "google", "empty")
	return MsgUnavailable
}

// get bounds each provider call by its own timeout so a hung primary leaves
// the fallback a full budget.
func (t *Translator) get(ctx context.Context, u string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func (t *Translator) report(ctx context.Context, provider, status string) {
	if t.OnResult != nil {
		t.OnResult(ctx, provider, status)
	}
}
