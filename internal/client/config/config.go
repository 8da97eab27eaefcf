package config

import "time"

// Auth policies accepted by AuthPolicy.
const (
	PolicyStrict       = "strict"
	PolicyAutoRegister = "autoregister"
)

// Config holds runtime settings for the TalkScribe terminal client.
//
// TranslationTimeout and OnlineCheckInterval are time.Duration values; the
// -o flag takes whole seconds.
type Config struct {
	ServerURL           string
	DatabaseFile        string
	LogFile             string
	AuthPolicy          string
	RecognizerLanguage  string
	RecognizerKeyEnv    string
	WAVInput            string
	MicrophoneDevice    string
	TranslationTimeout  time.Duration
	OnlineCheckInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.DatabaseFile = "talkscribe.db"
	c.LogFile = "talkscribe.log"
	c.AuthPolicy = PolicyStrict
	c.RecognizerLanguage = "en-US"
	c.RecognizerKeyEnv = "DEEPGRAM_API_KEY"
	c.WAVInput = ""
	c.MicrophoneDevice = ""
	c.TranslationTimeout = 10 * time.Second
	c.OnlineCheckInterval = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
