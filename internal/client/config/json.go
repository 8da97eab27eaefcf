package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/talkscribe/internal/flagx"
	"github.com/dmitrijs2005/talkscribe/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Fields missing from the file
// leave the runtime Config untouched.
type JsonConfig struct {
	ServerURL           *string         `json:"server_url"`
	DatabaseFile        *string         `json:"database_file"`
	LogFile             *string         `json:"log_file"`
	AuthPolicy          *string         `json:"auth_policy"`
	RecognizerLanguage  *string         `json:"recognizer_language"`
	RecognizerKeyEnv    *string         `json:"recognizer_key_env"`
	WAVInput            *string         `json:"wav_input"`
	MicrophoneDevice    *string         `json:"microphone_device"`
	TranslationTimeout  *timex.Duration `json:"translation_timeout"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flag (flagx.JsonConfigFlags).
// Without it nothing is loaded. Read or unmarshal errors panic.
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.ServerURL, jc.ServerURL)
	setString(&cfg.DatabaseFile, jc.DatabaseFile)
	setString(&cfg.LogFile, jc.LogFile)
	setString(&cfg.AuthPolicy, jc.AuthPolicy)
	setString(&cfg.RecognizerLanguage, jc.RecognizerLanguage)
	setString(&cfg.RecognizerKeyEnv, jc.RecognizerKeyEnv)
	setString(&cfg.WAVInput, jc.WAVInput)
	setString(&cfg.MicrophoneDevice, jc.MicrophoneDevice)
	if jc.TranslationTimeout != nil {
		cfg.TranslationTimeout = jc.TranslationTimeout.Duration
	}
	if jc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
