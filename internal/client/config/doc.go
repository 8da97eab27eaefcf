// Package config loads runtime configuration for the TalkScribe client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be either strings like "10s"
// or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "database_file": "talkscribe.db",
//	  "log_file": "talkscribe.log",
//	  "auth_policy": "strict",
//	  "recognizer_language": "en-US",
//	  "recognizer_key_env": "DEEPGRAM_API_KEY",
//	  "translation_timeout": "10s",
//	  "online_check_interval": "5s"
//	}
//
// The recognizer API key itself is read from the environment variable named
// by recognizer_key_env, never from the file.
package config
