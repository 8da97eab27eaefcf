package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the TalkScribe server
//	-f string   local database file
//	-l string   log file
//	-p string   auth policy: strict or autoregister
//	-i string   recognizer language (BCP-47, e.g. en-US)
//	-w string   WAV file used instead of the microphone
//	-o int      translation timeout (in seconds)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-l", "-p", "-i", "-w", "-o"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the server")
	fs.StringVar(&cfg.DatabaseFile, "f", cfg.DatabaseFile, "local database file")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.StringVar(&cfg.AuthPolicy, "p", cfg.AuthPolicy, "auth policy (strict|autoregister)")
	fs.StringVar(&cfg.RecognizerLanguage, "i", cfg.RecognizerLanguage, "recognizer language")
	fs.StringVar(&cfg.WAVInput, "w", cfg.WAVInput, "WAV file to use instead of the microphone")
	translationTimeout := fs.Int("o", int(cfg.TranslationTimeout.Seconds()), "translation timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	if cfg.AuthPolicy != PolicyStrict && cfg.AuthPolicy != PolicyAutoRegister {
		panic(fmt.Sprintf("unknown auth policy %q", cfg.AuthPolicy))
	}

	cfg.TranslationTimeout = time.Duration(*translationTimeout) * time.Second
}
