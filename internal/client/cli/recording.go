package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/dmitrijs2005/talkscribe/internal/common"
	"github.com/dmitrijs2005/talkscribe/internal/filex"
	"github.com/dmitrijs2005/talkscribe/internal/recorder"
	"github.com/dmitrijs2005/talkscribe/internal/translate"
)

// exportDir receives exports given as a bare file name.
const exportDir = "exports"

var errNoRecording = errors.New("no recording available, record in traditional mode first")

func (a *App) SetMode(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: mode <live|traditional>")
		return nil
	}
	mode, err := recorder.ParseMode(args[0])
	if err != nil {
		return err
	}
	if err := a.recorder.SwitchMode(ctx, mode); err != nil {
		return err
	}

	a.mu.Lock()
	a.mode = mode
	a.mu.Unlock()

	fmt.Fprintf(a.out, "Mode: %s\n", mode)
	return nil
}

func (a *App) StartRecording(ctx context.Context) error {
	a.mu.Lock()
	mode := a.mode
	a.mu.Unlock()

	if err := a.recorder.Start(ctx, mode); err != nil {
		// already reported through the alert callback
		if errors.Is(err, recorder.ErrMicrophoneDenied) || errors.Is(err, recorder.ErrRecognitionUnsupported) {
			return nil
		}
		return err
	}
	fmt.Fprintf(a.out, "Recording (%s). Type 'stop' to finish, 'status' to see the transcript.\n", mode)
	return nil
}

func (a *App) StopRecording(ctx context.Context) error {
	res, err := a.recorder.Stop(ctx)
	if errors.Is(err, recorder.ErrNotRecording) {
		fmt.Fprintln(a.out, "Not recording.")
		return nil
	}
	if err != nil {
		// the text survives a failed save
		if res.Text != "" {
			fmt.Fprintln(a.out, res.Text)
		}
		return err
	}

	fmt.Fprintf(a.out, "Stopped after %s.\n", common.FormatDuration(res.Duration))
	switch {
	case res.Placeholder:
		fmt.Fprintln(a.out, res.Text)
	case res.Text == "":
		fmt.Fprintln(a.out, "Nothing was transcribed.")
	default:
		fmt.Fprintln(a.out, res.Text)
		if res.SavedID != "" {
			fmt.Fprintf(a.out, "Saved as %s.\n", res.SavedID)
		}
	}
	if len(res.Blob) > 0 {
		fmt.Fprintln(a.out, "Audio kept: use 'export <file>' or 'upload'.")
	}
	return nil
}

func (a *App) Status(ctx context.Context) error {
	s, err := a.recorder.Snapshot(ctx)
	if err != nil {
		return err
	}

	state := "idle"
	if s.Recording {
		state = "recording " + common.FormatDuration(s.Elapsed)
	}
	listening := ""
	if s.Listening {
		listening = ", listening"
	}
	fmt.Fprintf(a.out, "Mode: %s (%s%s)\n", s.Mode, state, listening)
	if !s.Supported {
		fmt.Fprintln(a.out, "Live speech recognition is not available; use traditional mode.")
	}
	if text := s.LiveText(); text != "" {
		fmt.Fprintf(a.out, "Transcript: %s\n", text)
	}
	if s.Translated != "" {
		fmt.Fprintf(a.out, "Translation: %s\n", s.Translated)
	}
	return nil
}

// Translate translates the current transcript, or a stored one when an id is
// given (the translation is then saved on the record).
func (a *App) Translate(ctx context.Context, args []string) error {
	target := translate.DefaultLanguage
	if len(args) > 0 {
		target = strings.ToLower(args[0])
	}
	if !translate.IsSupported(target) {
		fmt.Fprintf(a.out, "Unsupported language %q; see 'languages'.\n", target)
		return nil
	}

	var (
		out string
		err error
	)
	if len(args) > 1 {
		out, err = a.history.Translate(ctx, args[1], target)
	} else {
		out, err = a.recorder.Translate(ctx, target)
	}
	if errors.Is(err, recorder.ErrNothingToTranslate) {
		fmt.Fprintln(a.out, "Nothing to translate yet.")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, out)
	return nil
}

func (a *App) lastBlob(ctx context.Context) ([]byte, int, error) {
	s, err := a.recorder.Snapshot(ctx)
	if err != nil {
		return nil, 0, err
	}
	if s.Recording {
		return nil, 0, recorder.ErrRecordingActive
	}
	if len(s.Blob) == 0 {
		return nil, 0, errNoRecording
	}
	return s.Blob, s.Elapsed, nil
}

// Upload sends the last recorded audio to the server's ASR relay.
func (a *App) Upload(ctx context.Context) error {
	blob, elapsed, err := a.lastBlob(ctx)
	if err != nil {
		return err
	}

	res, err := a.api.Transcribe(ctx, blob, elapsed)
	if err != nil {
		if errors.Is(err, client.ErrNotLoggedIn) || errors.Is(err, client.ErrUnavailable) {
			fmt.Fprintln(a.out, "Server is not available; try again once online.")
			a.log.Warn(ctx, "upload failed", "error", err)
			return nil
		}
		return err
	}

	fmt.Fprintln(a.out, res.Transcript)
	fmt.Fprintf(a.out, "Saved on the server as %s.\n", res.ID)
	return nil
}

// Export writes the last recorded audio as a WAV file. A bare file name is
// placed in the exports directory under the working directory.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: export <file.wav>")
		return nil
	}
	blob, _, err := a.lastBlob(ctx)
	if err != nil {
		return err
	}

	path := args[0]
	if filepath.Dir(path) == "." {
		dir, err := filex.EnsureSubdDir(exportDir)
		if err != nil {
			return err
		}
		path = filepath.Join(dir, path)
	}
	if err := filex.WriteFileAtomic(path, blob, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Wrote %d bytes to %s.\n", len(blob), path)
	return nil
}

func (a *App) Languages(ctx context.Context) error {
	for _, l := range translate.Languages {
		marker := ""
		if l.Code == translate.DefaultLanguage {
			marker = " (default)"
		}
		fmt.Fprintf(a.out, "  %s  %s%s\n", l.Code, l.Name, marker)
	}
	return nil
}
