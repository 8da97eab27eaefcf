package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/talkscribe/internal/client/client"
	"github.com/dmitrijs2005/talkscribe/internal/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_SetMode(t *testing.T) {
	ta := newTestApp(t, "")
	ctx := context.Background()

	require.NoError(t, ta.SetMode(ctx, []string{"traditional"}))
	assert.Equal(t, []recorder.Mode{recorder.ModeTraditional}, ta.rec.switched)
	assert.Equal(t, recorder.ModeTraditional, ta.mode)
	assert.Contains(t, ta.out.String(), "Mode: traditional")

	require.Error(t, ta.SetMode(ctx, []string{"karaoke"}))
	assert.Equal(t, recorder.ModeTraditional, ta.mode)

	ta.out.Reset()
	require.NoError(t, ta.SetMode(ctx, nil))
	assert.Contains(t, ta.out.String(), "Usage: mode")
}

func TestApp_StartRecording(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the selected mode", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.mode = recorder.ModeTraditional
		require.NoError(t, ta.StartRecording(ctx))
		assert.Equal(t, []recorder.Mode{recorder.ModeTraditional}, ta.rec.started)
		assert.Contains(t, ta.out.String(), "Recording (traditional)")
	})

	t.Run("alerted failures are not repeated", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.startErr = recorder.ErrMicrophoneDenied
		require.NoError(t, ta.StartRecording(ctx))
		assert.Empty(t, ta.out.String())
	})

	t.Run("already recording", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.startErr = recorder.ErrRecordingActive
		require.ErrorIs(t, ta.StartRecording(ctx), recorder.ErrRecordingActive)
	})
}

func TestApp_StopRecording(t *testing.T) {
	ctx := context.Background()

	t.Run("saved", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.stopRes = recorder.Result{Text: "hello there", SavedID: "id-1", Duration: 75}
		require.NoError(t, ta.StopRecording(ctx))

		out := ta.out.String()
		assert.Contains(t, out, "Stopped after 1:15.")
		assert.Contains(t, out, "hello there")
		assert.Contains(t, out, "Saved as id-1.")
	})

	t.Run("placeholder", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.stopRes = recorder.Result{Text: recorder.NoSpeechPlaceholder, Placeholder: true, Blob: []byte("RIFF")}
		require.NoError(t, ta.StopRecording(ctx))

		out := ta.out.String()
		assert.Contains(t, out, recorder.NoSpeechPlaceholder)
		assert.NotContains(t, out, "Saved as")
		assert.Contains(t, out, "export <file>")
	})

	t.Run("not recording", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.stopErr = recorder.ErrNotRecording
		require.NoError(t, ta.StopRecording(ctx))
		assert.Contains(t, ta.out.String(), "Not recording.")
	})

	t.Run("save failure keeps text visible", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.stopRes = recorder.Result{Text: "unsaved words"}
		ta.rec.stopErr = errors.New("disk full")
		require.EqualError(t, ta.StopRecording(ctx), "disk full")
		assert.Contains(t, ta.out.String(), "unsaved words")
	})
}

func TestApp_Status(t *testing.T) {
	ta := newTestApp(t, "")
	ta.rec.snap = recorder.Snapshot{
		Recording: true,
		Listening: true,
		Supported: true,
		Mode:      recorder.ModeLive,
		Elapsed:   9,
		Final:     "so far",
	}

	require.NoError(t, ta.Status(context.Background()))
	out := ta.out.String()
	assert.Contains(t, out, "Mode: live (recording 0:09, listening)")
	assert.Contains(t, out, "Transcript: so far")
	assert.NotContains(t, out, "not available")
}

func TestApp_Translate(t *testing.T) {
	ctx := context.Background()

	t.Run("current transcript with default language", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.trOut = "hola"
		require.NoError(t, ta.Translate(ctx, nil))
		assert.Equal(t, []string{"es"}, ta.rec.targets)
		assert.Contains(t, ta.out.String(), "hola")
	})

	t.Run("unsupported language", func(t *testing.T) {
		ta := newTestApp(t, "")
		require.NoError(t, ta.Translate(ctx, []string{"xx"}))
		assert.Empty(t, ta.rec.targets)
		assert.Contains(t, ta.out.String(), "Unsupported language")
	})

	t.Run("nothing to translate", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.trErr = recorder.ErrNothingToTranslate
		require.NoError(t, ta.Translate(ctx, []string{"FR"}))
		assert.Equal(t, []string{"fr"}, ta.rec.targets)
		assert.Contains(t, ta.out.String(), "Nothing to translate yet.")
	})

	t.Run("stored transcript", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.signIn(t, "a@b.c")
		tr, err := ta.transcripts.Append(ctx, ta.currentUser().ID, "", "good morning", 3, nil)
		require.NoError(t, err)

		require.NoError(t, ta.Translate(ctx, []string{"de", tr.ID}))
		assert.Contains(t, ta.out.String(), "[de] good morning")

		got, err := ta.history.Detail(ctx, tr.ID)
		require.NoError(t, err)
		require.NotNil(t, got.TranslatedContent)
		assert.Equal(t, "[de] good morning", *got.TranslatedContent)
	})
}

func TestApp_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("sends last blob", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.snap = recorder.Snapshot{Blob: []byte("RIFFdata"), Elapsed: 4}
		ta.api.transcribe = &client.TranscribeResult{Transcript: "server text", ID: "srv-1"}

		require.NoError(t, ta.Upload(ctx))
		require.Len(t, ta.api.uploads, 1)
		assert.Equal(t, []byte("RIFFdata"), ta.api.uploads[0])
		assert.Contains(t, ta.out.String(), "server text")
		assert.Contains(t, ta.out.String(), "srv-1")
	})

	t.Run("no audio", func(t *testing.T) {
		ta := newTestApp(t, "")
		require.ErrorIs(t, ta.Upload(ctx), errNoRecording)
	})

	t.Run("while recording", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.snap = recorder.Snapshot{Recording: true, Blob: []byte("x")}
		require.ErrorIs(t, ta.Upload(ctx), recorder.ErrRecordingActive)
	})

	t.Run("offline", func(t *testing.T) {
		ta := newTestApp(t, "")
		ta.rec.snap = recorder.Snapshot{Blob: []byte("x")}
		ta.api.transErr = client.ErrNotLoggedIn
		require.NoError(t, ta.Upload(ctx))
		assert.Contains(t, ta.out.String(), "Server is not available")
	})
}

func TestApp_Export(t *testing.T) {
	ta := newTestApp(t, "")
	ta.rec.snap = recorder.Snapshot{Blob: []byte("RIFFwave")}
	path := filepath.Join(t.TempDir(), "out", "rec.wav")

	require.NoError(t, ta.Export(context.Background(), []string{path}))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFwave"), b)
}

func TestApp_Languages(t *testing.T) {
	ta := newTestApp(t, "")
	require.NoError(t, ta.Languages(context.Background()))

	out := ta.out.String()
	assert.Contains(t, out, "es  Spanish (default)")
	assert.Contains(t, out, "fr  French")
}

func TestApp_Export_BareNameGoesToExportDir(t *testing.T) {
	tmp := t.TempDir()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tmp))
	t.Cleanup(func() { _ = os.Chdir(old) })

	ta := newTestApp(t, "")
	ta.rec.snap = recorder.Snapshot{Blob: []byte("RIFF")}

	require.NoError(t, ta.Export(context.Background(), []string{"take.wav"}))

	b, err := os.ReadFile(filepath.Join(tmp, exportDir, "take.wav"))
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF"), b)
}
