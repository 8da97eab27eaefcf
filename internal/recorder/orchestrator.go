package recorder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/talkscribe/internal/audio"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
)

// Mode selects the capture strategy of a recording.
type Mode int

const (
	// ModeLive transcribes with the streaming recognizer only.
	ModeLive Mode = iota
	// ModeTraditional records a WAV blob and runs the recognizer alongside
	// when one is available.
	ModeTraditional
)

func (m Mode) String() string {
	if m == ModeTraditional {
		return "traditional"
	}
	return "live"
}

// ParseMode accepts "live" or "traditional".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "live":
		return ModeLive, nil
	case "traditional", "record":
		return ModeTraditional, nil
	}
	return ModeLive, fmt.Errorf("unknown mode %q", s)
}

// NoSpeechPlaceholder is shown after a traditional recording that produced no
// text.
const NoSpeechPlaceholder = "No speech detected. Please try speaking closer to the microphone or check your microphone settings."

var (
	ErrMicrophoneDenied       = errors.New("microphone access denied")
	ErrRecognitionUnsupported = errors.New("speech recognition is not supported, use traditional mode instead")
	ErrRecordingActive        = errors.New("a recording is in progress")
	ErrNotRecording           = errors.New("not recording")
	ErrNothingToTranslate     = errors.New("no transcript to translate")
	ErrClosed                 = errors.New("orchestrator stopped")
)

const (
	DefaultTickInterval  = time.Second
	DefaultSettleTimeout = 3 * time.Second
)

// Saver persists a finished transcript and returns its id.
type Saver interface {
	Save(ctx context.Context, text, translated string, durationSeconds int) (string, error)
}

// Translator translates transcript text. It reports failures in-band.
type Translator interface {
	Translate(ctx context.Context, text, target string) string
}

// Config wires an Orchestrator. Microphone may be nil when no capture device
// exists; Start then fails with ErrMicrophoneDenied.
type Config struct {
	Microphone    audio.Microphone
	Recognizer    Recognizer
	Saver         Saver
	Translator    Translator
	Logger        logging.Logger
	TickInterval  time.Duration
	SettleTimeout time.Duration

	// OnAlert receives user-visible failures, including those raised by the
	// recognizer while no caller is waiting. It runs on the loop goroutine.
	OnAlert func(err error)
}

// Snapshot is a copy of the session state.
type Snapshot struct {
	Recording  bool
	Listening  bool
	Supported  bool
	Mode       Mode
	Elapsed    int
	Interim    string
	Final      string
	Transcript string
	Translated string
	SavedID    string
	Blob       []byte
}

// LiveText is what the transcript area shows: the running text while
// recording, the finished transcript otherwise.
func (s Snapshot) LiveText() string {
	if s.Recording {
		return strings.TrimSpace(s.Final + s.Interim)
	}
	return s.Transcript
}

// Result describes a finished recording.
type Result struct {
	Text        string
	SavedID     string
	Duration    int
	Placeholder bool
	Blob        []byte
}

type command func(ctx context.Context)

type sessionState struct {
	recording  bool
	listening  bool
	mode       Mode
	elapsed    int
	interim    string
	final      string
	transcript string
	translated string
	savedID    string
	blob       []byte
	samples    []int16
}

func (s *sessionState) reset() {
	s.elapsed = 0
	s.interim = ""
	s.final = ""
	s.transcript = ""
	s.translated = ""
	s.savedID = ""
	s.blob = nil
	s.samples = nil
}

// Orchestrator is the recording state machine. Run owns every field below
// cmds; public methods hand closures to it and wait for completion.
type Orchestrator struct {
	cmds    chan command
	stopped chan struct{}

	mic        audio.Microphone
	recognizer Recognizer
	saver      Saver
	translator Translator
	log        logging.Logger
	tick       time.Duration
	settle     time.Duration
	onAlert    func(error)

	st      sessionState
	frames  <-chan []int16
	session Session
	events  <-chan Event
	ticker  *time.Ticker
	tickC   <-chan time.Time
}

// New builds an Orchestrator. Call Run to start processing.
func New(cfg Config) *Orchestrator {
	o := &Orchestrator{
		cmds:       make(chan command),
		stopped:    make(chan struct{}),
		mic:        cfg.Microphone,
		recognizer: cfg.Recognizer,
		saver:      cfg.Saver,
		translator: cfg.Translator,
		log:        cfg.Logger,
		tick:       cfg.TickInterval,
		settle:     cfg.SettleTimeout,
		onAlert:    cfg.OnAlert,
	}
	if o.recognizer == nil {
		o.recognizer = Unsupported{}
	}
	if o.log == nil {
		o.log = logging.Nop()
	}
	o.log = o.log.With("module", "recorder")
	if o.tick <= 0 {
		o.tick = DefaultTickInterval
	}
	if o.settle <= 0 {
		o.settle = DefaultSettleTimeout
	}
	return o
}

// Run processes commands, audio frames, recognizer events and ticks until
// ctx is cancelled. Capture is torn down before Run returns.
func (o *Orchestrator) Run(ctx context.Context) error {
	defer close(o.stopped)
	defer o.teardown()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case cmd := <-o.cmds:
			cmd(ctx)
		case frame, ok := <-o.frames:
			if !ok {
				o.frames = nil
				continue
			}
			o.onFrame(frame)
		case ev, ok := <-o.events:
			if !ok {
				o.events = nil
				o.st.listening = false
				continue
			}
			o.onEvent(ctx, ev)
		case <-o.tickC:
			o.st.elapsed++
		}
	}
}

func (o *Orchestrator) exec(ctx context.Context, fn command) error {
	done := make(chan struct{})
	wrapped := func(loopCtx context.Context) {
		defer close(done)
		fn(loopCtx)
	}

	select {
	case o.cmds <- wrapped:
	case <-ctx.Done():
		return ctx.Err()
	case <-o.stopped:
		return ErrClosed
	}

	<-done
	return nil
}

// Start begins a recording in mode.
func (o *Orchestrator) Start(ctx context.Context, mode Mode) error {
	var err error
	if e := o.exec(ctx, func(loopCtx context.Context) { err = o.start(loopCtx, mode) }); e != nil {
		return e
	}
	return err
}

// Stop ends the recording and persists non-empty text.
func (o *Orchestrator) Stop(ctx context.Context) (Result, error) {
	var (
		res Result
		err error
	)
	if e := o.exec(ctx, func(loopCtx context.Context) { res, err = o.stop(loopCtx) }); e != nil {
		return Result{}, e
	}
	return res, err
}

// SwitchMode changes the capture strategy while idle and clears the text
// fields.
func (o *Orchestrator) SwitchMode(ctx context.Context, mode Mode) error {
	var err error
	if e := o.exec(ctx, func(context.Context) { err = o.switchMode(mode) }); e != nil {
		return e
	}
	return err
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot(ctx context.Context) (Snapshot, error) {
	var s Snapshot
	err := o.exec(ctx, func(context.Context) { s = o.snapshot() })
	return s, err
}

// Translate translates the current transcript into target and keeps the
// result in the session. The stored record is not modified.
func (o *Orchestrator) Translate(ctx context.Context, target string) (string, error) {
	if o.translator == nil {
		return "", errors.New("no translator configured")
	}

	var text string
	if err := o.exec(ctx, func(context.Context) { text = o.st.transcript }); err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingToTranslate
	}

	out := o.translator.Translate(ctx, text, target)

	err := o.exec(ctx, func(context.Context) {
		if o.st.transcript == text {
			o.st.translated = out
		}
	})
	return out, err
}

func (o *Orchestrator) start(ctx context.Context, mode Mode) error {
	if o.st.recording {
		return ErrRecordingActive
	}

	o.stopSession(ctx)
	o.st.reset()
	o.st.mode = mode

	supported := o.recognizer.Supported()
	if mode == ModeLive && !supported {
		o.alert(ErrRecognitionUnsupported)
		return ErrRecognitionUnsupported
	}

	if o.mic == nil {
		err := fmt.Errorf("%w: %v", ErrMicrophoneDenied, audio.ErrUnavailable)
		o.alert(err)
		return err
	}

	frames, err := o.mic.Start(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrMicrophoneDenied, err)
		o.alert(err)
		return err
	}
	o.frames = frames

	if supported {
		sess, err := o.recognizer.Start(ctx, o.mic.Format())
		switch {
		case err == nil:
			o.session = sess
			o.events = sess.Events()
			o.st.listening = true
		case mode == ModeLive:
			o.stopMic()
			if errors.Is(err, ErrNotAllowed) {
				err = fmt.Errorf("%w: %v", ErrMicrophoneDenied, err)
			}
			o.alert(err)
			return err
		default:
			o.log.Warn(ctx, "failed to start speech recognition for traditional mode", "error", err)
		}
	}

	o.st.recording = true
	o.ticker = time.NewTicker(o.tick)
	o.tickC = o.ticker.C

	o.log.Info(ctx, "recording started", "mode", mode.String(), "listening", o.st.listening)
	return nil
}

func (o *Orchestrator) stop(ctx context.Context) (Result, error) {
	if !o.st.recording {
		return Result{}, ErrNotRecording
	}

	o.st.recording = false
	o.stopTicker()
	o.stopMic()
	o.stopSession(ctx)

	res := Result{Duration: o.st.elapsed}

	if o.st.mode == ModeTraditional {
		blob, err := audio.EncodeWAV(o.st.samples, o.format())
		if err != nil {
			o.log.Error(ctx, "failed to encode recording", "error", err)
		}
		o.st.blob = blob
		o.st.samples = nil
		res.Blob = blob
	}

	text := strings.TrimSpace(o.st.final + o.st.interim)
	o.log.Info(ctx, "recording stopped", "mode", o.st.mode.String(), "elapsed", o.st.elapsed, "chars", len(text))

	if text == "" {
		if o.st.mode == ModeTraditional {
			o.st.transcript = NoSpeechPlaceholder
			res.Text = NoSpeechPlaceholder
			res.Placeholder = true
		}
		return res, nil
	}

	o.st.transcript = text
	o.st.final = ""
	o.st.interim = ""
	res.Text = text

	if o.saver == nil {
		return res, nil
	}

	id, err := o.saver.Save(ctx, text, o.st.translated, o.st.elapsed)
	if err != nil {
		o.log.Error(ctx, "error saving transcript", "error", err)
		return res, fmt.Errorf("save transcript: %w", err)
	}
	o.st.savedID = id
	res.SavedID = id
	return res, nil
}

func (o *Orchestrator) switchMode(mode Mode) error {
	if o.st.recording {
		return ErrRecordingActive
	}
	o.stopSession(context.Background())
	o.st.mode = mode
	o.st.transcript = ""
	o.st.interim = ""
	o.st.final = ""
	o.st.translated = ""
	return nil
}

func (o *Orchestrator) snapshot() Snapshot {
	return Snapshot{
		Recording:  o.st.recording,
		Listening:  o.st.listening,
		Supported:  o.recognizer.Supported(),
		Mode:       o.st.mode,
		Elapsed:    o.st.elapsed,
		Interim:    o.st.interim,
		Final:      o.st.final,
		Transcript: o.st.transcript,
		Translated: o.st.translated,
		SavedID:    o.st.savedID,
		Blob:       o.st.blob,
	}
}

func (o *Orchestrator) onFrame(frame []int16) {
	if o.st.mode == ModeTraditional {
		o.st.samples = append(o.st.samples, frame...)
	}
	if o.session != nil {
		_ = o.session.SendAudio(frame)
	}
}

func (o *Orchestrator) onEvent(ctx context.Context, ev Event) {
	switch ev.Kind {
	case EventInterim, EventFinal:
		o.applyText(ev)
	case EventError:
		switch ev.Code {
		case CodeNoSpeech:
			o.log.Info(ctx, "no speech detected, continuing to listen")
		case CodeNotAllowed:
			o.log.Warn(ctx, "microphone permission denied by recognizer")
			o.abort(ctx, ErrMicrophoneDenied)
		default:
			o.log.Warn(ctx, "speech recognition error, stopping recording", "code", ev.Code, "detail", ev.Text)
			o.abort(ctx, fmt.Errorf("speech recognition error: %s", ev.Code))
		}
	}
}

func (o *Orchestrator) applyText(ev Event) {
	if ev.Kind == EventFinal {
		o.st.final += ev.Text + " "
		o.st.interim = ""
		return
	}
	if ev.Kind == EventInterim {
		o.st.interim = ev.Text
	}
}

// abort ends the recording without persisting anything.
func (o *Orchestrator) abort(ctx context.Context, err error) {
	o.st.listening = false
	if o.st.recording {
		o.st.recording = false
		o.stopTicker()
		o.stopMic()
		o.stopSession(ctx)
	}
	o.alert(err)
}

func (o *Orchestrator) alert(err error) {
	if o.onAlert != nil {
		o.onAlert(err)
	}
}

func (o *Orchestrator) format() audio.Format {
	if o.mic != nil {
		return o.mic.Format()
	}
	return audio.DefaultFormat
}

func (o *Orchestrator) stopTicker() {
	if o.ticker != nil {
		o.ticker.Stop()
	}
	o.ticker = nil
	o.tickC = nil
}

// stopMic stops capture and keeps the frames that were already buffered.
func (o *Orchestrator) stopMic() {
	if o.frames == nil || o.mic == nil {
		o.frames = nil
		return
	}
	_ = o.mic.Stop()
	for frame := range o.frames {
		o.onFrame(frame)
	}
	o.frames = nil
}

// stopSession stops the recognizer and waits for its acknowledgment,
// applying results flushed during shutdown. It gives up after the settle
// timeout.
func (o *Orchestrator) stopSession(ctx context.Context) {
	s := o.session
	if s == nil {
		return
	}
	s.Stop()

	events := o.events
	timer := time.NewTimer(o.settle)
	defer timer.Stop()

wait:
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			o.applyText(ev)
		case <-s.Done():
			break wait
		case <-timer.C:
			o.log.Warn(ctx, "recognizer did not acknowledge stop", "timeout", o.settle)
			break wait
		}
	}

	if events != nil {
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					break drain
				}
				o.applyText(ev)
			default:
				break drain
			}
		}
	}

	o.session = nil
	o.events = nil
	o.st.listening = false
}

func (o *Orchestrator) teardown() {
	o.stopTicker()
	o.stopMic()
	o.stopSession(context.Background())
	o.st.recording = false
}
