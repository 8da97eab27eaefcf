package recorder

import (
	"context"
	"errors"
	"sync"

	"github.com/dmitrijs2005/talkscribe/internal/audio"
)

type fakeMic struct {
	mu       sync.Mutex
	startErr error
	frames   chan []int16
	starts   int
	stopped  bool
}

func (m *fakeMic) Format() audio.Format { return audio.DefaultFormat }

func (m *fakeMic) Start(context.Context) (<-chan []int16, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return nil, m.startErr
	}
	m.starts++
	m.stopped = false
	m.frames = make(chan []int16, 64)
	return m.frames, nil
}

func (m *fakeMic) push(frame []int16) {
	m.mu.Lock()
	ch := m.frames
	m.mu.Unlock()
	ch <- frame
}

func (m *fakeMic) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped && m.frames != nil {
		close(m.frames)
	}
	m.stopped = true
	return nil
}

type fakeSession struct {
	events  chan Event
	done    chan struct{}
	onStop  func(s *fakeSession)
	mu      sync.Mutex
	sent    int
	stopped bool
}

func newFakeSession() *fakeSession {
	s := &fakeSession{events: make(chan Event, 64), done: make(chan struct{})}
	s.onStop = func(s *fakeSession) {
		close(s.events)
		close(s.done)
	}
	return s
}

func (s *fakeSession) SendAudio([]int16) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrSessionClosed
	}
	s.sent++
	return nil
}

func (s *fakeSession) Events() <-chan Event  { return s.events }
func (s *fakeSession) Done() <-chan struct{} { return s.done }

func (s *fakeSession) Stop() {
	s.mu.Lock()
	already := s.stopped
	s.stopped = true
	s.mu.Unlock()
	if !already {
		s.onStop(s)
	}
}

func (s *fakeSession) sentFrames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

type fakeRecognizer struct {
	supported bool
	startErr  error
	mu        sync.Mutex
	sessions  []*fakeSession
	configure func(s *fakeSession)
}

func (r *fakeRecognizer) Supported() bool { return r.supported }

func (r *fakeRecognizer) Start(context.Context, audio.Format) (Session, error) {
	if !r.supported {
		return nil, ErrRecognitionUnsupported
	}
	if r.startErr != nil {
		return nil, r.startErr
	}
	s := newFakeSession()
	if r.configure != nil {
		r.configure(s)
	}
	r.mu.Lock()
	r.sessions = append(r.sessions, s)
	r.mu.Unlock()
	return s, nil
}

func (r *fakeRecognizer) last() *fakeSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sessions) == 0 {
		return nil
	}
	return r.sessions[len(r.sessions)-1]
}

type savedTranscript struct {
	text       string
	translated string
	duration   int
}

type fakeSaver struct {
	mu    sync.Mutex
	saved []savedTranscript
	err   error
}

func (s *fakeSaver) Save(_ context.Context, text, translated string, duration int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.saved = append(s.saved, savedTranscript{text, translated, duration})
	return "id-" + text, nil
}

func (s *fakeSaver) all() []savedTranscript {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]savedTranscript(nil), s.saved...)
}

type fakeTranslator struct {
	calls []string
}

func (t *fakeTranslator) Translate(_ context.Context, text, target string) string {
	t.calls = append(t.calls, target+":"+text)
	return "[" + target + "] " + text
}

var errBoom = errors.New("boom")
