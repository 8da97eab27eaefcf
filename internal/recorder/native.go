package recorder

import (
	"context"
	"encoding/binary"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/dmitrijs2005/talkscribe/internal/audio"
	"github.com/dmitrijs2005/talkscribe/internal/logging"
	"github.com/tidwall/gjson"
)

const (
	DefaultEndpoint = "wss://api.deepgram.com/v1/listen"
	defaultModel    = "nova-3"
	defaultLanguage = "en-US"

	closeGrace = 2 * time.Second
)

// NativeConfig configures the hosted streaming recognizer.
type NativeConfig struct {
	APIKey   string
	Endpoint string
	Model    string
	Language string
}

// NativeRecognizer streams PCM to a hosted recognizer over a WebSocket and
// turns its JSON results into Events.
type NativeRecognizer struct {
	cfg NativeConfig
	log logging.Logger
}

// NewNative returns a NativeRecognizer with defaults filled in.
func NewNative(cfg NativeConfig, log logging.Logger) *NativeRecognizer {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	return &NativeRecognizer{cfg: cfg, log: log.With("module", "recognizer")}
}

// Select picks NativeRecognizer when an API key is present and Unsupported
// otherwise.
func Select(cfg NativeConfig, log logging.Logger) Recognizer {
	if cfg.APIKey == "" {
		return Unsupported{}
	}
	return NewNative(cfg, log)
}

func (r *NativeRecognizer) Supported() bool { return true }

func (r *NativeRecognizer) buildURL(f audio.Format) (string, error) {
	u, err := url.Parse(r.cfg.Endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("model", r.cfg.Model)
	q.Set("language", r.cfg.Language)
	q.Set("punctuate", "true")
	q.Set("interim_results", "true")
	q.Set("encoding", "linear16")
	q.Set("sample_rate", strconv.Itoa(f.SampleRate))
	q.Set("channels", strconv.Itoa(f.Channels))

	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Start dials the service. A 401/403 handshake answer maps to ErrNotAllowed.
func (r *NativeRecognizer) Start(ctx context.Context, f audio.Format) (Session, error) {
	wsURL, err := r.buildURL(f)
	if err != nil {
		return nil, fmt.Errorf("recognizer: build URL: %w", err)
	}

	headers := http.Header{}
	headers.Set("Authorization", "Token "+r.cfg.APIKey)

	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPHeader: headers})
	if err != nil {
		if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
			return nil, fmt.Errorf("%w: %v", ErrNotAllowed, err)
		}
		return nil, fmt.Errorf("recognizer: dial: %w", err)
	}

	sctx, cancel := context.WithCancel(ctx)
	s := &nativeSession{
		conn:      conn,
		log:       r.log,
		ctx:       sctx,
		cancel:    cancel,
		events:    make(chan Event, 64),
		audio:     make(chan []byte, 256),
		stopping:  make(chan struct{}),
		done:      make(chan struct{}),
		readDone:  make(chan struct{}),
		writeDone: make(chan struct{}),
	}

	go s.readLoop()
	go s.writeLoop()

	r.log.Info(ctx, "recognition started", "sample_rate", f.SampleRate)
	return s, nil
}

type nativeSession struct {
	conn *websocket.Conn
	log  logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	events chan Event
	audio  chan []byte

	stopOnce  sync.Once
	stopping  chan struct{}
	done      chan struct{}
	readDone  chan struct{}
	writeDone chan struct{}
}

func (s *nativeSession) Events() <-chan Event  { return s.events }
func (s *nativeSession) Done() <-chan struct{} { return s.done }

// SendAudio queues a frame. Frames are dropped when the send buffer is full.
func (s *nativeSession) SendAudio(frame []int16) error {
	select {
	case <-s.stopping:
		return ErrSessionClosed
	default:
	}

	b := make([]byte, 2*len(frame))
	for i, v := range frame {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}

	select {
	case s.audio <- b:
	default:
		s.log.Debug(s.ctx, "audio frame dropped")
	}
	return nil
}

func (s *nativeSession) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopping)
		go s.shutdown()
	})
}

// shutdown asks the service to flush, waits for the read side to finish and
// then closes the connection.
func (s *nativeSession) shutdown() {
	<-s.writeDone

	wctx, cancel := context.WithTimeout(s.ctx, closeGrace)
	_ = s.conn.Write(wctx, websocket.MessageText, []byte(`{"type":"CloseStream"}`))
	cancel()

	select {
	case <-s.readDone:
	case <-time.After(closeGrace):
		s.cancel()
		<-s.readDone
	}

	_ = s.conn.Close(websocket.StatusNormalClosure, "session closed")
	s.cancel()
	close(s.done)
}

func (s *nativeSession) writeLoop() {
	defer close(s.writeDone)
	for {
		select {
		case chunk := <-s.audio:
			if err := s.conn.Write(s.ctx, websocket.MessageBinary, chunk); err != nil {
				return
			}
		case <-s.stopping:
			for {
				select {
				case chunk := <-s.audio:
					if err := s.conn.Write(s.ctx, websocket.MessageBinary, chunk); err != nil {
						return
					}
				default:
					return
				}
			}
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *nativeSession) readLoop() {
	defer close(s.readDone)
	defer close(s.events)

	for {
		_, msg, err := s.conn.Read(s.ctx)
		if err != nil {
			select {
			case <-s.stopping:
			default:
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
					s.log.Warn(s.ctx, "recognition stream failed", "error", err)
					s.emit(Event{Kind: EventError, Code: CodeNetwork, Text: err.Error()})
				}
				s.Stop()
			}
			return
		}

		if ev, ok := parseResult(msg); ok {
			s.emit(ev)
		}
	}
}

func (s *nativeSession) emit(ev Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

// parseResult maps one service message to an Event. Metadata and empty
// final results are skipped; an empty interim clears the interim text.
func parseResult(msg []byte) (Event, bool) {
	switch gjson.GetBytes(msg, "type").String() {
	case "Results":
		text := gjson.GetBytes(msg, "channel.alternatives.0.transcript").String()
		if gjson.GetBytes(msg, "is_final").Bool() {
			if text == "" {
				return Event{}, false
			}
			return Event{Kind: EventFinal, Text: text}, true
		}
		return Event{Kind: EventInterim, Text: text}, true
	case "Error":
		return Event{Kind: EventError, Code: CodeNetwork, Text: gjson.GetBytes(msg, "description").String()}, true
	}
	return Event{}, false
}
