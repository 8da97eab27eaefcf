// Package audio provides microphone capture as a stream of 16-bit PCM frames
// and WAV container helpers for the recorded blob.
package audio

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FrameDuration is the length of one frame delivered by a Microphone.
const FrameDuration = 20 * time.Millisecond

var (
	// ErrPermissionDenied is returned when the capture device refuses access.
	ErrPermissionDenied = errors.New("microphone permission denied")
	// ErrUnavailable is returned when no capture device exists in this build.
	ErrUnavailable = errors.New("no microphone available")
	// ErrAlreadyStarted is returned by Start on a running microphone.
	ErrAlreadyStarted = errors.New("microphone already started")
)

// Format describes interleaved signed 16-bit PCM.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is what the recognizer and the ASR model expect.
var DefaultFormat = Format{SampleRate: 16000, Channels: 1}

// FrameSamples returns the number of samples in one FrameDuration frame.
func (f Format) FrameSamples() int {
	return f.SampleRate * f.Channels * int(FrameDuration/time.Millisecond) / 1000
}

// Seconds converts a sample count into whole seconds.
func (f Format) Seconds(samples int) int {
	if f.SampleRate == 0 || f.Channels == 0 {
		return 0
	}
	return samples / (f.SampleRate * f.Channels)
}

// Microphone produces PCM frames until stopped.
//
// Start returns a channel that is closed once capture ends, either through
// Stop, ctx cancellation or the source running dry. Stop blocks until the
// capture goroutine has exited.
type Microphone interface {
	Format() Format
	Start(ctx context.Context) (<-chan []int16, error)
	Stop() error
}

// lifecycle runs one capture goroutine at a time.
type lifecycle struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (l *lifecycle) start(ctx context.Context, run func(ctx context.Context, out chan<- []int16)) (<-chan []int16, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.done != nil {
		select {
		case <-l.done:
		default:
			return nil, ErrAlreadyStarted
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []int16, 16)
	done := make(chan struct{})
	l.cancel = cancel
	l.done = done

	go func() {
		defer close(done)
		defer close(out)
		run(ctx, out)
	}()

	return out, nil
}

func (l *lifecycle) stop() {
	l.mu.Lock()
	cancel, done := l.cancel, l.done
	l.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}
