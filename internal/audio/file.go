package audio

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"
)

// FileMicrophone replays a WAV file as if it were a live capture device.
// With Realtime set, frames are paced at FrameDuration.
type FileMicrophone struct {
	Path     string
	Realtime bool

	format  Format
	samples []int16
	lc      lifecycle
}

// NewFileMicrophone loads path eagerly so format errors surface at startup.
func NewFileMicrophone(path string, realtime bool) (*FileMicrophone, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	samples, f, err := DecodeWAV(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	return &FileMicrophone{Path: path, Realtime: realtime, format: f, samples: samples}, nil
}

func (m *FileMicrophone) Format() Format { return m.format }

func (m *FileMicrophone) Start(ctx context.Context) (<-chan []int16, error) {
	return m.lc.start(ctx, func(ctx context.Context, out chan<- []int16) {
		n := m.format.FrameSamples()
		if n <= 0 {
			return
		}

		var tick <-chan time.Time
		if m.Realtime {
			t := time.NewTicker(FrameDuration)
			defer t.Stop()
			tick = t.C
		}

		for off := 0; off < len(m.samples); off += n {
			end := min(off+n, len(m.samples))
			frame := make([]int16, end-off)
			copy(frame, m.samples[off:end])

			if tick != nil {
				select {
				case <-ctx.Done():
					return
				case <-tick:
				}
			}

			select {
			case <-ctx.Done():
				return
			case out <- frame:
			}
		}
	})
}

func (m *FileMicrophone) Stop() error {
	m.lc.stop()
	return nil
}
