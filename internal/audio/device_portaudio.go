//go:build portaudio

package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gordonklaus/portaudio"
)

// DeviceMicrophone captures from a PortAudio input device.
type DeviceMicrophone struct {
	name   string
	format Format
	lc     lifecycle
}

// NewDeviceMicrophone selects the input whose name contains preferred, or
// the default input device when preferred is empty.
func NewDeviceMicrophone(preferred string) (Microphone, error) {
	return &DeviceMicrophone{name: preferred, format: DefaultFormat}, nil
}

func (m *DeviceMicrophone) Format() Format { return m.format }

func (m *DeviceMicrophone) Start(ctx context.Context) (<-chan []int16, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: portaudio init: %v", ErrUnavailable, err)
	}

	dev, err := selectDevice(m.name)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	n := m.format.FrameSamples()
	buf := make([]int16, n)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   dev,
			Channels: m.format.Channels,
			Latency:  dev.DefaultLowInputLatency,
		},
		SampleRate:      float64(m.format.SampleRate),
		FramesPerBuffer: n,
	}, &buf)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: open stream: %v", ErrPermissionDenied, err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: start stream: %v", ErrPermissionDenied, err)
	}

	frames, err := m.lc.start(ctx, func(ctx context.Context, out chan<- []int16) {
		defer portaudio.Terminate()
		defer stream.Close()
		defer stream.Stop()

		for {
			if ctx.Err() != nil {
				return
			}
			if err := stream.Read(); err != nil {
				if errors.Is(err, portaudio.InputOverflowed) {
					continue
				}
				return
			}
			frame := make([]int16, len(buf))
			copy(frame, buf)
			select {
			case <-ctx.Done():
				return
			case out <- frame:
			}
		}
	})
	if err != nil {
		_ = stream.Stop()
		_ = stream.Close()
		portaudio.Terminate()
		return nil, err
	}
	return frames, nil
}

func (m *DeviceMicrophone) Stop() error {
	m.lc.stop()
	return nil
}

// ListDevices returns the names of input-capable devices.
func ListDevices() ([]string, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}
	defer portaudio.Terminate()

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	var names []string
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			names = append(names, d.Name)
		}
	}
	return names, nil
}

func selectDevice(preferred string) (*portaudio.DeviceInfo, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	if preferred != "" {
		for _, d := range devs {
			if d.MaxInputChannels > 0 && strings.Contains(strings.ToLower(d.Name), strings.ToLower(preferred)) {
				return d, nil
			}
		}
	}
	if def, err := portaudio.DefaultInputDevice(); err == nil && def != nil {
		return def, nil
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 {
			return d, nil
		}
	}
	return nil, fmt.Errorf("no input devices found")
}
