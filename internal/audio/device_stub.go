//go:build !portaudio

package audio

// NewDeviceMicrophone reports ErrUnavailable; build with -tags portaudio to
// capture from a real input device.
func NewDeviceMicrophone(preferred string) (Microphone, error) {
	return nil, ErrUnavailable
}

// ListDevices reports ErrUnavailable in builds without PortAudio.
func ListDevices() ([]string, error) {
	return nil, ErrUnavailable
}
