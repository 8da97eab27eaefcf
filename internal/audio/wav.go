package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// EncodeWAV wraps samples in a 16-bit PCM WAV container.
func EncodeWAV(samples []int16, f Format) ([]byte, error) {
	sb := &seekBuffer{}
	enc := wav.NewEncoder(sb, f.SampleRate, 16, f.Channels, 1)

	buf := &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: f.Channels,
			SampleRate:  f.SampleRate,
		},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = int(s)
	}

	if err := enc.Write(buf); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("wav encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("wav encode: %w", err)
	}
	return sb.Bytes(), nil
}

// DecodeWAV reads a PCM WAV stream and returns its first channel as 16-bit
// samples together with the mono format.
func DecodeWAV(r io.ReadSeeker) ([]int16, Format, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, Format{}, errors.New("wav decode: not a valid PCM WAV file")
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, Format{}, fmt.Errorf("wav decode: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}

	out := make([]int16, 0, len(buf.Data)/channels)
	for i := 0; i < len(buf.Data); i += channels {
		out = append(out, to16(buf.Data[i], int(d.BitDepth)))
	}

	return out, Format{SampleRate: buf.Format.SampleRate, Channels: 1}, nil
}

func to16(v, depth int) int16 {
	switch depth {
	case 8:
		return int16((v - 128) << 8)
	case 24:
		return int16(v >> 8)
	case 32:
		return int16(v >> 16)
	default:
		return int16(v)
	}
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type seekBuffer struct {
	buf []byte
	pos int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.buf) {
		if end > cap(s.buf) {
			grown := make([]byte, end, 2*end)
			copy(grown, s.buf)
			s.buf = grown
		} else {
			s.buf = s.buf[:end]
		}
	}
	copy(s.buf[s.pos:], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.buf)) + offset
	default:
		return 0, errors.New("seekBuffer: invalid whence")
	}
	if abs < 0 {
		return 0, errors.New("seekBuffer: negative position")
	}
	s.pos = int(abs)
	return abs, nil
}

func (s *seekBuffer) Bytes() []byte {
	return bytes.Clone(s.buf)
}
