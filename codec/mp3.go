package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hajimehoshi/go-mp3"
	"github.com/sirupsen/logrus"
)

// FormatMP3 is the extension identifier of the mp3 adapter.
const FormatMP3 = "mp3"

// go-mp3 always decodes to signed 16-bit little-endian stereo.
const (
	mp3Channels       = 2
	mp3BytesPerSample = 2
)

// MP3Adapter decodes MPEG-1/2 layer III audio.
type MP3Adapter struct {
	decoder  *mp3.Decoder
	total    int64
	buf      []byte
	released bool
}

// OpenMP3 opens an mp3 file held in memory.
//
// The total sample count is taken from the decoder's decoded length, which
// go-mp3 derives by scanning every frame of a seekable source, so it matches
// what Read will actually produce rather than the compressed size.
func OpenMP3(data []byte) (Adapter, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: mp3: %v", ErrInvalidStream, err)
	}

	length := decoder.Length()
	if length < 0 {
		return nil, fmt.Errorf("%w: mp3: unknown length", ErrInvalidStream)
	}

	a := &MP3Adapter{
		decoder: decoder,
		total:   length / mp3BytesPerSample,
	}

	logrus.WithFields(logrus.Fields{
		"function":      "OpenMP3",
		"sample_rate":   decoder.SampleRate(),
		"decoded_bytes": length,
		"total_samples": a.total,
	}).Debug("Opened mp3 stream")

	return a, nil
}

// Channels implements Adapter.
func (a *MP3Adapter) Channels() int { return mp3Channels }

// SampleRate implements Adapter.
func (a *MP3Adapter) SampleRate() int { return a.decoder.SampleRate() }

// Format implements Adapter.
func (a *MP3Adapter) Format() string { return FormatMP3 }

// TotalSamples implements Adapter.
func (a *MP3Adapter) TotalSamples() int64 { return a.total }

// Read implements Adapter.
func (a *MP3Adapter) Read(dst []float32) (int, error) {
	if a.released {
		return 0, ErrReleased
	}
	if len(dst) == 0 {
		return 0, nil
	}

	need := len(dst) * mp3BytesPerSample
	if cap(a.buf) < need {
		a.buf = make([]byte, need)
	}
	buf := a.buf[:need]

	n, err := io.ReadFull(a.decoder, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return 0, fmt.Errorf("mp3 decode: %w", err)
	}

	samples := n / mp3BytesPerSample
	for i := 0; i < samples; i++ {
		v := int16(binary.LittleEndian.Uint16(buf[i*2:]))
		dst[i] = float32(v) / 32768
	}
	return samples, nil
}

// Release implements Adapter. go-mp3 holds no resources beyond the in-memory
// source, so release only drops references.
func (a *MP3Adapter) Release() error {
	if a.released {
		return nil
	}
	a.released = true
	a.buf = nil
	return nil
}
