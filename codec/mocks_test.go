package codec

import (
	"encoding/binary"
)

// oggPage builds a single Ogg page carrying the given segments. Each segment
// must be at most 255 bytes; a segment of exactly 255 bytes continues the
// packet into the next segment.
func oggPage(serial uint32, seq uint32, granule int64, segments ...[]byte) []byte {
	header := make([]byte, oggHeaderSize)
	copy(header, oggCapture)
	header[4] = 0
	binary.LittleEndian.PutUint64(header[6:14], uint64(granule))
	binary.LittleEndian.PutUint32(header[14:18], serial)
	binary.LittleEndian.PutUint32(header[18:22], seq)
	header[26] = byte(len(segments))

	page := header
	for _, s := range segments {
		page = append(page, byte(len(s)))
	}
	for _, s := range segments {
		page = append(page, s...)
	}
	return page
}

func opusHeadPacket(channels uint8, preSkip uint16, rate uint32) []byte {
	p := make([]byte, opusHeadMinLen)
	copy(p, opusHeadMagic)
	p[8] = 1
	p[9] = channels
	binary.LittleEndian.PutUint16(p[10:12], preSkip)
	binary.LittleEndian.PutUint32(p[12:16], rate)
	return p
}

func opusTagsPacket() []byte {
	p := []byte(opusTagsMagic)
	p = append(p, 0, 0, 0, 0, 0, 0, 0, 0)
	return p
}

// stubAdapter is a fixed-length adapter used to exercise the registry.
type stubAdapter struct {
	format   string
	released int
}

func (s *stubAdapter) Channels() int                   { return 2 }
func (s *stubAdapter) SampleRate() int                 { return 44100 }
func (s *stubAdapter) Format() string                  { return s.format }
func (s *stubAdapter) TotalSamples() int64             { return 8 }
func (s *stubAdapter) Read(dst []float32) (int, error) { return 0, nil }
func (s *stubAdapter) Release() error {
	s.released++
	return nil
}
