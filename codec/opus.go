package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/pion/opus"
	"github.com/sirupsen/logrus"
)

// FormatOpus is the extension identifier of the Ogg Opus adapter.
const FormatOpus = "opus"

const (
	opusSampleRate = 48000
	// pion/opus renders a single channel of signed 16-bit PCM at 48 kHz.
	opusChannels   = 1
	opusHeadMagic  = "OpusHead"
	opusTagsMagic  = "OpusTags"
	opusHeadMinLen = 19

	// opusWidebandSilk20ms is the only TOC configuration pion/opus renders
	// at the full 48 kHz: SILK-only wideband with one 20 ms frame. Narrower
	// SILK bandwidths come out time-stretched, and hybrid or CELT packets
	// are rejected by the decoder.
	opusWidebandSilk20ms = 9
)

// OpusHead is the identification header of an Ogg Opus stream.
type OpusHead struct {
	Version         uint8
	Channels        uint8
	PreSkip         uint16
	InputSampleRate uint32
}

func parseOpusHead(packet []byte) (OpusHead, error) {
	if len(packet) < opusHeadMinLen || !bytes.HasPrefix(packet, []byte(opusHeadMagic)) {
		return OpusHead{}, fmt.Errorf("%w: missing OpusHead", ErrInvalidStream)
	}
	return OpusHead{
		Version:         packet[8],
		Channels:        packet[9],
		PreSkip:         binary.LittleEndian.Uint16(packet[10:12]),
		InputSampleRate: binary.LittleEndian.Uint32(packet[12:16]),
	}, nil
}

// opusFrameSizes holds the frame duration, in 48 kHz samples, for each TOC
// configuration: SILK-only (0-11), hybrid (12-15) and CELT-only (16-31).
var opusFrameSizes = [32]int{
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	480, 960, 1920, 2880,
	480, 960,
	480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
	120, 240, 480, 960,
}

// opusPacketSamples returns the per-channel duration of a packet in 48 kHz
// samples, read from its TOC byte.
func opusPacketSamples(packet []byte) (int, error) {
	if len(packet) == 0 {
		return 0, fmt.Errorf("%w: empty opus packet", ErrInvalidStream)
	}
	toc := packet[0]
	frame := opusFrameSizes[toc>>3]

	switch toc & 0x3 {
	case 0:
		return frame, nil
	case 1, 2:
		return 2 * frame, nil
	default:
		if len(packet) < 2 {
			return 0, fmt.Errorf("%w: opus packet missing frame count", ErrInvalidStream)
		}
		return int(packet[1]&0x3f) * frame, nil
	}
}

// checkOpusPacket reports whether pion/opus can decode packet: mono,
// SILK wideband, one 20 ms frame (frame count code 0).
func checkOpusPacket(packet []byte) error {
	if len(packet) == 0 {
		return fmt.Errorf("%w: empty opus packet", ErrInvalidStream)
	}
	toc := packet[0]
	switch {
	case toc>>3 != opusWidebandSilk20ms:
		return fmt.Errorf("%w: opus configuration %d is not SILK wideband 20 ms", ErrInvalidStream, toc>>3)
	case toc&0x4 != 0:
		return fmt.Errorf("%w: stereo opus packet", ErrInvalidStream)
	case toc&0x3 != 0:
		return fmt.Errorf("%w: opus frame count code %d", ErrInvalidStream, toc&0x3)
	}
	return nil
}

// OpusAdapter decodes Ogg Opus audio with pion/opus.
type OpusAdapter struct {
	decoder  *opus.Decoder
	head     OpusHead
	packets  [][]byte
	next     int
	total    int64
	read     int64
	skip     int
	pending  []float32
	pcm      []byte
	released bool
}

// OpenOpus opens an Ogg Opus file held in memory.
//
// The total sample count is the final granule position minus the encoder
// pre-skip, and Read stops there, trimming the padding of the last packet.
//
// pion/opus implements only part of RFC 6716, so every audio packet is
// checked here: the stream must be mono and each packet SILK wideband with a
// single 20 ms frame. Anything else, which includes typical CELT music
// encodes, fails with ErrInvalidStream instead of decoding to silence.
func OpenOpus(data []byte) (Adapter, error) {
	stream, err := parseOgg(data)
	if err != nil {
		return nil, err
	}
	if len(stream.packets) < 2 {
		return nil, fmt.Errorf("%w: opus stream has no tags header", ErrInvalidStream)
	}

	head, err := parseOpusHead(stream.packets[0])
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(stream.packets[1], []byte(opusTagsMagic)) {
		return nil, fmt.Errorf("%w: missing OpusTags", ErrInvalidStream)
	}

	if head.Channels != opusChannels {
		return nil, fmt.Errorf("%w: %d channel opus stream", ErrInvalidStream, head.Channels)
	}
	for i, packet := range stream.packets[2:] {
		if err := checkOpusPacket(packet); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "OpenOpus",
				"packet":   i,
				"error":    err.Error(),
			}).Debug("Opus stream not decodable")
			return nil, err
		}
	}

	total := stream.granule - int64(head.PreSkip)
	if total < 0 {
		total = 0
	}

	decoder := opus.NewDecoder()
	a := &OpusAdapter{
		decoder: &decoder,
		head:    head,
		packets: stream.packets[2:],
		total:   total * opusChannels,
		skip:    int(head.PreSkip),
	}

	logrus.WithFields(logrus.Fields{
		"function":        "OpenOpus",
		"source_channels": head.Channels,
		"input_rate":      head.InputSampleRate,
		"pre_skip":        head.PreSkip,
		"packets":         len(a.packets),
		"total_samples":   a.total,
	}).Debug("Opened opus stream")

	return a, nil
}

// Head returns the stream identification header.
func (a *OpusAdapter) Head() OpusHead { return a.head }

// Channels implements Adapter.
func (a *OpusAdapter) Channels() int { return opusChannels }

// SampleRate implements Adapter.
func (a *OpusAdapter) SampleRate() int { return opusSampleRate }

// Format implements Adapter.
func (a *OpusAdapter) Format() string { return FormatOpus }

// TotalSamples implements Adapter.
func (a *OpusAdapter) TotalSamples() int64 { return a.total }

// Read implements Adapter.
func (a *OpusAdapter) Read(dst []float32) (int, error) {
	if a.released {
		return 0, ErrReleased
	}

	limit := len(dst)
	if remaining := a.total - a.read; int64(limit) > remaining {
		limit = int(remaining)
	}

	n := 0
	for n < limit {
		if len(a.pending) == 0 {
			if a.next >= len(a.packets) {
				break
			}
			if err := a.decodeNext(); err != nil {
				if n == 0 {
					return 0, err
				}
				break
			}
			continue
		}
		c := copy(dst[n:limit], a.pending)
		a.pending = a.pending[c:]
		n += c
	}
	a.read += int64(n)
	return n, nil
}

func (a *OpusAdapter) decodeNext() error {
	packet := a.packets[a.next]
	a.next++

	samples, err := opusPacketSamples(packet)
	if err != nil {
		return err
	}
	size := samples * opusChannels * 2
	if cap(a.pcm) < size {
		a.pcm = make([]byte, size)
	}
	out := a.pcm[:size]

	if _, _, err := a.decoder.Decode(packet, out); err != nil {
		logrus.WithFields(logrus.Fields{
			"function": "OpusAdapter.decodeNext",
			"packet":   a.next - 1,
			"error":    err.Error(),
		}).Warn("Opus packet decode failed")
		return fmt.Errorf("opus decode: %w", err)
	}

	decoded := make([]float32, samples*opusChannels)
	for i := range decoded {
		v := int16(binary.LittleEndian.Uint16(out[i*2:]))
		decoded[i] = float32(v) / 32768
	}

	if a.skip > 0 {
		drop := a.skip
		if drop > len(decoded) {
			drop = len(decoded)
		}
		decoded = decoded[drop:]
		a.skip -= drop
	}
	a.pending = decoded
	return nil
}

// Release implements Adapter.
func (a *OpusAdapter) Release() error {
	if a.released {
		return nil
	}
	a.released = true
	a.packets = nil
	a.pending = nil
	a.pcm = nil
	return nil
}
