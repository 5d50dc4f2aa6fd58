package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

const (
	oggHeaderSize    = 27
	oggNoGranule     = -1
	oggMaxLacing     = 255
	oggCapture       = "OggS"
	oggStreamVersion = 0
)

// oggStream is the packet view of the first logical bitstream in an Ogg file.
type oggStream struct {
	packets [][]byte
	// granule is the last valid granule position seen on a page of the
	// stream, or -1 when no page carried one.
	granule int64
}

// parseOgg splits an Ogg file into packets. Packets spanning pages are
// reassembled through the lacing table; pages of other logical streams are
// skipped.
func parseOgg(data []byte) (*oggStream, error) {
	s := &oggStream{granule: oggNoGranule}

	var (
		serial  uint32
		haveSer bool
		partial []byte
	)

	for off := 0; off < len(data); {
		if len(data)-off < oggHeaderSize {
			return nil, fmt.Errorf("%w: truncated ogg page header at %d", ErrInvalidStream, off)
		}
		page := data[off:]
		if !bytes.Equal(page[:4], []byte(oggCapture)) {
			return nil, fmt.Errorf("%w: missing ogg capture pattern at %d", ErrInvalidStream, off)
		}
		if page[4] != oggStreamVersion {
			return nil, fmt.Errorf("%w: ogg version %d", ErrInvalidStream, page[4])
		}

		granule := int64(binary.LittleEndian.Uint64(page[6:14]))
		pageSerial := binary.LittleEndian.Uint32(page[14:18])
		segments := int(page[26])
		if len(page) < oggHeaderSize+segments {
			return nil, fmt.Errorf("%w: truncated lacing table at %d", ErrInvalidStream, off)
		}
		lacing := page[oggHeaderSize : oggHeaderSize+segments]

		bodyLen := 0
		for _, l := range lacing {
			bodyLen += int(l)
		}
		bodyStart := oggHeaderSize + segments
		if len(page) < bodyStart+bodyLen {
			return nil, fmt.Errorf("%w: truncated ogg page body at %d", ErrInvalidStream, off)
		}
		off += bodyStart + bodyLen

		if !haveSer {
			serial, haveSer = pageSerial, true
		}
		if pageSerial != serial {
			continue
		}

		body := page[bodyStart : bodyStart+bodyLen]
		pos := 0
		for _, l := range lacing {
			partial = append(partial, body[pos:pos+int(l)]...)
			pos += int(l)
			if l < oggMaxLacing {
				s.packets = append(s.packets, partial)
				partial = nil
			}
		}

		if granule != oggNoGranule {
			s.granule = granule
		}
	}

	if len(s.packets) == 0 {
		return nil, fmt.Errorf("%w: no ogg packets", ErrInvalidStream)
	}
	return s, nil
}
