// Package pkg provides the drive processor used by the gdtools CLI.
// This file contains decoders for TOC dumps and subcode replies.
package pkg

import (
	"fmt"
	"io"
	"strings"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
)

// Subcode reply layout
const (
	subcodeHeaderSize = 4
	subcodeBufferSize = 100
	qFrameSize        = 12
)

// DiscFileDecoder implements the DiscDecoder interface
type DiscFileDecoder struct{}

// NewDiscDecoder creates a new decoder instance
func NewDiscDecoder() *DiscFileDecoder {
	return &DiscFileDecoder{}
}

// DecodeTOC reads a TOC in the controller's memory layout: 99 track entries
// followed by the first, last and lead-out words, each little-endian.
func (d *DiscFileDecoder) DecodeTOC(reader io.Reader) (*gdrom.TOC, error) {
	toc := &gdrom.TOC{}
	for i := range toc.Entries {
		word, err := common.ReadUint32LE(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read TOC entry %d: %w", i+1, err)
		}
		toc.Entries[i] = gdrom.TOCEntry(word)
	}

	for _, field := range []*gdrom.TOCEntry{&toc.First, &toc.Last, &toc.LeadOut} {
		word, err := common.ReadUint32LE(reader)
		if err != nil {
			return nil, fmt.Errorf("failed to read TOC trailer: %w", err)
		}
		*field = gdrom.TOCEntry(word)
	}
	return toc, nil
}

// DecodeSubcode parses a GETSCD reply for the given selector.
func (d *DiscFileDecoder) DecodeSubcode(buf []byte, which int) (*SubcodeReport, error) {
	if len(buf) < subcodeHeaderSize {
		return nil, fmt.Errorf("subcode reply too short: %d bytes", len(buf))
	}
	length, err := common.ReadUint16BE(buf[2:4])
	if err != nil {
		return nil, err
	}
	if int(length) < subcodeHeaderSize || int(length) > len(buf) {
		return nil, fmt.Errorf("subcode reply length %d out of range (buffer %d)", length, len(buf))
	}

	report := &SubcodeReport{
		Which:       which,
		AudioStatus: buf[1],
		Length:      int(length),
	}
	body := buf[subcodeHeaderSize:length]

	switch which {
	case gdrom.SubQChannel:
		if len(body) < 10 {
			return nil, fmt.Errorf("Q channel reply too short: %d bytes", len(body))
		}
		decodeQ(report, body)
	case gdrom.SubQAll:
		if len(body) < 8*qFrameSize {
			return nil, fmt.Errorf("subchannel reply too short: %d bytes", len(body))
		}
		var q [qFrameSize]byte
		for i := 0; i < 8*qFrameSize; i++ {
			if body[i]&0x40 != 0 {
				q[i/8] |= 0x80 >> (i % 8)
			}
		}
		decodeQ(report, q[:])
	case gdrom.SubMediaCatalog:
		report.Catalog = cString(body, 13)
	case gdrom.SubTrackISRC:
		report.ISRC = cString(body, 12)
	default:
		return nil, fmt.Errorf("%w: subcode selector %d", gdrom.ErrInvalidMode, which)
	}
	return report, nil
}

// decodeQ fills the position fields from a mode-1 Q frame.
func decodeQ(report *SubcodeReport, q []byte) {
	report.Control = q[0] >> 4
	if q[1] == 0xaa {
		report.Track = 0xaa
	} else {
		report.Track = common.FromBCD(q[1])
	}
	report.Index = common.FromBCD(q[2])
	report.Relative = fmt.Sprintf("%02d:%02d:%02d", common.FromBCD(q[3]), common.FromBCD(q[4]), common.FromBCD(q[5]))
	report.Absolute = fmt.Sprintf("%02d:%02d:%02d", common.FromBCD(q[7]), common.FromBCD(q[8]), common.FromBCD(q[9]))
}

func cString(data []byte, limit int) string {
	if len(data) > limit {
		data = data[:limit]
	}
	return strings.TrimRight(string(data), "\x00 ")
}
