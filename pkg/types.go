package pkg

import (
	"io"

	"github.com/hansbonini/gdtools/pkg/gdrom"
)

// TrackReport describes one TOC track
type TrackReport struct {
	Number int    `yaml:"number"`
	Type   string `yaml:"type"` // "audio" or "data"
	Ctrl   uint8  `yaml:"ctrl"`
	ADR    uint8  `yaml:"adr"`
	LBA    uint32 `yaml:"lba"`
	MSF    string `yaml:"msf"`
}

// TOCReport is the exported form of a session's table of contents
type TOCReport struct {
	Session    int           `yaml:"session"`
	FirstTrack int           `yaml:"first_track"`
	LastTrack  int           `yaml:"last_track"`
	LeadOut    uint32        `yaml:"lead_out"`
	LeadOutMSF string        `yaml:"lead_out_msf"`
	DataTrack  uint32        `yaml:"data_track_lba"` // 0 when the session has no data track
	Tracks     []TrackReport `yaml:"tracks"`
}

// StatusReport is a drive status snapshot
type StatusReport struct {
	Status   gdrom.DriveStatus
	Disc     gdrom.DiscType
	DataType gdrom.DataTypeParams
}

// SubcodeReport is a decoded GETSCD reply
type SubcodeReport struct {
	Which       int
	AudioStatus byte
	Length      int

	// Q channel position
	Control  uint8
	Track    int
	Index    int
	Relative string
	Absolute string

	Catalog string
	ISRC    string
}

// DiscDecoder interface defines methods for decoding drive replies
type DiscDecoder interface {
	DecodeTOC(reader io.Reader) (*gdrom.TOC, error)
	DecodeSubcode(buf []byte, which int) (*SubcodeReport, error)
}

// TOCExporter interface defines methods for exporting a TOC
type TOCExporter interface {
	BuildReport(toc *gdrom.TOC, session int) *TOCReport
	ExportYAML(report *TOCReport, writer io.Writer) error
	ExportBinary(toc *gdrom.TOC, writer io.Writer) error
}
