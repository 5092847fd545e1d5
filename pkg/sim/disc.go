// Package sim provides a simulated disc controller for the gdrom driver.
// A disc is described in YAML; track contents come from raw 2352-byte .bin
// images or are synthesized from the track layout.
package sim

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"gopkg.in/yaml.v3"
)

// Track kinds in a disc description.
const (
	KindAudio = "audio"
	KindData  = "data"
)

// Track describes one track of a simulated disc. Start is an absolute
// frame address, so the first track of a session usually starts at 150.
type Track struct {
	Number  int    `yaml:"number"`
	Session int    `yaml:"session"`
	Kind    string `yaml:"type"`
	Mode    int    `yaml:"mode,omitempty"`
	Start   uint32 `yaml:"start"`
	Length  uint32 `yaml:"length"`
	File    string `yaml:"file,omitempty"`
	ISRC    string `yaml:"isrc,omitempty"`
}

// IsData reports whether the track holds data sectors.
func (t *Track) IsData() bool { return t.Kind == KindData }

// End returns the first frame after the track.
func (t *Track) End() uint32 { return t.Start + t.Length }

// Contains reports whether lba lies inside the track.
func (t *Track) Contains(lba uint32) bool { return lba >= t.Start && lba < t.End() }

// Ctrl returns the TOC control nibble for the track.
func (t *Track) Ctrl() uint8 {
	if t.IsData() {
		return 4
	}
	return 0
}

// Disc is a simulated disc as loaded from YAML.
type Disc struct {
	Name    string  `yaml:"name"`
	Type    string  `yaml:"type"`
	Catalog string  `yaml:"catalog,omitempty"`
	Tracks  []Track `yaml:"tracks"`

	dir      string
	discType gdrom.DiscType
}

var discTypes = map[string]gdrom.DiscType{
	"cdda":     gdrom.DiscCDDA,
	"cdrom":    gdrom.DiscCDROM,
	"cdrom-xa": gdrom.DiscCDROMXA,
	"cdi":      gdrom.DiscCDI,
	"gdrom":    gdrom.DiscGDROM,
}

// LoadDisc reads and validates a disc description. Track image paths are
// resolved relative to the description file.
func LoadDisc(path string) (*Disc, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the user
	if err != nil {
		return nil, fmt.Errorf("failed to read disc description: %w", err)
	}
	disc, err := ParseDisc(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	disc.dir = filepath.Dir(path)
	return disc, nil
}

// ParseDisc decodes and validates a disc description.
func ParseDisc(data []byte) (*Disc, error) {
	var disc Disc
	if err := yaml.Unmarshal(data, &disc); err != nil {
		return nil, fmt.Errorf("failed to parse disc description: %w", err)
	}
	if err := disc.Validate(); err != nil {
		return nil, err
	}
	return &disc, nil
}

// Validate checks the track layout and resolves the disc type.
func (d *Disc) Validate() error {
	dt, ok := discTypes[strings.ToLower(d.Type)]
	if !ok {
		return fmt.Errorf("unknown disc type %q", d.Type)
	}
	d.discType = dt

	if len(d.Tracks) == 0 {
		return fmt.Errorf("disc has no tracks")
	}
	if len(d.Tracks) > gdrom.MaxTracks {
		return fmt.Errorf("disc has %d tracks, at most %d allowed", len(d.Tracks), gdrom.MaxTracks)
	}

	for i := range d.Tracks {
		t := &d.Tracks[i]
		if t.Number != i+1 {
			return fmt.Errorf("track %d: expected number %d", t.Number, i+1)
		}
		if t.Length == 0 {
			return fmt.Errorf("track %d: zero length", t.Number)
		}
		if t.Session < 0 {
			return fmt.Errorf("track %d: negative session", t.Number)
		}
		switch t.Kind {
		case KindAudio:
			t.Mode = 0
		case KindData:
			if t.Mode != 1 && t.Mode != 2 {
				return fmt.Errorf("track %d: data mode must be 1 or 2, got %d", t.Number, t.Mode)
			}
		default:
			return fmt.Errorf("track %d: unknown type %q", t.Number, t.Kind)
		}
		if t.End() > common.MaxAddress {
			return fmt.Errorf("track %d: address out of range", t.Number)
		}
		if i > 0 {
			prev := &d.Tracks[i-1]
			if t.Session < prev.Session {
				return fmt.Errorf("track %d: sessions must not decrease", t.Number)
			}
			if t.Start < prev.End() {
				return fmt.Errorf("track %d: overlaps track %d", t.Number, prev.Number)
			}
		}
	}
	return nil
}

// DiscType returns the type the drive reports for this disc.
func (d *Disc) DiscType() gdrom.DiscType { return d.discType }

// Sessions returns the number of sessions on the disc.
func (d *Disc) Sessions() int {
	return d.Tracks[len(d.Tracks)-1].Session + 1
}

// SessionTracks returns the tracks of one session.
func (d *Disc) SessionTracks(session int) []Track {
	var tracks []Track
	for _, t := range d.Tracks {
		if t.Session == session {
			tracks = append(tracks, t)
		}
	}
	return tracks
}

// TrackAt returns the track containing lba.
func (d *Disc) TrackAt(lba uint32) (*Track, bool) {
	for i := range d.Tracks {
		if d.Tracks[i].Contains(lba) {
			return &d.Tracks[i], true
		}
	}
	return nil, false
}

// Track returns a track by number.
func (d *Disc) Track(number int) (*Track, bool) {
	if number < 1 || number > len(d.Tracks) {
		return nil, false
	}
	return &d.Tracks[number-1], true
}

// BuildTOC packs the table of contents of a session the way the drive
// firmware returns it.
func (d *Disc) BuildTOC(session int, toc *gdrom.TOC) error {
	tracks := d.SessionTracks(session)
	if len(tracks) == 0 {
		return fmt.Errorf("no session %d", session)
	}

	*toc = gdrom.TOC{}
	for _, t := range tracks {
		toc.Entries[t.Number-1] = gdrom.MakeTOCEntry(t.Ctrl(), 1, t.Start)
	}
	first, last := tracks[0], tracks[len(tracks)-1]
	toc.First = gdrom.MakeTrackWord(first.Ctrl(), 1, first.Number)
	toc.Last = gdrom.MakeTrackWord(last.Ctrl(), 1, last.Number)
	toc.LeadOut = gdrom.MakeTOCEntry(last.Ctrl(), 1, last.End())
	return nil
}

func (d *Disc) imagePath(t *Track) string {
	if t.File == "" || filepath.IsAbs(t.File) {
		return t.File
	}
	return filepath.Join(d.dir, t.File)
}

// String summarizes the disc for logs.
func (d *Disc) String() string {
	m, s, f := common.FramesToMSFParts(d.Tracks[len(d.Tracks)-1].End())
	return fmt.Sprintf("%s (%s, %d tracks, %02d:%02d:%02d)", d.Name, d.discType, len(d.Tracks), m, s, f)
}
