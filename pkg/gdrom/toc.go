package gdrom

import "context"

// MaxTracks is the number of track slots in a TOC.
const MaxTracks = 99

// ctrlData marks a data track in a TOC entry's control nibble.
const ctrlData = 4

// TOCEntry is a packed TOC word: control (4 bits), ADR (4 bits), then either
// a track number (first/last words) or a 24-bit start address.
type TOCEntry uint32

// Ctrl returns the control nibble.
func (e TOCEntry) Ctrl() uint8 { return uint8((e & 0xf0000000) >> 28) }

// ADR returns the ADR nibble.
func (e TOCEntry) ADR() uint8 { return uint8((e & 0x0f000000) >> 24) }

// Track returns the track number of a first/last word.
func (e TOCEntry) Track() int { return int((e & 0x00ff0000) >> 16) }

// LBA returns the start address of a track entry.
func (e TOCEntry) LBA() uint32 { return uint32(e & 0x00ffffff) }

// IsData reports whether the entry describes a data track.
func (e TOCEntry) IsData() bool { return e.Ctrl() == ctrlData }

// MakeTOCEntry packs a track entry.
func MakeTOCEntry(ctrl, adr uint8, lba uint32) TOCEntry {
	return TOCEntry(uint32(ctrl&0xf)<<28 | uint32(adr&0xf)<<24 | lba&0x00ffffff)
}

// MakeTrackWord packs a first/last word.
func MakeTrackWord(ctrl, adr uint8, track int) TOCEntry {
	return TOCEntry(uint32(ctrl&0xf)<<28 | uint32(adr&0xf)<<24 | uint32(track&0xff)<<16)
}

// TOC is the table of contents as the controller writes it.
type TOC struct {
	Entries [MaxTracks]TOCEntry
	First   TOCEntry
	Last    TOCEntry
	LeadOut TOCEntry
}

// Track is a decoded TOC entry.
type Track struct {
	Number int
	Ctrl   uint8
	ADR    uint8
	LBA    uint32
}

// IsData reports whether the track holds data rather than audio.
func (t Track) IsData() bool { return t.Ctrl == ctrlData }

// Tracks decodes the entries between First and Last. An invalid range
// yields no tracks.
func (t *TOC) Tracks() []Track {
	first, last, ok := t.bounds()
	if !ok {
		return nil
	}
	tracks := make([]Track, 0, last-first+1)
	for n := first; n <= last; n++ {
		e := t.Entries[n-1]
		tracks = append(tracks, Track{Number: n, Ctrl: e.Ctrl(), ADR: e.ADR(), LBA: e.LBA()})
	}
	return tracks
}

// LocateDataTrack returns the start LBA of the last data track, or 0 when
// the TOC has none or its track range is invalid. Scanning from the end
// finds the data session that follows any audio sessions.
func (t *TOC) LocateDataTrack() uint32 {
	first, last, ok := t.bounds()
	if !ok {
		return 0
	}
	for i := last; i >= first; i-- {
		if t.Entries[i-1].IsData() {
			return t.Entries[i-1].LBA()
		}
	}
	return 0
}

func (t *TOC) bounds() (first, last int, ok bool) {
	first = t.First.Track()
	last = t.Last.Track()
	if first < 1 || last > MaxTracks || first > last {
		return 0, 0, false
	}
	return first, last, true
}

// ReadTOC fills toc with the table of contents of a session.
func (d *Drive) ReadTOC(ctx context.Context, toc *TOC, session int) error {
	if toc == nil {
		return ErrNilBuffer
	}
	return d.run(ctx, CmdGetTOC2, &TOCParams{Session: session, Buffer: toc})
}
