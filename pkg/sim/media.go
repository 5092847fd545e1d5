package sim

import (
	"encoding/binary"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
)

// Subcode reply sizes, header included.
const (
	subcodeHeaderSize = 4
	subQAllSize       = subcodeHeaderSize + 96
	subQChannelSize   = subcodeHeaderSize + 10
	subCatalogSize    = subcodeHeaderSize + 20
	subISRCSize       = subcodeHeaderSize + 20
)

// rawSector returns the raw sector at lba, from the track image when one
// covers it.
func (c *Controller) rawSector(t *Track, lba uint32) ([]byte, bool) {
	if img, ok := c.images[t.Number]; ok {
		index := int64(lba - t.Start)
		if index < img.TotalSectors() {
			if err := img.SeekToSector(index); err != nil {
				return nil, false
			}
			return img.Sector(), true
		}
	}
	SynthesizeSector(t, lba, c.raw)
	return c.raw, true
}

func (c *Controller) read(p *gdrom.ReadParams) bool {
	size := c.dataType.SectorSize
	first, err := common.SafeAddress(p.Sector)
	if err != nil || p.Count <= 0 || p.Count > len(p.Buffer)/size {
		return false
	}

	for i := 0; i < p.Count; i++ {
		lba := first + uint32(i)
		t, ok := c.disc.TrackAt(lba)
		if !ok {
			return false
		}
		raw, ok := c.rawSector(t, lba)
		if !ok {
			return false
		}
		if !c.extract(t, raw, p.Buffer[i*size:(i+1)*size]) {
			return false
		}
		c.head = lba
	}

	c.stopPlayback(gdrom.SubAudioNoInfo)
	c.status = gdrom.StatusPaused
	return true
}

// extract copies the part of a raw sector selected by the data type.
func (c *Controller) extract(t *Track, raw, dst []byte) bool {
	dt := c.dataType
	if dt.SectorPart == gdrom.ReadWholeSector {
		copy(dst, raw)
		return true
	}

	if !t.IsData() || dt.CDXA != t.Mode {
		return false
	}
	off := dataOffset(t.Mode)
	if t.Mode == 2 && dt.SectorSize == common.Mode2SectorSize {
		off = common.SyncSize + common.HeaderSize
	}
	if off+dt.SectorSize > len(raw) {
		return false
	}
	copy(dst, raw[off:off+dt.SectorSize])
	return true
}

// position is the frame the subchannel currently reports.
func (c *Controller) position() uint32 {
	if c.play.active {
		return c.play.pos
	}
	return c.head
}

func (c *Controller) subcode(p *gdrom.SubcodeParams) bool {
	if p.Buffer == nil || p.Length > len(p.Buffer) {
		return false
	}

	var size int
	switch p.Which {
	case gdrom.SubQAll:
		size = subQAllSize
	case gdrom.SubQChannel:
		size = subQChannelSize
	case gdrom.SubMediaCatalog:
		size = subCatalogSize
	case gdrom.SubTrackISRC:
		size = subISRCSize
	default:
		return false
	}
	if p.Length < size {
		return false
	}

	buf := p.Buffer[:size]
	for i := range buf {
		buf[i] = 0
	}
	buf[1] = c.audio
	binary.BigEndian.PutUint16(buf[2:4], uint16(size))

	body := buf[subcodeHeaderSize:]
	pos := c.position()
	switch p.Which {
	case gdrom.SubQAll:
		q := c.qFrame(pos)
		// Interleaved P-W: bit 6 of each byte carries one bit of channel Q.
		for i := 0; i < 96; i++ {
			if q[i/8]&(0x80>>(i%8)) != 0 {
				body[i] |= 0x40
			}
		}
	case gdrom.SubQChannel:
		q := c.qFrame(pos)
		copy(body, q[:10])
	case gdrom.SubMediaCatalog:
		copy(body, c.disc.Catalog)
	case gdrom.SubTrackISRC:
		if t, ok := c.disc.TrackAt(pos); ok {
			copy(body, t.ISRC)
		}
	}
	return true
}

// qFrame builds the 12-byte mode-1 Q channel frame for a position.
func (c *Controller) qFrame(pos uint32) [12]byte {
	var q [12]byte
	t, ok := c.disc.TrackAt(pos)
	if !ok {
		// Lead-out.
		q[0] = 0x01
		q[1] = 0xaa
	} else {
		q[0] = t.Ctrl()<<4 | 0x01
		q[1] = common.ToBCD(uint32(t.Number))
		q[2] = 0x01
		rm, rs, rf := common.FramesToMSFParts(pos - t.Start)
		q[3], q[4], q[5] = common.ToBCD(rm), common.ToBCD(rs), common.ToBCD(rf)
	}
	am, as, af := common.FramesToMSFParts(pos)
	q[7], q[8], q[9] = common.ToBCD(am), common.ToBCD(as), common.ToBCD(af)
	binary.BigEndian.PutUint16(q[10:], ^crc16(q[:10]))
	return q
}

// crc16 is the CRC-16/CCITT used by subchannel Q.
func crc16(data []byte) uint16 {
	var crc uint16
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ 0x1021
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func (c *Controller) startPlayback(cmd gdrom.Command, p *gdrom.PlayParams) bool {
	if p.Start < 0 || p.End < p.Start {
		return false
	}

	var start, end uint32
	if cmd == gdrom.CmdPlay {
		first, ok := c.disc.Track(p.Start)
		if !ok {
			return false
		}
		last, ok := c.disc.Track(p.End)
		if !ok {
			return false
		}
		start, end = first.Start, last.End()
	} else {
		var err error
		if start, err = common.SafeAddress(p.Start); err != nil {
			return false
		}
		if end, err = common.SafeAddress(p.End); err != nil {
			return false
		}
		if _, ok := c.disc.TrackAt(end - 1); !ok && start != end {
			return false
		}
	}

	t, ok := c.disc.TrackAt(start)
	if !ok || t.IsData() || start >= end {
		return false
	}

	c.play = playback{active: true, start: start, end: end, pos: start, repeat: p.Repeat}
	c.status = gdrom.StatusPlaying
	c.audio = gdrom.SubAudioPlaying
	return true
}

func (c *Controller) stopPlayback(audio byte) {
	c.play = playback{}
	c.audio = audio
}

func (c *Controller) advancePlayback() {
	if !c.play.active || c.status != gdrom.StatusPlaying {
		return
	}
	c.play.pos += c.opts.PlayStep
	if c.play.pos < c.play.end {
		return
	}

	switch {
	case c.play.repeat >= gdrom.MaxRepeat:
		c.play.pos = c.play.start
	case c.play.repeat > 0:
		c.play.repeat--
		c.play.pos = c.play.start
	default:
		c.head = c.play.end - 1
		c.stopPlayback(gdrom.SubAudioEnded)
		c.status = gdrom.StatusStandby
	}
}
