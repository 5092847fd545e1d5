package sim

import (
	"fmt"
	"io"
	"os"

	"github.com/hansbonini/gdtools/pkg/common"
)

// TrackImage reads raw 2352-byte sectors from a track's .bin file.
type TrackImage struct {
	file          *os.File
	totalSectors  int64
	currentSector int64
	sectorBuffer  []byte
}

// OpenTrackImage opens a raw track image.
func OpenTrackImage(filename string) (*TrackImage, error) {
	file, err := os.Open(filename) // #nosec G304 - path comes from the disc description
	if err != nil {
		return nil, err
	}

	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	return &TrackImage{
		file:          file,
		totalSectors:  fileInfo.Size() / common.RawSectorSize,
		currentSector: -1,
		sectorBuffer:  make([]byte, common.RawSectorSize),
	}, nil
}

// Close releases the image file.
func (r *TrackImage) Close() error {
	if r.file != nil {
		return r.file.Close()
	}
	return nil
}

// TotalSectors returns the number of whole sectors in the image.
func (r *TrackImage) TotalSectors() int64 { return r.totalSectors }

// SeekToSector loads sector index (relative to the track start) into the
// sector buffer.
func (r *TrackImage) SeekToSector(index int64) error {
	if index >= r.totalSectors || index < 0 {
		return fmt.Errorf("sector %d out of bounds (total: %d)", index, r.totalSectors)
	}
	if index == r.currentSector {
		return nil
	}

	if _, err := r.file.Seek(index*common.RawSectorSize, io.SeekStart); err != nil {
		return err
	}
	if _, err := io.ReadFull(r.file, r.sectorBuffer); err != nil {
		return err
	}

	r.currentSector = index
	return nil
}

// Sector returns the loaded sector. It is overwritten by the next seek.
func (r *TrackImage) Sector() []byte {
	return r.sectorBuffer
}

var syncPattern = [common.SyncSize]byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x00}

// SynthesizeSector fills buf with a raw sector for lba. Data sectors get a
// sync pattern, a BCD header and user data whose first bytes spell the
// address; audio sectors get a counting sample pattern.
func SynthesizeSector(t *Track, lba uint32, buf []byte) {
	buf = buf[:common.RawSectorSize]
	for i := range buf {
		buf[i] = 0
	}

	if !t.IsData() {
		for i := range buf {
			buf[i] = byte(lba + uint32(i))
		}
		return
	}

	copy(buf, syncPattern[:])
	m, s, f := common.FramesToMSFParts(lba)
	buf[12] = common.ToBCD(m)
	buf[13] = common.ToBCD(s)
	buf[14] = common.ToBCD(f)
	buf[15] = byte(t.Mode)

	data := buf[dataOffset(t.Mode):]
	copy(data, fmt.Sprintf("LBA %08d", lba))
	for i := 16; i < common.DataSectorSize; i++ {
		data[i] = byte(i)
	}
}

// dataOffset is where Form 1 user data starts in a raw sector.
func dataOffset(mode int) int {
	if mode == 2 {
		return common.SyncSize + common.HeaderSize + common.SubHeaderSize
	}
	return common.SyncSize + common.HeaderSize
}
