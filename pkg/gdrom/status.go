package gdrom

import (
	"context"
	"errors"
	"fmt"

	"github.com/hansbonini/gdtools/pkg/common"
)

// DriveStatus is the mechanical state of the drive.
type DriveStatus int

// Drive states reported by QueryDriveStatus.
const (
	StatusUnknown  DriveStatus = -1
	StatusBusy     DriveStatus = 0
	StatusPaused   DriveStatus = 1
	StatusStandby  DriveStatus = 2
	StatusPlaying  DriveStatus = 3
	StatusSeeking  DriveStatus = 4
	StatusScanning DriveStatus = 5
	StatusOpen     DriveStatus = 6
	StatusNoDisc   DriveStatus = 7
	StatusRetry    DriveStatus = 8
	StatusError    DriveStatus = 9
)

var driveStatusNames = [...]string{
	"busy", "paused", "standby", "playing", "seeking",
	"scanning", "open", "no disc", "retry", "error",
}

func (s DriveStatus) String() string {
	if s >= 0 && int(s) < len(driveStatusNames) {
		return driveStatusNames[s]
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// DiscType is the disc or session format reported by the drive.
type DiscType int

// Disc types reported by QueryDriveStatus.
const (
	DiscUnknown DiscType = -1
	DiscCDDA    DiscType = 0x00
	DiscCDROM   DiscType = 0x10
	DiscCDROMXA DiscType = 0x20
	DiscCDI     DiscType = 0x30
	DiscGDROM   DiscType = 0x80
)

func (t DiscType) String() string {
	switch t {
	case DiscCDDA:
		return "CD-DA"
	case DiscCDROM:
		return "CD-ROM"
	case DiscCDROMXA:
		return "CD-ROM XA"
	case DiscCDI:
		return "CD-i"
	case DiscGDROM:
		return "GD-ROM"
	default:
		return fmt.Sprintf("disc(0x%02x)", int(t))
	}
}

// Status queries the drive state and disc type.
//
// From interrupt context (see WithInterrupt) it never waits: if anyone holds
// the bus lock, including the code the interrupt preempted, it returns
// ErrLockBusy so the caller can try again later.
func (d *Drive) Status(ctx context.Context) (DriveStatus, DiscType, error) {
	var (
		release func()
		err     error
	)
	if InInterrupt(ctx) {
		_, release, err = d.lock.TryAcquire(ctx)
	} else {
		_, release, err = d.lock.Acquire(ctx)
	}
	if err != nil {
		if errors.Is(err, ErrLockBusy) {
			common.LogDebug(common.DebugStatusBusy)
		}
		return StatusUnknown, DiscUnknown, err
	}
	defer release()

	d.selectDevice()

	var out [2]uint32
	if rv := d.transport.QueryDriveStatus(&out); rv < 0 {
		return StatusUnknown, DiscUnknown, fmt.Errorf("query drive status (rv %d): %w", rv, ErrSystem)
	}
	return DriveStatus(out[0]), DiscType(out[1]), nil
}
