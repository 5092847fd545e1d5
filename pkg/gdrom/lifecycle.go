package gdrom

import (
	"context"
	"errors"
	"fmt"

	"github.com/hansbonini/gdtools/pkg/common"
)

// Init resets the controller's command server and brings the drive up with
// the default sector layout.
func (d *Drive) Init(ctx context.Context) error {
	ctx, release, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	d.transport.InitSystem()
	return d.Reinit(ctx)
}

// Shutdown spins the disc down.
func (d *Drive) Shutdown(ctx context.Context) error {
	return d.SpinDown(ctx)
}

// Reinit re-initializes the drive, e.g. after a disc change, keeping the
// drive's preferred sector layout.
func (d *Drive) Reinit(ctx context.Context) error {
	return d.ReinitEx(ctx, Default, Default, Default)
}

// SetSectorSize re-initializes the drive with a new sector size.
func (d *Drive) SetSectorSize(ctx context.Context, size int) error {
	return d.ReinitEx(ctx, Default, Default, size)
}

// ReinitEx retries INIT until the drive is ready, then applies the sector
// layout. ErrNoDisc and ErrSystem stop the retry loop at once. When the retry
// budget runs out INIT is aborted and the last error is returned.
func (d *Drive) ReinitEx(ctx context.Context, sectorPart, cdxa, sectorSize int) error {
	ctx, release, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	attempts := d.initRetries
	for ; attempts > 0; attempts-- {
		err = d.exec(CmdInit, nil)
		if err == nil {
			break
		}
		if errors.Is(err, ErrNoDisc) || errors.Is(err, ErrSystem) {
			return err
		}

		common.WithFields(common.Fields{
			"attempt": d.initRetries - attempts + 1,
			"err":     err,
		}).Debug(common.DebugInitAttempt)
		d.sched.Sleep(d.initPause)
	}

	if attempts <= 0 {
		common.LogWarn(common.WarnInitTimedOut, d.initRetries)
		d.transport.Abort(CmdInit)
		return err
	}

	return d.ChangeDataType(ctx, sectorPart, cdxa, sectorSize)
}

// ChangeDataType sets how sectors are delivered. Any argument may be Default:
// a 2352-byte sector size selects the whole raw sector; otherwise the CD-XA
// mode follows the disc type the drive reports, the region is the data area
// and the size is 2048 bytes.
func (d *Drive) ChangeDataType(ctx context.Context, sectorPart, cdxa, sectorSize int) error {
	_, release, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if sectorSize == common.RawSectorSize {
		if cdxa == Default {
			cdxa = CDXARaw
		}
		if sectorPart == Default {
			sectorPart = ReadWholeSector
		}
	} else {
		if cdxa == Default {
			cdxa = d.preferredCDXA()
		}
		if sectorPart == Default {
			sectorPart = ReadDataArea
		}
		if sectorSize == Default {
			sectorSize = common.DataSectorSize
		}
	}

	params := DataTypeParams{
		Mode:       0,
		SectorPart: sectorPart,
		CDXA:       cdxa,
		SectorSize: sectorSize,
	}
	common.WithFields(common.Fields{
		"part": sectorPart,
		"cdxa": cdxa,
		"size": sectorSize,
	}).Debug(common.DebugDataTypeResolved)

	if rv := d.transport.ChangeDataType(&params); rv < 0 {
		return fmt.Errorf("change data type (rv %d): %w", rv, ErrSystem)
	}

	d.mu.Lock()
	d.dataType = params
	d.mu.Unlock()
	return nil
}

// preferredCDXA asks the drive which CD-XA mode suits the inserted disc.
func (d *Drive) preferredCDXA() int {
	var out [2]uint32
	if rv := d.transport.QueryDriveStatus(&out); rv < 0 {
		common.LogWarn(common.WarnDataTypeDefault)
		return CDXAMode1
	}
	if DiscType(out[1]) == DiscCDROMXA {
		return CDXAMode2
	}
	return CDXAMode1
}
