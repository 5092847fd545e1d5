package pkg

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/config"
	"github.com/hansbonini/gdtools/pkg/gdrom"
	"github.com/hansbonini/gdtools/pkg/sim"
)

// dumpChunk is the number of sectors read per command while dumping.
const dumpChunk = 16

// DriveProcessor drives a simulated controller through the gdrom driver and
// combines the decoder and exporter functionality.
type DriveProcessor struct {
	*DiscFileDecoder
	*TOCFileExporter

	cfg   *config.Config
	ctrl  *sim.Controller
	drive *gdrom.Drive
}

// NewDriveProcessor builds a controller and driver from cfg and inserts the
// configured disc, if any. Call Init before issuing commands.
func NewDriveProcessor(cfg *config.Config) (*DriveProcessor, error) {
	ctrl := sim.NewController(cfg.SimOptions())
	opts := cfg.DriveOptions()
	opts.Selector = ctrl

	p := &DriveProcessor{
		DiscFileDecoder: NewDiscDecoder(),
		TOCFileExporter: NewTOCExporter(),
		cfg:             cfg,
		ctrl:            ctrl,
		drive:           gdrom.New(ctrl, opts),
	}
	if cfg.Sim.Disc != "" {
		if err := p.Insert(cfg.Sim.Disc); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Drive returns the underlying driver.
func (p *DriveProcessor) Drive() *gdrom.Drive { return p.drive }

// Config returns the processor's configuration. Changes to the read mode and
// session apply to later operations.
func (p *DriveProcessor) Config() *config.Config { return p.cfg }

// Controller returns the simulated controller.
func (p *DriveProcessor) Controller() *sim.Controller { return p.ctrl }

// Close releases the controller's track images.
func (p *DriveProcessor) Close() error {
	return p.ctrl.Close()
}

// Insert loads a disc description into the tray.
func (p *DriveProcessor) Insert(path string) error {
	disc, err := sim.LoadDisc(path)
	if err != nil {
		return common.FormatError(common.ErrFailedToLoadDisc, err)
	}
	return p.ctrl.Insert(disc)
}

// Eject empties the tray.
func (p *DriveProcessor) Eject() {
	p.ctrl.Eject()
}

// Init brings the drive up and applies the configured sector size.
func (p *DriveProcessor) Init(ctx context.Context) error {
	if err := p.drive.Init(ctx); err != nil {
		return common.FormatError(common.ErrFailedToInitDrive, err)
	}
	if size := p.cfg.Drive.SectorSize; size != 0 && size != p.drive.DataType().SectorSize {
		if err := p.drive.SetSectorSize(ctx, size); err != nil {
			return common.FormatError(common.ErrFailedToInitDrive, err)
		}
	}
	common.LogInfo(common.InfoDriveInitialized, p.drive.Unit(), p.drive.DataType().SectorSize)
	return nil
}

// Reinit re-initializes the drive, optionally with a new sector size.
func (p *DriveProcessor) Reinit(ctx context.Context, sectorSize int) error {
	var err error
	if sectorSize == 0 {
		err = p.drive.Reinit(ctx)
	} else {
		err = p.drive.SetSectorSize(ctx, sectorSize)
	}
	if err != nil {
		return common.FormatError(common.ErrFailedToInitDrive, err)
	}
	return nil
}

// Status reports the drive state, disc type and sector layout.
func (p *DriveProcessor) Status(ctx context.Context) (*StatusReport, error) {
	status, disc, err := p.drive.Status(ctx)
	if err != nil {
		return nil, common.FormatError(common.ErrFailedToQueryStatus, err)
	}
	return &StatusReport{Status: status, Disc: disc, DataType: p.drive.DataType()}, nil
}

// ReadTOC reads a session's TOC and decodes it.
func (p *DriveProcessor) ReadTOC(ctx context.Context, session int) (*gdrom.TOC, *TOCReport, error) {
	toc := &gdrom.TOC{}
	if err := p.drive.ReadTOC(ctx, toc, session); err != nil {
		return nil, nil, common.FormatError(common.ErrFailedToReadTOC, err)
	}
	return toc, p.BuildReport(toc, session), nil
}

// LocateDataTrack returns the start of the last data track in the
// configured session.
func (p *DriveProcessor) LocateDataTrack(ctx context.Context) (uint32, error) {
	toc, _, err := p.ReadTOC(ctx, p.cfg.Drive.Session)
	if err != nil {
		return 0, err
	}
	lba := toc.LocateDataTrack()
	if lba == 0 {
		return 0, errors.New(common.ErrNoDataTrack)
	}
	return lba, nil
}

// Dump reads count sectors starting at lba into outputFile. A negative lba
// starts at the data track.
func (p *DriveProcessor) Dump(ctx context.Context, lba, count int, outputFile string) error {
	if lba < 0 {
		start, err := p.LocateDataTrack(ctx)
		if err != nil {
			return err
		}
		lba = int(start)
	}
	if count <= 0 {
		return fmt.Errorf("sector count must be positive, got %d", count)
	}
	if _, err := common.SafeAddress(lba + count - 1); err != nil {
		return err
	}

	file, err := os.Create(outputFile) // #nosec G304 - path comes from the user
	if err != nil {
		return common.FormatError(common.ErrFailedToCreateOutput, err)
	}
	defer file.Close()

	size := p.drive.DataType().SectorSize
	if size <= 0 {
		size = common.DataSectorSize
	}
	buf := make([]byte, dumpChunk*size)
	mode := p.cfg.ReadMode()

	for done := 0; done < count; {
		n := count - done
		if n > dumpChunk {
			n = dumpChunk
		}
		sector := lba + done
		if err := p.drive.ReadSectorsEx(ctx, buf[:n*size], sector, n, mode); err != nil {
			return common.FormatError(common.ErrFailedToReadSectors, fmt.Errorf("at LBA %d: %w", sector, err))
		}
		if _, err := file.Write(buf[:n*size]); err != nil {
			return common.FormatError(common.ErrFailedToWriteOutput, err)
		}
		common.WithFields(common.Fields{"lba": sector, "count": n}).Debug("sectors read")
		done += n
	}

	common.LogInfo(common.InfoSectorsDumped, count, lba, outputFile)
	return nil
}

// Subcode reads and decodes subchannel data of the current position.
func (p *DriveProcessor) Subcode(ctx context.Context, which int) (*SubcodeReport, error) {
	buf := make([]byte, subcodeBufferSize)
	if err := p.drive.GetSubcode(ctx, buf, which); err != nil {
		return nil, common.FormatError(common.ErrFailedToReadSubcode, err)
	}
	return p.DecodeSubcode(buf, which)
}

// Play starts CDDA playback.
func (p *DriveProcessor) Play(ctx context.Context, start, end, repeat int, mode gdrom.CDDAMode) error {
	return p.drive.CDDAPlay(ctx, start, end, repeat, mode)
}

// Pause pauses CDDA playback.
func (p *DriveProcessor) Pause(ctx context.Context) error {
	return p.drive.CDDAPause(ctx)
}

// Resume resumes CDDA playback.
func (p *DriveProcessor) Resume(ctx context.Context) error {
	return p.drive.CDDAResume(ctx)
}

// Stop spins the disc down.
func (p *DriveProcessor) Stop(ctx context.Context) error {
	return p.drive.SpinDown(ctx)
}
