package gdrom

import (
	"context"
	"fmt"
)

// ReadSectors reads count sectors starting at sector using PIO.
func (d *Drive) ReadSectors(ctx context.Context, buf []byte, sector, count int) error {
	return d.ReadSectorsEx(ctx, buf, sector, count, ReadPIO)
}

// ReadSectorsEx reads count sectors starting at sector into buf. A DMA read
// blocks the caller until the transfer completes but lets other goroutines
// run while it polls.
func (d *Drive) ReadSectorsEx(ctx context.Context, buf []byte, sector, count int, mode ReadMode) error {
	if buf == nil {
		return ErrNilBuffer
	}

	var cmd Command
	switch mode {
	case ReadPIO:
		cmd = CmdPIORead
	case ReadDMA:
		cmd = CmdDMARead
	default:
		return fmt.Errorf("%w: read mode %d", ErrInvalidMode, int(mode))
	}

	return d.run(ctx, cmd, &ReadParams{
		Sector:   sector,
		Count:    count,
		Buffer:   buf,
		Reserved: 0,
	})
}
