package gdrom

import (
	"context"
	"fmt"
)

// CDDAPlay plays from start to end, addressed as tracks or sectors. repeat
// is clamped to 0-15; 15 repeats forever.
func (d *Drive) CDDAPlay(ctx context.Context, start, end, repeat int, mode CDDAMode) error {
	if repeat > MaxRepeat {
		repeat = MaxRepeat
	}
	if repeat < 0 {
		repeat = 0
	}

	var cmd Command
	switch mode {
	case CDDATracks:
		cmd = CmdPlay
	case CDDASectors:
		cmd = CmdPlay2
	default:
		return fmt.Errorf("%w: cdda mode %d", ErrInvalidMode, int(mode))
	}

	return d.run(ctx, cmd, &PlayParams{Start: start, End: end, Repeat: repeat})
}

// CDDAPause pauses playback.
func (d *Drive) CDDAPause(ctx context.Context) error {
	return d.run(ctx, CmdPause, nil)
}

// CDDAResume resumes paused playback.
func (d *Drive) CDDAResume(ctx context.Context) error {
	return d.run(ctx, CmdRelease, nil)
}

// SpinDown stops the disc.
func (d *Drive) SpinDown(ctx context.Context) error {
	return d.run(ctx, CmdStop, nil)
}
