package gdrom

import (
	"errors"
	"fmt"
)

// Drive error taxonomy. A nil error is the OK outcome.
var (
	// ErrNoDisc indicates the tray is empty or the disc is unreadable.
	ErrNoDisc = errors.New("no disc in drive")

	// ErrDiscChanged indicates the media was swapped since the last INIT.
	ErrDiscChanged = errors.New("disc changed")

	// ErrSystem is any firmware fault without a more specific kind.
	ErrSystem = errors.New("drive system error")

	// ErrAborted indicates the command was aborted.
	ErrAborted = errors.New("command aborted")

	// ErrNoActiveRequest indicates a poll for a request the firmware no longer tracks.
	ErrNoActiveRequest = errors.New("no active request")

	// ErrLockBusy indicates an interrupt-context status query found the bus lock held.
	ErrLockBusy = errors.New("drive bus lock busy")

	// ErrInvalidMode indicates a read or playback mode outside the enumerated values.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrNilBuffer indicates a missing output buffer.
	ErrNilBuffer = errors.New("nil output buffer")
)

// Legacy integer codes, as reported by the firmware-facing C API.
const (
	CodeOK       = 0
	CodeNoDisc   = 1
	CodeDiscChg  = 2
	CodeSys      = 3
	CodeAborted  = 4
	CodeNoActive = 5
	CodeLockBusy = -1
)

// Firmware detail codes found in word 0 of a failed request's status block.
const (
	DetailNoDisc      = 2
	DetailDiscChanged = 6
)

// CommandError reports the command that failed and the classified cause.
type CommandError struct {
	Command Command
	Err     error
	Detail  StatusBlock
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ErrorCode maps an error onto the legacy integer codes.
func ErrorCode(err error) int {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrNoDisc):
		return CodeNoDisc
	case errors.Is(err, ErrDiscChanged):
		return CodeDiscChg
	case errors.Is(err, ErrAborted):
		return CodeAborted
	case errors.Is(err, ErrNoActiveRequest):
		return CodeNoActive
	case errors.Is(err, ErrLockBusy):
		return CodeLockBusy
	default:
		return CodeSys
	}
}

// classify turns a terminal request state into an error.
func classify(cmd Command, state RequestState, detail StatusBlock) error {
	var err error
	switch state {
	case StateCompleted:
		return nil
	case StateAborted:
		err = ErrAborted
	case StateNoActive:
		err = ErrNoActiveRequest
	default:
		switch detail[0] {
		case DetailNoDisc:
			err = ErrNoDisc
		case DetailDiscChanged:
			err = ErrDiscChanged
		default:
			err = ErrSystem
		}
	}
	return &CommandError{Command: cmd, Err: err, Detail: detail}
}
