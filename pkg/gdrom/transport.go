package gdrom

import (
	"fmt"
	"runtime"
	"time"
)

// RequestID identifies a submitted command until it reaches a terminal state.
type RequestID int

// RequestState is the value returned by polling a request.
type RequestState int

// Request states reported by the controller.
const (
	StateFailed     RequestState = -1
	StateNoActive   RequestState = 0
	StateProcessing RequestState = 1
	StateCompleted  RequestState = 2
	StateAborted    RequestState = 3
)

func (s RequestState) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateNoActive:
		return "no-active"
	case StateProcessing:
		return "processing"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// StatusBlock is the detail block filled in when a request is polled.
// Word 0 holds the firmware error detail of a failed request.
type StatusBlock [4]int32

// Transport is the controller firmware interface. Implementations are not
// required to be safe for concurrent use: the Drive only calls them with the
// bus lock held.
type Transport interface {
	// InitSystem resets the controller's command server.
	InitSystem()

	// Submit queues cmd and returns a handle for polling it.
	Submit(cmd Command, params Params) RequestID

	// Service lets the controller make progress on queued requests.
	Service()

	// Poll reports the state of a request and fills detail.
	Poll(id RequestID, detail *StatusBlock) RequestState

	// Abort asks the controller to drop pending requests for cmd. Best effort.
	Abort(cmd Command)

	// QueryDriveStatus fills out with (drive status, disc type). A negative
	// return means the query failed.
	QueryDriveStatus(out *[2]uint32) int

	// ChangeDataType applies a sector layout. A negative return means failure.
	ChangeDataType(params *DataTypeParams) int
}

// Unit selects a device on the shared bus.
type Unit int

// Units on the shared bus.
const (
	UnitMaster Unit = 0
	UnitSlave  Unit = 1
)

// Selector chooses which unit answers subsequent commands.
type Selector interface {
	SelectDevice(unit Unit)
}

// Scheduler provides the two suspension primitives the driver needs.
type Scheduler interface {
	// Yield lets other goroutines run between polls.
	Yield()

	// Sleep pauses between INIT attempts.
	Sleep(d time.Duration)
}

// GoScheduler implements Scheduler on the Go runtime.
type GoScheduler struct{}

func (GoScheduler) Yield()                { runtime.Gosched() }
func (GoScheduler) Sleep(d time.Duration) { time.Sleep(d) }
