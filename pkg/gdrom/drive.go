// Package gdrom drives an optical-disc controller through its firmware
// command interface.
//
// Every operation takes the bus lock, selects the drive unit, runs one or more
// commands to completion and classifies the firmware outcome into the error
// taxonomy in errors.go. Commands block until the controller reports a
// terminal state; only INIT is retried, and only by the lifecycle manager.
//
//	drive := gdrom.New(ctrl, gdrom.Options{Selector: ctrl})
//	if err := drive.Init(ctx); err != nil {
//		if errors.Is(err, gdrom.ErrNoDisc) {
//			// prompt for a disc
//		}
//	}
package gdrom

import (
	"context"
	"sync"
	"time"
)

// Firmware retry budget for INIT: 500 attempts, 20 ms apart (about 10 s).
const (
	DefaultInitRetries = 10 * 1000 / 20
	DefaultInitPause   = 20 * time.Millisecond
)

// Options configures a Drive. Zero values select the defaults.
type Options struct {
	Unit        Unit
	Selector    Selector
	Scheduler   Scheduler
	Lock        *Lock
	InitRetries int
	InitPause   time.Duration
}

// Drive is the driver for one disc drive unit.
type Drive struct {
	transport   Transport
	selector    Selector
	sched       Scheduler
	lock        *Lock
	unit        Unit
	initRetries int
	initPause   time.Duration

	mu       sync.Mutex
	dataType DataTypeParams
}

// New creates a driver on top of a controller transport.
func New(transport Transport, opts Options) *Drive {
	d := &Drive{
		transport:   transport,
		selector:    opts.Selector,
		sched:       opts.Scheduler,
		lock:        opts.Lock,
		unit:        opts.Unit,
		initRetries: opts.InitRetries,
		initPause:   opts.InitPause,
	}
	if d.sched == nil {
		d.sched = GoScheduler{}
	}
	if d.lock == nil {
		d.lock = BusLock
	}
	if d.initRetries <= 0 {
		d.initRetries = DefaultInitRetries
	}
	if d.initPause <= 0 {
		d.initPause = DefaultInitPause
	}
	return d
}

// Acquire takes the bus lock and selects this drive's unit. Callers may use
// the returned context to run several operations atomically; nested
// operations re-enter the lock.
func (d *Drive) Acquire(ctx context.Context) (context.Context, func(), error) {
	ctx, release, err := d.lock.Acquire(ctx)
	if err != nil {
		return ctx, release, err
	}
	d.selectDevice()
	return ctx, release, nil
}

// Unit returns the unit this drive selects.
func (d *Drive) Unit() Unit {
	return d.unit
}

// DataType returns the last sector layout applied by ChangeDataType.
func (d *Drive) DataType() DataTypeParams {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dataType
}

func (d *Drive) selectDevice() {
	if d.selector != nil {
		d.selector.SelectDevice(d.unit)
	}
}

// run executes one command under the bus lock.
func (d *Drive) run(ctx context.Context, cmd Command, params Params) error {
	_, release, err := d.Acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return d.exec(cmd, params)
}
