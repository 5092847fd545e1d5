package gdrom

import (
	"context"

	"github.com/hansbonini/gdtools/pkg/common"
)

// Exec runs a single command to completion under the bus lock.
func (d *Drive) Exec(ctx context.Context, cmd Command, params Params) error {
	return d.run(ctx, cmd, params)
}

// exec submits cmd and polls it until the controller reports a terminal
// state, yielding between polls. It has no timeout. The caller must hold the
// bus lock.
func (d *Drive) exec(cmd Command, params Params) error {
	var detail StatusBlock

	id := d.transport.Submit(cmd, params)
	common.WithFields(common.Fields{"cmd": cmd, "request": id}).Debug(common.DebugCommandSubmitted)

	var state RequestState
	for {
		d.transport.Service()
		state = d.transport.Poll(id, &detail)
		if state != StateProcessing {
			break
		}
		d.sched.Yield()
	}

	err := classify(cmd, state, detail)
	common.WithFields(common.Fields{
		"cmd":     cmd,
		"request": id,
		"state":   state,
		"detail":  detail[0],
	}).Debug(common.DebugCommandFinished)
	return err
}
