package gdrom

import (
	"runtime"
	"sync"
	"time"
)

// event is one recorded call into the fake controller.
type event struct {
	op    string
	cmd   Command
	id    RequestID
	state RequestState
	unit  Unit
}

type outcome struct {
	state  RequestState
	detail int32
}

type fakeRequest struct {
	cmd       Command
	remaining int
}

// fakeTransport is a scripted controller that records every call.
type fakeTransport struct {
	mu sync.Mutex

	events  []event
	nextID  RequestID
	pending map[RequestID]*fakeRequest

	// busyPolls is how many polls answer Processing before the outcome.
	busyPolls int
	// script holds queued outcomes per command; an empty queue completes.
	script map[Command][]outcome
	// sticky outcomes repeat forever once the script is empty.
	sticky map[Command]outcome

	params      map[Command]Params
	aborts      []Command
	initSystems int

	status        [2]uint32
	statusRV      int
	statusQueries int

	dataTypeRV    int
	dataTypeCalls []DataTypeParams
	onDataType    func()
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		pending: make(map[RequestID]*fakeRequest),
		script:  make(map[Command][]outcome),
		sticky:  make(map[Command]outcome),
		params:  make(map[Command]Params),
		status:  [2]uint32{uint32(StatusStandby), uint32(DiscCDROM)},
	}
}

func (f *fakeTransport) record(e event) {
	f.events = append(f.events, e)
}

func (f *fakeTransport) InitSystem() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initSystems++
	f.record(event{op: "initsystem"})
}

func (f *fakeTransport) Submit(cmd Command, params Params) RequestID {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := f.nextID
	f.pending[id] = &fakeRequest{cmd: cmd, remaining: f.busyPolls}
	f.params[cmd] = params
	f.record(event{op: "submit", cmd: cmd, id: id})
	return id
}

func (f *fakeTransport) Service() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(event{op: "service"})
}

func (f *fakeTransport) Poll(id RequestID, detail *StatusBlock) RequestState {
	f.mu.Lock()
	defer f.mu.Unlock()

	req, ok := f.pending[id]
	if !ok {
		f.record(event{op: "poll", id: id, state: StateNoActive})
		return StateNoActive
	}
	if req.remaining > 0 {
		req.remaining--
		f.record(event{op: "poll", cmd: req.cmd, id: id, state: StateProcessing})
		return StateProcessing
	}

	out := outcome{state: StateCompleted}
	if queue := f.script[req.cmd]; len(queue) > 0 {
		out = queue[0]
		f.script[req.cmd] = queue[1:]
	} else if s, ok := f.sticky[req.cmd]; ok {
		out = s
	}
	delete(f.pending, id)
	detail[0] = out.detail
	f.record(event{op: "poll", cmd: req.cmd, id: id, state: out.state})
	return out.state
}

func (f *fakeTransport) Abort(cmd Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aborts = append(f.aborts, cmd)
	f.record(event{op: "abort", cmd: cmd})
}

func (f *fakeTransport) QueryDriveStatus(out *[2]uint32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statusQueries++
	f.record(event{op: "status"})
	*out = f.status
	return f.statusRV
}

func (f *fakeTransport) ChangeDataType(params *DataTypeParams) int {
	if f.onDataType != nil {
		f.onDataType()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dataTypeCalls = append(f.dataTypeCalls, *params)
	f.record(event{op: "datatype"})
	return f.dataTypeRV
}

func (f *fakeTransport) SelectDevice(unit Unit) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(event{op: "select", unit: unit})
}

func (f *fakeTransport) snapshot() []event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]event(nil), f.events...)
}

func (f *fakeTransport) count(op string, cmd Command) int {
	n := 0
	for _, e := range f.snapshot() {
		if e.op == op && (cmd == 0 || e.cmd == cmd) {
			n++
		}
	}
	return n
}

// fakeScheduler counts suspension points without sleeping.
type fakeScheduler struct {
	mu     sync.Mutex
	yields int
	sleeps []time.Duration
}

func (s *fakeScheduler) Yield() {
	s.mu.Lock()
	s.yields++
	s.mu.Unlock()
	runtime.Gosched()
}

func (s *fakeScheduler) Sleep(d time.Duration) {
	s.mu.Lock()
	s.sleeps = append(s.sleeps, d)
	s.mu.Unlock()
}

// newTestDrive wires a drive to a fresh fake controller and a private lock.
func newTestDrive() (*Drive, *fakeTransport, *fakeScheduler) {
	ft := newFakeTransport()
	sched := &fakeScheduler{}
	d := New(ft, Options{
		Selector:  ft,
		Scheduler: sched,
		Lock:      NewLock(),
	})
	return d, ft, sched
}
