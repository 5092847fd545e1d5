package sim

import (
	"sync"

	"github.com/hansbonini/gdtools/pkg/common"
	"github.com/hansbonini/gdtools/pkg/gdrom"
)

// detailIllegal is reported for requests the drive rejects, such as reads
// outside the disc or malformed parameter blocks.
const detailIllegal int32 = 5

// DefaultPlayStep is how many frames CDDA playback advances per Service call.
const DefaultPlayStep = 75

// Options configures a Controller.
type Options struct {
	// Unit is the bus unit the drive answers on.
	Unit gdrom.Unit
	// Latency is the number of Service calls a request stays Processing.
	Latency int
	// SpinUp is how many INIT attempts answer Aborted after a disc is inserted.
	SpinUp int
	// PlayStep is the CDDA frames advanced per Service call.
	PlayStep uint32
}

type request struct {
	id        gdrom.RequestID
	cmd       gdrom.Command
	params    gdrom.Params
	remaining int
	state     gdrom.RequestState
	detail    int32
}

type playback struct {
	active bool
	start  uint32
	end    uint32
	pos    uint32
	repeat int
}

// Controller is an in-memory disc drive that implements gdrom.Transport and
// gdrom.Selector. It is safe for concurrent use.
type Controller struct {
	mu   sync.Mutex
	opts Options

	selected gdrom.Unit
	disc     *Disc
	images   map[int]*TrackImage
	changed  bool
	spinUp   int

	status   gdrom.DriveStatus
	audio    byte
	dataType gdrom.DataTypeParams
	head     uint32
	play     playback

	nextID   gdrom.RequestID
	requests []*request

	raw []byte
}

// NewController returns a controller with an empty tray.
func NewController(opts Options) *Controller {
	if opts.PlayStep == 0 {
		opts.PlayStep = DefaultPlayStep
	}
	if opts.Latency < 0 {
		opts.Latency = 0
	}
	return &Controller{
		opts:   opts,
		status: gdrom.StatusNoDisc,
		audio:  gdrom.SubAudioNoInfo,
		dataType: gdrom.DataTypeParams{
			SectorPart: gdrom.ReadDataArea,
			CDXA:       gdrom.CDXAMode1,
			SectorSize: common.DataSectorSize,
		},
		raw: make([]byte, common.RawSectorSize),
	}
}

// Insert loads a disc, replacing any disc in the tray. The drive reports a
// media change until the next INIT.
func (c *Controller) Insert(disc *Disc) error {
	images := make(map[int]*TrackImage)
	for i := range disc.Tracks {
		t := &disc.Tracks[i]
		path := disc.imagePath(t)
		if path == "" {
			continue
		}
		img, err := OpenTrackImage(path)
		if err != nil {
			closeImages(images)
			return common.FormatError(common.ErrFailedToOpenTrackImage, err)
		}
		if img.TotalSectors() < int64(t.Length) {
			common.LogWarn(common.WarnShortTrackImage, t.Number, img.TotalSectors(), t.Length)
		}
		images[t.Number] = img
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	closeImages(c.images)
	c.disc = disc
	c.images = images
	c.changed = true
	c.spinUp = c.opts.SpinUp
	c.status = gdrom.StatusStandby
	c.stopPlayback(gdrom.SubAudioNoInfo)
	c.head = disc.Tracks[0].Start
	common.LogInfo(common.InfoDiscLoaded, disc.Name, len(disc.Tracks), disc.DiscType())
	return nil
}

// Eject empties the tray.
func (c *Controller) Eject() {
	c.mu.Lock()
	defer c.mu.Unlock()
	closeImages(c.images)
	c.images = nil
	c.disc = nil
	c.changed = true
	c.status = gdrom.StatusOpen
	c.stopPlayback(gdrom.SubAudioNoInfo)
	common.LogInfo(common.InfoDiscEjected)
}

// Close releases any open track images.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	closeImages(c.images)
	c.images = nil
	return nil
}

func closeImages(images map[int]*TrackImage) {
	for _, img := range images {
		img.Close()
	}
}

// Disc returns the loaded disc, or nil.
func (c *Controller) Disc() *Disc {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disc
}

// DataType returns the sector layout the drive currently delivers.
func (c *Controller) DataType() gdrom.DataTypeParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dataType
}

// Pending returns the number of requests not yet collected by Poll.
func (c *Controller) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.requests)
}

// SelectDevice implements gdrom.Selector.
func (c *Controller) SelectDevice(unit gdrom.Unit) {
	c.mu.Lock()
	c.selected = unit
	c.mu.Unlock()
}

// InitSystem drops every queued request.
func (c *Controller) InitSystem() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests = nil
}

// Submit queues a command.
func (c *Controller) Submit(cmd gdrom.Command, params gdrom.Params) gdrom.RequestID {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	c.requests = append(c.requests, &request{
		id:        c.nextID,
		cmd:       cmd,
		params:    params,
		remaining: c.opts.Latency,
		state:     gdrom.StateProcessing,
	})
	return c.nextID
}

// Service advances CDDA playback and executes queued requests whose latency
// has elapsed.
func (c *Controller) Service() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.advancePlayback()
	for _, req := range c.requests {
		if req.state != gdrom.StateProcessing {
			continue
		}
		if req.remaining > 0 {
			req.remaining--
			continue
		}
		req.state, req.detail = c.execute(req.cmd, req.params)
		common.LogDebug(common.DebugSimRequest, req.id, req.cmd, req.state)
	}
}

// Poll reports a request's state. Terminal requests are forgotten once
// polled.
func (c *Controller) Poll(id gdrom.RequestID, detail *gdrom.StatusBlock) gdrom.RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, req := range c.requests {
		if req.id != id {
			continue
		}
		*detail = gdrom.StatusBlock{req.detail}
		if req.state != gdrom.StateProcessing {
			c.requests = append(c.requests[:i], c.requests[i+1:]...)
		}
		return req.state
	}
	return gdrom.StateNoActive
}

// Abort aborts every pending request for cmd.
func (c *Controller) Abort(cmd gdrom.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, req := range c.requests {
		if req.cmd == cmd && req.state == gdrom.StateProcessing {
			req.state = gdrom.StateAborted
		}
	}
}

// QueryDriveStatus reports the drive state and disc type.
func (c *Controller) QueryDriveStatus(out *[2]uint32) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != c.opts.Unit {
		return -1
	}
	out[0] = uint32(c.status)
	out[1] = 0
	if c.disc != nil {
		out[1] = uint32(c.disc.DiscType())
	}
	return 0
}

// ChangeDataType sets (Mode 0) or reports (Mode 1) the sector layout.
func (c *Controller) ChangeDataType(params *gdrom.DataTypeParams) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if params == nil || c.selected != c.opts.Unit {
		return -1
	}
	if params.Mode == 1 {
		*params = c.dataType
		params.Mode = 1
		return 0
	}

	switch params.SectorPart {
	case gdrom.ReadWholeSector, gdrom.ReadDataArea:
	default:
		return -1
	}
	switch params.CDXA {
	case gdrom.CDXARaw, gdrom.CDXAMode1, gdrom.CDXAMode2:
	default:
		return -1
	}
	switch params.SectorSize {
	case common.DataSectorSize, common.Mode2SectorSize, common.RawSectorSize:
	default:
		return -1
	}
	c.dataType = *params
	return 0
}

// execute runs one command against the drive state.
func (c *Controller) execute(cmd gdrom.Command, params gdrom.Params) (gdrom.RequestState, int32) {
	if c.selected != c.opts.Unit {
		return gdrom.StateFailed, detailIllegal
	}
	if c.disc == nil {
		return gdrom.StateFailed, gdrom.DetailNoDisc
	}
	if cmd == gdrom.CmdInit {
		return c.init()
	}
	if c.changed {
		return gdrom.StateFailed, gdrom.DetailDiscChanged
	}

	switch cmd {
	case gdrom.CmdGetTOC2:
		p, ok := params.(*gdrom.TOCParams)
		if !ok || p.Buffer == nil {
			return gdrom.StateFailed, detailIllegal
		}
		if err := c.disc.BuildTOC(p.Session, p.Buffer); err != nil {
			return gdrom.StateFailed, detailIllegal
		}
	case gdrom.CmdPIORead, gdrom.CmdDMARead:
		p, ok := params.(*gdrom.ReadParams)
		if !ok || !c.read(p) {
			return gdrom.StateFailed, detailIllegal
		}
	case gdrom.CmdGetSCD:
		p, ok := params.(*gdrom.SubcodeParams)
		if !ok || !c.subcode(p) {
			return gdrom.StateFailed, detailIllegal
		}
	case gdrom.CmdPlay, gdrom.CmdPlay2:
		p, ok := params.(*gdrom.PlayParams)
		if !ok || !c.startPlayback(cmd, p) {
			return gdrom.StateFailed, detailIllegal
		}
	case gdrom.CmdPause:
		if c.status == gdrom.StatusPlaying {
			c.status = gdrom.StatusPaused
			c.audio = gdrom.SubAudioPaused
		}
	case gdrom.CmdRelease:
		if c.status == gdrom.StatusPaused && c.play.active {
			c.status = gdrom.StatusPlaying
			c.audio = gdrom.SubAudioPlaying
		}
	case gdrom.CmdStop:
		c.stopPlayback(gdrom.SubAudioNoInfo)
		c.status = gdrom.StatusStandby
	default:
		return gdrom.StateFailed, detailIllegal
	}
	return gdrom.StateCompleted, 0
}

func (c *Controller) init() (gdrom.RequestState, int32) {
	if c.spinUp > 0 {
		c.spinUp--
		return gdrom.StateAborted, 0
	}
	c.changed = false
	c.status = gdrom.StatusStandby
	c.stopPlayback(gdrom.SubAudioNoInfo)
	c.head = c.disc.Tracks[0].Start
	return gdrom.StateCompleted, 0
}
