package gdrom

import "fmt"

// Command is a controller command code.
type Command int

// Controller command codes.
const (
	CmdPIORead  Command = 16 // Read sectors, CPU moves each word
	CmdDMARead  Command = 17 // Read sectors through the DMA engine
	CmdGetTOC   Command = 18 // Legacy TOC read
	CmdGetTOC2  Command = 19 // Read TOC for a session
	CmdPlay     Command = 20 // CDDA play by track
	CmdPlay2    Command = 21 // CDDA play by sector
	CmdPause    Command = 22 // CDDA pause
	CmdRelease  Command = 23 // CDDA resume
	CmdInit     Command = 24 // Initialize the drive
	CmdSeek     Command = 27
	CmdRead     Command = 28
	CmdStop     Command = 33 // Spin down
	CmdGetSCD   Command = 34 // Read subcode
	CmdGetSes   Command = 35
)

var commandNames = map[Command]string{
	CmdPIORead: "PIOREAD",
	CmdDMARead: "DMAREAD",
	CmdGetTOC:  "GETTOC",
	CmdGetTOC2: "GETTOC2",
	CmdPlay:    "PLAY",
	CmdPlay2:   "PLAY2",
	CmdPause:   "PAUSE",
	CmdRelease: "RELEASE",
	CmdInit:    "INIT",
	CmdSeek:    "SEEK",
	CmdRead:    "READ",
	CmdStop:    "STOP",
	CmdGetSCD:  "GETSCD",
	CmdGetSes:  "GETSES",
}

// String returns the firmware name of the command.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CMD(%d)", int(c))
}

// Params is a command parameter block. A nil Params means the command takes none.
type Params interface {
	isParams()
}

// TOCParams is the GETTOC2 parameter block.
type TOCParams struct {
	Session int
	Buffer  *TOC
}

// ReadParams is the PIOREAD/DMAREAD parameter block.
type ReadParams struct {
	Sector   int
	Count    int
	Buffer   []byte
	Reserved int // always 0
}

// SubcodeParams is the GETSCD parameter block.
type SubcodeParams struct {
	Which  int
	Length int
	Buffer []byte
}

// PlayParams is the PLAY/PLAY2 parameter block.
type PlayParams struct {
	Start  int
	End    int
	Repeat int // 0-15, 15 repeats forever
}

// DataTypeParams configures how sectors are delivered.
type DataTypeParams struct {
	Mode       int // 0 = set, 1 = get
	SectorPart int
	CDXA       int
	SectorSize int
}

func (*TOCParams) isParams()      {}
func (*ReadParams) isParams()     {}
func (*SubcodeParams) isParams()  {}
func (*PlayParams) isParams()     {}
func (*DataTypeParams) isParams() {}

// Sector regions for DataTypeParams.SectorPart.
const (
	ReadWholeSector = 0x1000
	ReadDataArea    = 0x2000
)

// CD-XA modes for DataTypeParams.CDXA.
const (
	CDXARaw   = 0
	CDXAMode1 = 1
	CDXAMode2 = 2
)

// Default is passed for any data-type parameter the drive should choose.
const Default = -1

// ReadMode selects the sector transfer strategy.
type ReadMode int

const (
	ReadPIO ReadMode = 0
	ReadDMA ReadMode = 1
)

func (m ReadMode) String() string {
	switch m {
	case ReadPIO:
		return "pio"
	case ReadDMA:
		return "dma"
	default:
		return fmt.Sprintf("ReadMode(%d)", int(m))
	}
}

// ParseReadMode accepts "pio" or "dma".
func ParseReadMode(s string) (ReadMode, error) {
	switch s {
	case "pio", "PIO":
		return ReadPIO, nil
	case "dma", "DMA":
		return ReadDMA, nil
	}
	return 0, fmt.Errorf("%w: read mode %q", ErrInvalidMode, s)
}

// CDDAMode selects how CDDA play ranges are addressed.
type CDDAMode int

const (
	CDDATracks  CDDAMode = 1
	CDDASectors CDDAMode = 2
)

func (m CDDAMode) String() string {
	switch m {
	case CDDATracks:
		return "tracks"
	case CDDASectors:
		return "sectors"
	default:
		return fmt.Sprintf("CDDAMode(%d)", int(m))
	}
}

// MaxRepeat means repeat forever.
const MaxRepeat = 15
