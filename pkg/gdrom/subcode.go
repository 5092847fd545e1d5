package gdrom

import (
	"context"
	"fmt"
)

// Subcode channel selectors for GetSubcode.
const (
	SubQAll         = 1
	SubQChannel     = 2
	SubMediaCatalog = 3
	SubTrackISRC    = 4
)

// Audio status byte found at offset 1 of a subcode reply.
const (
	SubAudioInvalid = 0x00
	SubAudioPlaying = 0x11
	SubAudioPaused  = 0x12
	SubAudioEnded   = 0x13
	SubAudioError   = 0x14
	SubAudioNoInfo  = 0x15
)

// GetSubcode reads subchannel data of the most recently read sector. To get
// the subcode of several sectors, read them one at a time.
func (d *Drive) GetSubcode(ctx context.Context, buf []byte, which int) error {
	if buf == nil {
		return ErrNilBuffer
	}
	return d.run(ctx, CmdGetSCD, &SubcodeParams{Which: which, Length: len(buf), Buffer: buf})
}

// AudioStatusString names the audio status byte of a subcode reply.
func AudioStatusString(status byte) string {
	switch status {
	case SubAudioInvalid:
		return "invalid"
	case SubAudioPlaying:
		return "playing"
	case SubAudioPaused:
		return "paused"
	case SubAudioEnded:
		return "ended"
	case SubAudioError:
		return "error"
	case SubAudioNoInfo:
		return "no info"
	default:
		return fmt.Sprintf("audio(0x%02x)", status)
	}
}
