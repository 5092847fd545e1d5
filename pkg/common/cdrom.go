// Package common provides common utilities for CD-ROM operations.
// This file contains sector geometry constants and MSF conversion helpers.
package common

import "fmt"

// Sector geometry shared by the driver, the simulator and the exporters.
const (
	RawSectorSize    = 2352 // Full CD sector (sync + header + data + EDC/ECC)
	DataSectorSize   = 2048 // User data of a Mode 1 / Mode 2 Form 1 sector
	Mode2SectorSize  = 2336 // Everything after the header of a Mode 2 sector
	SyncSize         = 12   // Sync pattern size
	HeaderSize       = 4    // Header size (3 address bytes + 1 mode byte)
	SubHeaderSize    = 8    // CD-XA subheader (two copies of 4 bytes)
	PregapFrames     = 150  // Two second lead-in before LBA 0
	FramesPerSecond  = 75
	SecondsPerMinute = 60
)

// LBAToMSF converts LBA (Logical Block Address) to MSF (Minutes:Seconds:Frames) format
// LBA to MSF conversion: LBA + 150 (pregap)
func LBAToMSF(lba uint32) string {
	m, s, f := LBAToMSFParts(lba)
	return fmt.Sprintf("%02d:%02d:%02d", m, s, f)
}

// LBAToMSFParts splits an LBA into its minute, second and frame components.
func LBAToMSFParts(lba uint32) (minutes, seconds, frames uint32) {
	return FramesToMSFParts(lba + PregapFrames)
}

// FramesToMSFParts splits a frame count (or an absolute address, pregap
// already included, as the drive firmware uses) into minutes, seconds and
// frames.
func FramesToMSFParts(total uint32) (minutes, seconds, frames uint32) {
	minutes = total / (SecondsPerMinute * FramesPerSecond)
	seconds = (total % (SecondsPerMinute * FramesPerSecond)) / FramesPerSecond
	frames = total % FramesPerSecond
	return minutes, seconds, frames
}

// FramesToMSF formats an absolute frame address as MM:SS:FF.
func FramesToMSF(total uint32) string {
	m, s, f := FramesToMSFParts(total)
	return fmt.Sprintf("%02d:%02d:%02d", m, s, f)
}

// ToBCD encodes a value 0-99 as packed BCD, the way subchannel Q stores times.
func ToBCD(v uint32) byte {
	return byte((v/10)<<4 | v%10)
}

// FromBCD decodes a packed BCD byte.
func FromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}
