package common

import (
	"fmt"
	"math"
)

// MaxAddress is the largest sector address a 24-bit TOC or command field holds.
const MaxAddress = 0x00ffffff

// SafeIntToUint32 safely converts int to uint32 with bounds checking
func SafeIntToUint32(value int) (uint32, error) {
	if value < 0 {
		return 0, fmt.Errorf("value %d is negative, cannot convert to uint32", value)
	}
	if uint64(value) > math.MaxUint32 {
		return 0, fmt.Errorf("value %d out of range for uint32 (0-%d)", value, uint64(math.MaxUint32))
	}
	return uint32(value), nil
}

// SafeAddress converts a sector address, rejecting values outside 0-MaxAddress.
func SafeAddress(value int) (uint32, error) {
	v, err := SafeIntToUint32(value)
	if err != nil {
		return 0, err
	}
	if v > MaxAddress {
		return 0, fmt.Errorf("address %d out of range (0-%d)", value, MaxAddress)
	}
	return v, nil
}
