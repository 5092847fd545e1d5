package common

import (
	"encoding/binary"
	"io"
)

// ReadUint32LE reads a uint32 in little-endian format
func ReadUint32LE(reader io.Reader) (uint32, error) {
	var value uint32
	err := binary.Read(reader, binary.LittleEndian, &value)
	return value, err
}

// WriteUint32LE writes a uint32 in little-endian format
func WriteUint32LE(writer io.Writer, value uint32) error {
	return binary.Write(writer, binary.LittleEndian, value)
}

// ReadUint16BE reads a uint16 in big-endian format, the byte order of
// subcode reply headers
func ReadUint16BE(data []byte) (uint16, error) {
	if len(data) < 2 {
		return 0, io.ErrUnexpectedEOF
	}
	return binary.BigEndian.Uint16(data), nil
}
