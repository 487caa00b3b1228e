package ihex

import (
	"fmt"
	"strings"
)

// RecordType is the TT field of an IntelHex record
type RecordType byte

// Constants definitions of IntelHex record types
const (
	DataRecord                  RecordType = 0x00 // Record with data bytes
	EOFRecord                   RecordType = 0x01 // Record with end of file indicator
	ExtendedLinearAddressRecord RecordType = 0x04 // Record with extended linear address
	StartLinearAddressRecord    RecordType = 0x05 // Record with start linear address
)

func (t RecordType) String() string {
	switch t {
	case DataRecord:
		return "data"
	case EOFRecord:
		return "end of file"
	case ExtendedLinearAddressRecord:
		return "extended linear address"
	case StartLinearAddressRecord:
		return "start linear address"
	}
	return fmt.Sprintf("type %02X", byte(t))
}

const (
	// shortest record: colon, count, address, type, checksum and terminator
	minLineLength = 12
	// offset of the first payload digit
	dataOffset = 9
	// MaxRecordData is the largest payload one record can carry
	MaxRecordData = 0xFF
)

// Record is one decoded line of an IntelHex stream
type Record struct {
	Address  uint16
	Type     RecordType
	Data     []byte
	Checksum byte
}

func decodeNibble(ch byte) (byte, bool) {
	switch {
	case ch >= '0' && ch <= '9':
		return ch - '0', true
	case ch >= 'A' && ch <= 'F':
		return ch - 'A' + 10, true
	case ch >= 'a' && ch <= 'f':
		return ch - 'a' + 10, true
	}
	return 0, false
}

// decodeHexByte reads two hex digits starting at s[i]
func decodeHexByte(s string, i int) (byte, bool) {
	hi, ok := decodeNibble(s[i])
	if !ok {
		return 0, false
	}
	lo, ok := decodeNibble(s[i+1])
	if !ok {
		return 0, false
	}
	return hi<<4 | lo, true
}

// Checksum returns the two's complement of the 8-bit sum of bytes.
func Checksum(bytes ...byte) byte {
	var sum byte
	for _, b := range bytes {
		sum += b
	}
	return -sum
}

// DecodeRecord parses a single record line. The line must still carry its
// '\n' or '\r' terminator.
func DecodeRecord(line string) (Record, error) {
	var rec Record

	if len(line) < minLineLength {
		return rec, newError(ErrLineLength, "", 0)
	}
	if line[0] != ':' {
		return rec, newError(ErrStartMarker, "", 0)
	}

	var header [4]byte
	for i := range header {
		b, ok := decodeHexByte(line, 1+2*i)
		if !ok {
			return rec, newError(ErrHexDigit, "", 0)
		}
		header[i] = b
	}
	size := int(header[0])
	if len(line)-minLineLength < 2*size {
		return rec, newError(ErrLineLength,
			fmt.Sprintf("declared %d data bytes", size), 0)
	}

	sum := header[0] + header[1] + header[2] + header[3]
	var data []byte
	if size > 0 {
		data = make([]byte, size)
	}
	for i := range data {
		b, ok := decodeHexByte(line, dataOffset+2*i)
		if !ok {
			return rec, newError(ErrHexDigit, "", 0)
		}
		data[i] = b
		sum += b
	}

	end := dataOffset + 2*size
	checksum, ok := decodeHexByte(line, end)
	if !ok {
		return rec, newError(ErrHexDigit, "", 0)
	}
	if sum+checksum != 0 {
		return rec, newError(ErrChecksum,
			fmt.Sprintf("sum = %02X != %02X", -sum, checksum), 0)
	}
	if ch := line[end+2]; ch != '\n' && ch != '\r' {
		return rec, newError(ErrLineTerminator, "", 0)
	}

	rec.Address = uint16(header[1])<<8 | uint16(header[2])
	rec.Type = RecordType(header[3])
	rec.Data = data
	rec.Checksum = checksum
	return rec, nil
}

// EncodeRecord renders one record line, terminated with '\n'. Payloads longer
// than MaxRecordData bytes cannot be represented and cause a panic.
func EncodeRecord(address uint16, typ RecordType, data []byte) string {
	if len(data) > MaxRecordData {
		panic(fmt.Sprintf("ihex: record payload of %d bytes", len(data)))
	}
	size := byte(len(data))
	sum := size + byte(address>>8) + byte(address) + byte(typ)

	var sb strings.Builder
	sb.Grow(minLineLength + 2*len(data))
	fmt.Fprintf(&sb, ":%02X%04X%02X", size, address, byte(typ))
	for _, b := range data {
		fmt.Fprintf(&sb, "%02X", b)
		sum += b
	}
	fmt.Fprintf(&sb, "%02X\n", -sum)
	return sb.String()
}

func (r Record) String() string {
	return strings.TrimSuffix(EncodeRecord(r.Address, r.Type, r.Data), "\n")
}
