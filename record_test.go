package ihex

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeRecord(t *testing.T) {
	rec, err := DecodeRecord(":0400020001020304F0\n")
	require.NoError(t, err)
	assert.Equal(t, Record{
		Address:  0x0002,
		Type:     DataRecord,
		Data:     []byte{1, 2, 3, 4},
		Checksum: 0xF0,
	}, rec)

	rec, err = DecodeRecord(":020000040800f2\r\n")
	require.NoError(t, err)
	assert.Equal(t, ExtendedLinearAddressRecord, rec.Type)
	assert.Equal(t, []byte{0x08, 0x00}, rec.Data)

	rec, err = DecodeRecord(":00000001FF\n")
	require.NoError(t, err)
	assert.Equal(t, EOFRecord, rec.Type)
	assert.Nil(t, rec.Data)
}

func TestDecodeRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
		kind ErrorKind
	}{
		{"too short", ":000000FF\n", ErrLineLength},
		{"missing terminator", ":00000001FF", ErrLineLength},
		{"empty line", "\n", ErrLineLength},
		{"no colon", "000000001FF\n", ErrStartMarker},
		{"no ascii hex", ":qw00000001FF\n", ErrHexDigit},
		{"bad address digit", ":000G0001FF\n", ErrHexDigit},
		{"declared length too long", ":02000000FE\n", ErrLineLength},
		{"bad type digit", ":0100000Z11EE\n", ErrHexDigit},
		{"bad payload digit", ":01000000X1EE\n", ErrHexDigit},
		{"bad checksum digit", ":00000001FG\n", ErrHexDigit},
		{"wrong checksum", ":00000001FE\n", ErrChecksum},
		{"wrong checksum zero record", ":0000000001\n", ErrChecksum},
		{"wrong terminator", ":00000001FFx", ErrLineTerminator},
		{"trailing garbage", ":00000001FF00\n", ErrLineTerminator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeRecord(tt.line)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestEncodeRecord(t *testing.T) {
	tests := []struct {
		adr  uint16
		typ  RecordType
		data []byte
		want string
	}{
		{0x0002, DataRecord, []byte{1, 2, 3, 4}, ":0400020001020304F0\n"},
		{0, ExtendedLinearAddressRecord, []byte{0x08, 0x00}, ":020000040800F2\n"},
		{0, ExtendedLinearAddressRecord, []byte{0x00, 0x01}, ":020000040001F9\n"},
		{0, EOFRecord, nil, ":00000001FF\n"},
		{0xFFF8, DataRecord, []byte(":0200000"), ":08FFF8003A3032303030303075\n"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			line := EncodeRecord(tt.adr, tt.typ, tt.data)
			assert.Equal(t, tt.want, line)
			assert.Len(t, line, minLineLength+2*len(tt.data))

			rec, err := DecodeRecord(line)
			require.NoError(t, err)
			assert.Equal(t, tt.adr, rec.Address)
			assert.Equal(t, tt.typ, rec.Type)
		})
	}

	assert.Panics(t, func() { EncodeRecord(0, DataRecord, make([]byte, 256)) })
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, byte(0xFF), Checksum(0x00, 0x00, 0x00, 0x01))
	assert.Equal(t, byte(0x00), Checksum())
	assert.Equal(t, byte(0xF2), Checksum(0x02, 0x00, 0x00, 0x04, 0x08, 0x00))
}

// Changing any decoded byte after the count field must break the checksum.
func TestDecodeRecordCorruption(t *testing.T) {
	line := EncodeRecord(0x1234, DataRecord, []byte{0xDE, 0xAD, 0xBE, 0xEF})
	_, err := DecodeRecord(line)
	require.NoError(t, err)

	for i := 3; i+2 < len(line); i += 2 {
		b, ok := decodeHexByte(line, i)
		require.True(t, ok)
		for _, delta := range []byte{0x01, 0x80, 0xFF} {
			bad := line[:i] + fmt.Sprintf("%02X", b+delta) + line[i+2:]
			_, err := DecodeRecord(bad)
			assert.ErrorIs(t, err, ErrChecksum, "corrupted byte at %d: %q", i, bad)
		}
	}
}

func TestRecordTypeString(t *testing.T) {
	assert.Equal(t, "data", DataRecord.String())
	assert.Equal(t, "type 02", RecordType(2).String())
	assert.Equal(t, ":00000001FF", Record{Type: EOFRecord}.String())
}
