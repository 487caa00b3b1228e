package ihex

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDumpEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMemory().DumpIntelHex(&buf))
	assert.Equal(t, ":00000001FF\n", buf.String())
}

func TestDumpRoundTrip(t *testing.T) {
	input, err := os.ReadFile("testdata/input.hex")
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/normalized.hex")
	require.NoError(t, err)

	m := NewMemory()
	require.NoError(t, m.ParseIntelHex(bytes.NewReader(input)))

	var buf bytes.Buffer
	require.NoError(t, m.DumpIntelHex(&buf))
	assert.Equal(t, string(want), buf.String())

	again := NewMemory()
	require.NoError(t, again.ParseIntelHex(&buf))
	assert.Equal(t, m.GetDataSegments(), again.GetDataSegments())
}

// A segment crossing a bank boundary is split at the boundary and at every
// multiple of the align width.
func TestDumpBankBoundary(t *testing.T) {
	data := make([]byte, 20)
	for i := range data {
		data[i] = byte(i)
	}
	m := NewMemory()
	require.NoError(t, m.AddBinary(0x0000FFF8, data))

	var buf bytes.Buffer
	require.NoError(t, m.DumpIntelHex(&buf))

	want := EncodeRecord(0xFFF8, DataRecord, data[:8]) +
		EncodeRecord(0, ExtendedLinearAddressRecord, []byte{0x00, 0x01}) +
		EncodeRecord(0x0000, DataRecord, data[8:]) +
		":00000001FF\n"
	assert.Equal(t, want, buf.String())
}

func TestDumpAlignWidth(t *testing.T) {
	tests := []struct {
		name  string
		align byte
		adr   uint32
		size  int
		sizes []int
	}{
		{"aligned start", 16, 0x100, 40, []int{16, 16, 8}},
		{"unaligned start", 16, 0x105, 30, []int{11, 16, 3}},
		{"width 4", 4, 0x2, 9, []int{2, 4, 3}},
		{"width 255", 255, 0, 300, []int{255, 45}},
		{"width 255 stops at bank end", 255, 0xFF00, 0x200, []int{0xFF, 1, 0xFE, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMemory(WithAlignWidth(tt.align))
			require.NoError(t, m.AddBinary(tt.adr, make([]byte, tt.size)))

			var buf bytes.Buffer
			require.NoError(t, m.DumpIntelHex(&buf))

			var sizes []int
			for _, line := range strings.SplitAfter(buf.String(), "\n") {
				if line == "" {
					continue
				}
				rec, err := DecodeRecord(line)
				require.NoError(t, err)
				if rec.Type == DataRecord {
					sizes = append(sizes, len(rec.Data))
				}
			}
			assert.Equal(t, tt.sizes, sizes)

			again := NewMemory()
			require.NoError(t, again.ParseIntelHex(&buf))
			assert.Equal(t, m.GetDataSegments(), again.GetDataSegments())
		})
	}
}

func TestDumpHighBanks(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.AddBinary(0x10008000, []byte{0x01, 0x02, 0x03, 0x04}))
	require.NoError(t, m.AddBinary(0x20000000, []byte{0xAA}))
	require.NoError(t, m.AddBinary(0x20000010, []byte{0xBB}))

	var buf bytes.Buffer
	require.NoError(t, m.DumpIntelHex(&buf))
	assert.Equal(t,
		":020000041000EA\n"+
			":048000000102030472\n"+
			":020000042000DA\n"+
			":01000000AA55\n"+
			":01001000BB34\n"+
			":00000001FF\n",
		buf.String())
}

type failingWriter struct {
	lines int
	limit int
}

var errDiskFull = errors.New("disk full")

func (w *failingWriter) WriteLine(line string) error {
	if w.lines == w.limit {
		return errDiskFull
	}
	w.lines++
	return nil
}

func TestDumpWriteError(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.AddBinary(0x00010000, make([]byte, 32)))

	for limit := 0; limit < 4; limit++ {
		w := &failingWriter{limit: limit}
		err := m.DumpLines(w)
		require.ErrorIs(t, err, ErrDump, "limit %d", limit)
		assert.ErrorIs(t, err, errDiskFull)
		assert.Equal(t, ErrDump, KindOf(m.LastError()))
		assert.Equal(t, limit, w.lines)
	}

	require.NoError(t, m.DumpLines(&failingWriter{limit: 4}))
	assert.NoError(t, m.LastError())
}
