// Package ihex parses and dumps IntelHex files and keeps their content as a
// sparse memory image: an ordered set of disjoint data segments that are
// merged automatically when they touch.
package ihex

import (
	"math"
	"sort"
)

const (
	// DefaultPadByte fills addresses not covered by any segment
	DefaultPadByte byte = 0xFF
	// DefaultAlignWidth bounds the payload of dumped data records
	DefaultAlignWidth byte = 16

	addressSpace = uint64(1) << 32
)

// Structure with binary data segment fields
type DataSegment struct {
	Address uint32 // Starting address of data segment
	Data    []byte // Data segment bytes
}

func (s *DataSegment) end() uint64 {
	return uint64(s.Address) + uint64(len(s.Data))
}

// Memory is a sparse memory image. It is not safe for concurrent use.
type Memory struct {
	dataSegments []*DataSegment // sorted by address, disjoint, non-adjacent
	padByte      byte
	alignWidth   byte
	lastErr      error
}

// Option configures a Memory
type Option func(*Memory)

// WithPadByte sets the value returned for addresses without data.
func WithPadByte(pad byte) Option {
	return func(m *Memory) { m.padByte = pad }
}

// WithAlignWidth sets the maximum payload of dumped data records. Zero keeps
// the default.
func WithAlignWidth(width byte) Option {
	return func(m *Memory) { m.SetAlignWidth(width) }
}

// Constructor of Memory structure
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		padByte:    DefaultPadByte,
		alignWidth: DefaultAlignWidth,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) PadByte() byte       { return m.padByte }
func (m *Memory) SetPadByte(pad byte) { m.padByte = pad }
func (m *Memory) AlignWidth() byte    { return m.alignWidth }

func (m *Memory) SetAlignWidth(width byte) {
	if width == 0 {
		width = DefaultAlignWidth
	}
	m.alignWidth = width
}

// LastError returns the error of the most recent fallible call, nil if it
// succeeded.
func (m *Memory) LastError() error {
	return m.lastErr
}

func (m *Memory) setError(err error) error {
	m.lastErr = err
	return err
}

// Method to getting data segments address from IntelHex data. The returned
// segments are copies.
func (m *Memory) GetDataSegments() []DataSegment {
	segs := make([]DataSegment, 0, len(m.dataSegments))
	for _, s := range m.dataSegments {
		data := make([]byte, len(s.Data))
		copy(data, s.Data)
		segs = append(segs, DataSegment{Address: s.Address, Data: data})
	}
	return segs
}

func (m *Memory) SegmentCount() int {
	return len(m.dataSegments)
}

func (m *Memory) IsEmpty() bool {
	return len(m.dataSegments) == 0
}

// Size returns the number of stored bytes.
func (m *Memory) Size() uint64 {
	var n uint64
	for _, s := range m.dataSegments {
		n += uint64(len(s.Data))
	}
	return n
}

// Bounds returns the first stored address and the address one past the last
// stored byte. hi is 0 when the image reaches the end of the address space.
func (m *Memory) Bounds() (lo, hi uint32, ok bool) {
	if len(m.dataSegments) == 0 {
		return 0, 0, false
	}
	last := m.dataSegments[len(m.dataSegments)-1]
	return m.dataSegments[0].Address, uint32(last.end()), true
}

func (m *Memory) Clear() {
	m.dataSegments = nil
	m.lastErr = nil
}

// search returns the index of the first segment ending after adr
func (m *Memory) search(adr uint64) int {
	return sort.Search(len(m.dataSegments), func(i int) bool {
		return m.dataSegments[i].end() > adr
	})
}

func (m *Memory) overlaps(start, end uint64) bool {
	i := m.search(start)
	return i < len(m.dataSegments) && uint64(m.dataSegments[i].Address) < end
}

// AddBinary stores bytes at adr. The range may not overlap data already in
// memory; touching segments are merged into one. On error the memory is left
// unmodified.
func (m *Memory) AddBinary(adr uint32, bytes []byte) error {
	return m.setError(m.addBinary(adr, bytes, 0))
}

func (m *Memory) addBinary(adr uint32, bytes []byte, line uint) error {
	if len(bytes) == 0 {
		return nil
	}
	start := uint64(adr)
	end := start + uint64(len(bytes))
	if end > addressSpace {
		return newError(ErrAddressRange, "", line)
	}
	if m.overlaps(start, end) {
		return newError(ErrOverlap, "", line)
	}

	// the first segment ending after start lies to the right of the new data,
	// so the left neighbor can only be the one before it
	i := m.search(start)
	var before, after *DataSegment
	if i > 0 && m.dataSegments[i-1].end() == start {
		before = m.dataSegments[i-1]
	}
	if i < len(m.dataSegments) && uint64(m.dataSegments[i].Address) == end {
		after = m.dataSegments[i]
	}

	switch {
	case before != nil && after != nil:
		if !fits(len(before.Data), len(bytes), len(after.Data)) {
			return newError(ErrAllocation, "", line)
		}
		before.Data = append(before.Data, bytes...)
		before.Data = append(before.Data, after.Data...)
		m.dataSegments = append(m.dataSegments[:i], m.dataSegments[i+1:]...)
	case before != nil:
		if !fits(len(before.Data), len(bytes)) {
			return newError(ErrAllocation, "", line)
		}
		before.Data = append(before.Data, bytes...)
	case after != nil:
		if !fits(len(bytes), len(after.Data)) {
			return newError(ErrAllocation, "", line)
		}
		data := make([]byte, 0, len(bytes)+len(after.Data))
		data = append(data, bytes...)
		after.Data = append(data, after.Data...)
		after.Address = adr
	default:
		data := make([]byte, len(bytes))
		copy(data, bytes)
		m.dataSegments = append(m.dataSegments, nil)
		copy(m.dataSegments[i+1:], m.dataSegments[i:])
		m.dataSegments[i] = &DataSegment{Address: adr, Data: data}
	}
	return nil
}

// fits reports whether a buffer of the summed lengths can be allocated
func fits(lengths ...int) bool {
	total := uint64(0)
	for _, l := range lengths {
		total += uint64(l)
	}
	return total <= math.MaxInt
}

// ToBinary returns size bytes starting at address, using the configured pad
// byte for addresses without data.
func (m *Memory) ToBinary(address uint32, size uint32) []byte {
	return m.ToBinaryPadded(address, size, m.padByte)
}

// ToBinaryPadded is ToBinary with an explicit padding value.
func (m *Memory) ToBinaryPadded(address uint32, size uint32, padding byte) []byte {
	data := make([]byte, size)
	m.read(address, data, padding)
	return data
}

// ReadBinary fills out with the bytes starting at address.
func (m *Memory) ReadBinary(address uint32, out []byte) {
	m.read(address, out, m.padByte)
}

func (m *Memory) read(address uint32, out []byte, padding byte) {
	for i := range out {
		out[i] = padding
	}
	start := uint64(address)
	end := start + uint64(len(out))
	for i := m.search(start); i < len(m.dataSegments); i++ {
		s := m.dataSegments[i]
		segStart := uint64(s.Address)
		if segStart >= end {
			break
		}
		lo := max(start, segStart)
		hi := min(end, s.end())
		copy(out[lo-start:hi-start], s.Data[lo-segStart:hi-segStart])
	}
}
