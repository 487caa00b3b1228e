package ihex

import (
	"io"
)

// LineWriter is a sink for IntelHex lines, each ending with '\n'.
type LineWriter interface {
	WriteLine(line string) error
}

type lineWriter struct {
	w io.Writer
}

// NewLineWriter returns a LineWriter writing every line to w.
func NewLineWriter(w io.Writer) LineWriter {
	return &lineWriter{w: w}
}

func (lw *lineWriter) WriteLine(line string) error {
	_, err := io.WriteString(lw.w, line)
	return err
}

// DumpIntelHex writes the memory as IntelHex records followed by the end of
// file record. Data records never cross a multiple of the align width and an
// extended linear address record precedes the first record of every 64KiB
// bank other than bank 0.
func (m *Memory) DumpIntelHex(writer io.Writer) error {
	return m.DumpLines(NewLineWriter(writer))
}

// DumpLines is DumpIntelHex over an arbitrary line sink.
func (m *Memory) DumpLines(dst LineWriter) error {
	return m.setError(m.dump(dst))
}

func (m *Memory) dump(dst LineWriter) error {
	bank := uint32(0)
	for _, s := range m.dataSegments {
		if err := m.dumpDataSegment(dst, s, &bank); err != nil {
			return err
		}
	}
	return writeLine(dst, 0, EOFRecord, nil)
}

func (m *Memory) dumpDataSegment(dst LineWriter, s *DataSegment, bank *uint32) error {
	align := uint32(m.alignWidth)
	total := uint64(0)
	size := uint64(len(s.Data))
	for total < size {
		adr := s.Address + uint32(total)
		// widths that do not divide 64KiB must still stop at the bank end
		n := min(uint64(align-adr%align), uint64(0x10000-(adr&0xFFFF)), size-total)

		if adr&0xFFFF0000 != *bank {
			*bank = adr & 0xFFFF0000
			hi := []byte{byte(adr >> 24), byte(adr >> 16)}
			if err := writeLine(dst, 0, ExtendedLinearAddressRecord, hi); err != nil {
				return err
			}
		}
		if err := writeLine(dst, uint16(adr), DataRecord, s.Data[total:total+n]); err != nil {
			return err
		}
		total += n
	}
	return nil
}

func writeLine(dst LineWriter, adr uint16, typ RecordType, data []byte) error {
	if err := dst.WriteLine(EncodeRecord(adr, typ, data)); err != nil {
		return wrapError(ErrDump, err, 0)
	}
	return nil
}
