package ihex

import (
	"bufio"
	"errors"
	"io"
)

// LineReader is a source of IntelHex lines. Each line keeps its terminator;
// io.EOF signals the end of the stream.
type LineReader interface {
	ReadLine() (string, error)
}

type lineReader struct {
	r *bufio.Reader
}

// NewLineReader returns a LineReader splitting r on '\n'.
func NewLineReader(r io.Reader) LineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

func (lr *lineReader) ReadLine() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err == io.EOF && line != "" {
		// last line without terminator, handed to the decoder which
		// reports it
		return line, nil
	}
	return line, err
}

// parser holds the state of one parse call
type parser struct {
	m               *Memory
	extendedAddress uint32
	finished        bool
	lineNum         uint
}

// ParseIntelHex reads records from reader into memory until the end of file
// record. Data already in memory is kept and new data may not overlap it.
// Lines after the end of file record are never read.
func (m *Memory) ParseIntelHex(reader io.Reader) error {
	return m.ParseLines(NewLineReader(reader))
}

// ParseLines is ParseIntelHex over an arbitrary line source.
func (m *Memory) ParseLines(src LineReader) error {
	p := &parser{m: m}
	return m.setError(p.run(src))
}

func (p *parser) run(src LineReader) error {
	for !p.finished {
		line, err := src.ReadLine()
		if errors.Is(err, io.EOF) {
			return newError(ErrMissingEOF, "", p.lineNum)
		}
		p.lineNum++
		if err != nil {
			return wrapError(ErrLineSource, err, p.lineNum)
		}
		if err := p.parseLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) parseLine(line string) error {
	rec, err := DecodeRecord(line)
	if err != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Line = p.lineNum
		}
		return err
	}
	return p.parseRecord(rec)
}

func (p *parser) parseRecord(rec Record) error {
	switch rec.Type {
	case DataRecord:
		adr := uint32(rec.Address) + p.extendedAddress
		return p.m.addBinary(adr, rec.Data, p.lineNum)
	case EOFRecord:
		p.finished = true
	case ExtendedLinearAddressRecord:
		if rec.Address != 0 {
			return newError(ErrAddressField, "nonzero address in extended linear address line", p.lineNum)
		}
		if len(rec.Data) != 2 {
			return newError(ErrAddressField, "extended linear address must be 2 bytes", p.lineNum)
		}
		p.extendedAddress = uint32(rec.Data[0])<<24 | uint32(rec.Data[1])<<16
	case StartLinearAddressRecord:
	default:
		return newError(ErrUnsupportedRecordType, rec.Type.String(), p.lineNum)
	}
	return nil
}
