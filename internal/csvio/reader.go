// Package csvio reads and writes the flat tables exchanged between pipeline
// stages.
//
// Readers tolerate what spreadsheet exports produce: a UTF-8 byte order
// mark, invalid UTF-8 bytes, ragged rows and stray quotes. Writers emit the
// canonical output format: UTF-8 with a byte order mark, an unquoted header
// row, quoted text fields and unquoted key fields.
package csvio

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// ErrEmptyTable is returned when a file has no header row.
var ErrEmptyTable = errors.New("table has no header row")

// SkipBOM returns a reader positioned after a leading UTF-8 byte order mark,
// if r starts with one.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(bom)); err == nil && string(head) == string(bom) {
		_, _ = br.Discard(len(bom))
	}
	return br
}

// UTF8Sanitizer replaces bytes that are not valid UTF-8 with '?'. Multi-byte
// sequences split across reads are carried to the next read.
type UTF8Sanitizer struct {
	r       io.Reader
	pending []byte
}

// NewUTF8Sanitizer wraps r.
func NewUTF8Sanitizer(r io.Reader) *UTF8Sanitizer {
	return &UTF8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

// Read implements io.Reader.
func (s *UTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	off := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[off:])
	n += off
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	atEOF := err == io.EOF

	// Hold back an incomplete trailing sequence unless the input is done.
	if !atEOF {
		if cut := incompleteTail(data); cut > 0 {
			s.pending = append(s.pending, data[len(data)-cut:]...)
			data = data[:len(data)-cut]
		}
	}

	if utf8.Valid(data) {
		return len(data), err
	}

	w := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			i++
			continue
		}
		copy(data[w:], data[i:i+size])
		w += size
		i += size
	}
	return w, err
}

// incompleteTail returns how many trailing bytes of data begin a multi-byte
// sequence that has not been completed yet.
func incompleteTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b&0xC0 == 0x80 {
			continue
		}
		if b < 0xC0 {
			return 0
		}
		if need := leadLen(b); need > i {
			return i
		}
		return 0
	}
	return 0
}

func leadLen(b byte) int {
	switch {
	case b >= 0xF0:
		return 4
	case b >= 0xE0:
		return 3
	case b >= 0xC0:
		return 2
	default:
		return 1
	}
}

// NewReader returns a csv.Reader over r that skips a byte order mark,
// sanitizes UTF-8 and accepts ragged rows and lazy quotes.
func NewReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(NewUTF8Sanitizer(SkipBOM(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// Table is a header row plus data rows.
type Table struct {
	Header []string
	Rows   [][]string
}

// Cell returns row[i], or "" when the row is shorter than the header.
func Cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// ReadTable reads a whole table from r.
func ReadTable(r io.Reader) (*Table, error) {
	cr := NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Header: header}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// ReadFile reads the table stored at path.
func ReadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadTable(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}
