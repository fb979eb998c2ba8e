package csvio

import (
	"bufio"
	"io"
	"strings"
)

// Writer emits delimited rows with per-column quoting.
//
// encoding/csv only quotes when a field needs it; downstream loaders expect
// every text field quoted and key fields bare, so quoting is done here.
type Writer struct {
	w        *bufio.Writer
	bare     map[int]bool
	quoteAll bool
	err      error
}

// NewCanonicalWriter writes a byte order mark and an unquoted header row.
// Columns named in bare are written without quotes; every other column is
// quoted.
func NewCanonicalWriter(w io.Writer, header []string, bare ...string) (*Writer, error) {
	cw := &Writer{w: bufio.NewWriter(w), bare: make(map[int]bool)}

	keys := make(map[string]bool, len(bare))
	for _, b := range bare {
		keys[b] = true
	}
	for i, h := range header {
		if keys[h] {
			cw.bare[i] = true
		}
	}

	cw.write(bom)
	cw.writeString(strings.Join(header, ","))
	cw.writeString("\n")
	return cw, cw.err
}

// NewQuotedWriter writes a byte order mark and then quotes every field of
// every row, the header included.
func NewQuotedWriter(w io.Writer) *Writer {
	cw := &Writer{w: bufio.NewWriter(w), quoteAll: true}
	cw.write(bom)
	return cw
}

// Write writes one row.
func (cw *Writer) Write(row []string) error {
	for i, field := range row {
		if i > 0 {
			cw.writeString(",")
		}
		if !cw.quoteAll && cw.bare[i] {
			cw.writeString(field)
			continue
		}
		cw.writeString(`"`)
		cw.writeString(strings.ReplaceAll(field, `"`, `""`))
		cw.writeString(`"`)
	}
	cw.writeString("\n")
	return cw.err
}

// Flush writes buffered data to the underlying writer.
func (cw *Writer) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	return cw.w.Flush()
}

func (cw *Writer) write(p []byte) {
	if cw.err == nil {
		_, cw.err = cw.w.Write(p)
	}
}

func (cw *Writer) writeString(s string) {
	if cw.err == nil {
		_, cw.err = cw.w.WriteString(s)
	}
}
