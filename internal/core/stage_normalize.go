package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/ReviewSheet/internal/csvio"
	"github.com/JonMunkholm/ReviewSheet/internal/textnorm"
)

// NormalizeStage rewrites every raw flat table with canonical text.
type NormalizeStage struct {
	baseStage
	norm *textnorm.Normalizer
}

// NewNormalizeStage returns stage two. A nil normalizer uses the default.
func NewNormalizeStage(n *textnorm.Normalizer) *NormalizeStage {
	if n == nil {
		n = textnorm.Default()
	}
	return &NormalizeStage{baseStage: baseStage{number: 2, name: "normalize"}, norm: n}
}

func (s *NormalizeStage) Run(ctx context.Context, run *Run) error {
	if err := run.Report.Update("normalizing flat tables"); err != nil {
		return err
	}
	if err := os.MkdirAll(run.Dirs.Normalized, 0o755); err != nil {
		return fatal(Label(s), "", err)
	}

	files, err := listFiles(run.Dirs.Raw, ".csv")
	if err != nil {
		return fatal(Label(s), "", err)
	}
	if len(files) == 0 {
		run.Logger.Warn("no flat tables found", "dir", run.Dirs.Raw)
		return run.Report.Update("no flat tables found; skipping")
	}

	for i, in := range files {
		name := filepath.Base(in)
		if err := run.Report.Update("file %d/%d: normalizing %s", i+1, len(files), name); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return fatal(Label(s), name, err)
		}

		rows, err := s.normalizeFile(in, filepath.Join(run.Dirs.Normalized, name))
		if err != nil {
			return fatal(Label(s), name, err)
		}
		run.Logger.Debug("table normalized", "file", name, "rows", rows)
	}

	return run.Report.Update("normalize finished: %d tables", len(files))
}

// normalizeFile streams in to out and returns the number of data rows.
func (s *NormalizeStage) normalizeFile(in, out string) (int, error) {
	src, err := os.Open(in)
	if err != nil {
		return 0, err
	}
	defer src.Close()

	rows := 0
	err = writeFileAtomic(out, func(f *os.File) error {
		r := csvio.NewReader(src)
		w := csvio.NewQuotedWriter(f)

		header, err := r.Read()
		if errors.Is(err, io.EOF) {
			return w.Flush()
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if err := w.Write(s.normalizeRow(header, false)); err != nil {
			return err
		}

		for {
			row, err := r.Read()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("read row %d: %w", rows+1, err)
			}
			if err := w.Write(s.normalizeRow(row, true)); err != nil {
				return err
			}
			rows++
		}
		return w.Flush()
	})
	return rows, err
}

// normalizeRow normalizes every cell. Converters escape line breaks inside
// data cells as a literal backslash-n; those are restored first.
func (s *NormalizeStage) normalizeRow(row []string, data bool) []string {
	out := make([]string, len(row))
	for i, cell := range row {
		if data {
			cell = strings.ReplaceAll(cell, `\n`, "\n")
		}
		out[i] = s.norm.Normalize(cell)
	}
	return out
}
