package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/ReviewSheet/internal/assemble"
	"github.com/JonMunkholm/ReviewSheet/internal/csvio"
	"github.com/JonMunkholm/ReviewSheet/internal/lookup"
	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

// BuildStage decodes normalized review sheets into the canonical tables.
type BuildStage struct {
	baseStage
	years *lookup.YearMap
}

// NewBuildStage returns stage three. A nil year map uses the defaults.
func NewBuildStage(years *lookup.YearMap) *BuildStage {
	if years == nil {
		years = lookup.DefaultYearMap()
	}
	return &BuildStage{baseStage: baseStage{number: 3, name: "build"}, years: years}
}

func (s *BuildStage) Run(ctx context.Context, run *Run) error {
	if err := run.Report.Update("building canonical tables"); err != nil {
		return err
	}
	if err := os.MkdirAll(run.Dirs.Processed, 0o755); err != nil {
		return fatal(Label(s), "", err)
	}

	files, err := listFiles(run.Dirs.Normalized, ".csv")
	if err != nil {
		return fatal(Label(s), "", err)
	}
	if len(files) == 0 {
		run.Logger.Warn("no normalized tables found", "dir", run.Dirs.Normalized)
		return run.Report.Update("no normalized tables found; skipping")
	}

	var (
		recs      assemble.Records
		ids       = assemble.NewIDs()
		qualified int
	)
	for i, path := range files {
		name := filepath.Base(path)
		if err := run.Report.Update("file %d/%d: analysing %s", i+1, len(files), name); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return fatal(Label(s), name, err)
		}

		r, err := s.buildFile(path, ids)
		if IsSkippable(err) {
			run.Logger.Info("table skipped", "file", name, "reason", err)
			continue
		}
		if err != nil {
			return fatal(Label(s), name, err)
		}
		recs.Append(r)
		qualified++
	}

	if err := run.Report.Update("writing canonical tables from %d review sheets", qualified); err != nil {
		return err
	}
	written, err := writeCanonical(run.Dirs.Processed, recs, qualified > 0)
	if err != nil {
		return fatal(Label(s), "", err)
	}
	for _, w := range written {
		run.Logger.Info("table written", "file", w.file, "rows", w.rows)
	}

	return run.Report.Update("build finished: %d programs, %d budgets, %d fund flows, %d expenditures",
		len(recs.Programs), len(recs.Budgets), len(recs.FundFlows), len(recs.Expenditures))
}

func (s *BuildStage) buildFile(path string, ids *assemble.IDs) (assemble.Records, error) {
	name := filepath.Base(path)

	year, ok := s.years.Resolve(name)
	if !ok {
		return assemble.Records{}, Skip(name, "no review year for file name", nil)
	}

	t, err := csvio.ReadFile(path)
	if errors.Is(err, csvio.ErrEmptyTable) {
		return assemble.Records{}, Skip(name, "empty table", err)
	}
	if err != nil {
		return assemble.Records{}, err
	}

	recs, err := assemble.Sheet(t, year, ids)
	if errors.Is(err, assemble.ErrNotReviewSheet) {
		return assemble.Records{}, Skip(name, "not a review sheet", err)
	}
	return recs, err
}

type writtenTable struct {
	file string
	rows int
}

// writeCanonical writes the ministry master and, when any sheet qualified,
// the record tables. Record tables left over from an earlier run are removed
// when no sheet qualified, so outputs always reflect this run.
func writeCanonical(dir string, recs assemble.Records, withRecords bool) ([]writtenTable, error) {
	var written []writtenTable
	for _, t := range schema.All() {
		out := filepath.Join(dir, t.FileName)

		var rows [][]string
		switch {
		case t.Key == schema.Ministries:
			rows = assemble.MinistryRows()
		case withRecords:
			rows = recs.Table(t.Key)
		default:
			if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
				return written, err
			}
			continue
		}

		if err := writeTable(out, t, rows); err != nil {
			return written, err
		}
		written = append(written, writtenTable{file: t.FileName, rows: len(rows)})
	}
	return written, nil
}

func writeTable(path string, t schema.Table, rows [][]string) error {
	return writeFileAtomic(path, func(f *os.File) error {
		w, err := csvio.NewCanonicalWriter(f, t.Columns(), t.KeyColumns()...)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return w.Flush()
	})
}
