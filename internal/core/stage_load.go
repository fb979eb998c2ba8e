package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/JonMunkholm/ReviewSheet/internal/csvio"
	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

// TableLoader replaces the contents of one canonical table in a store.
type TableLoader interface {
	LoadTable(ctx context.Context, t schema.Table, rows [][]string) (int64, error)
}

// LoadStage copies the canonical tables into a database. Without a loader
// it reports itself skipped.
type LoadStage struct {
	baseStage
	loader TableLoader
}

// NewLoadStage returns stage four. loader may be nil.
func NewLoadStage(loader TableLoader) *LoadStage {
	return &LoadStage{baseStage: baseStage{number: 4, name: "load"}, loader: loader}
}

func (s *LoadStage) Run(ctx context.Context, run *Run) error {
	if s.loader == nil {
		return run.Report.Update("no database configured; skipping load")
	}
	if err := run.Report.Update("loading canonical tables into the database"); err != nil {
		return err
	}

	tables := schema.All()
	loaded := 0
	for i, t := range tables {
		path := filepath.Join(run.Dirs.Processed, t.FileName)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			run.Logger.Info("table not built; not loaded", "file", t.FileName)
			continue
		}

		if err := run.Report.Update("table %d/%d: loading %s", i+1, len(tables), t.Key); err != nil {
			return err
		}

		data, err := csvio.ReadFile(path)
		if err != nil {
			return fatal(Label(s), t.FileName, err)
		}
		if !slices.Equal(data.Header, t.Columns()) {
			return fatal(Label(s), t.FileName, fmt.Errorf("header does not match table %s", t.Key))
		}

		n, err := s.loader.LoadTable(ctx, t, data.Rows)
		if err != nil {
			return fatal(Label(s), t.FileName, err)
		}
		run.Logger.Info("table loaded", "table", t.Key, "rows", n)
		loaded++
	}

	return run.Report.Update("load finished: %d tables", loaded)
}
