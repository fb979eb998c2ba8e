package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Dirs are the on-disk hand-off points between stages. Each stage reads only
// what the previous stage left on disk, so any stage can be re-run alone.
type Dirs struct {
	Download   string // source workbooks and archives
	Raw        string // flat tables, one per sheet
	Normalized string // flat tables after text normalization
	Processed  string // canonical tables and result archives
}

// DirsUnder lays the stage directories out under root.
func DirsUnder(root string) Dirs {
	return Dirs{
		Download:   filepath.Join(root, "download"),
		Raw:        filepath.Join(root, "raw"),
		Normalized: filepath.Join(root, "normalized"),
		Processed:  filepath.Join(root, "processed"),
	}
}

// Ensure creates every stage directory.
func (d Dirs) Ensure() error {
	for _, dir := range []string{d.Download, d.Raw, d.Normalized, d.Processed} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

// Run is what a stage sees of the job executing it.
type Run struct {
	JobID   string
	Request Request
	Dirs    Dirs
	Report  *Reporter
	Logger  *slog.Logger
}

// Stage is one step of the pipeline.
type Stage interface {
	// Number orders stages; requests select stages by number.
	Number() int

	// Name is the short name used in logs and status messages.
	Name() string

	// Run executes the stage. It must call run.Report at least once per
	// unit of work and return ErrCancelled unchanged.
	Run(ctx context.Context, run *Run) error
}

// baseStage carries the identity every stage shares.
type baseStage struct {
	number int
	name   string
}

func (b baseStage) Number() int  { return b.number }
func (b baseStage) Name() string { return b.name }

// Label is the display form stored in Job.CurrentStage.
func Label(s Stage) string {
	return fmt.Sprintf("stage %d: %s", s.Number(), s.Name())
}

// selectStages returns the stages whose number lies in [from, to], in
// ascending order. Zero bounds are open.
func selectStages(stages []Stage, from, to int) []Stage {
	sorted := append([]Stage(nil), stages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Number() < sorted[j].Number() })

	var out []Stage
	for _, s := range sorted {
		if from > 0 && s.Number() < from {
			continue
		}
		if to > 0 && s.Number() > to {
			continue
		}
		out = append(out, s)
	}
	return out
}

// listFiles returns the regular files in dir whose extension is one of exts,
// sorted by name. A missing directory yields no files.
func listFiles(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		for _, want := range exts {
			if ext == want {
				out = append(out, filepath.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// writeFileAtomic writes through a temporary file in the target directory
// and renames it over path once fn succeeds.
func writeFileAtomic(path string, fn func(f *os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	if err = fn(tmp); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
