package core

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// SafePoint is consulted between outputs of one source. A non-nil error
// stops the conversion and is returned as is.
type SafePoint interface {
	Check() error
}

// Converter turns one downloaded source into flat tables under dstDir and
// returns the names of the tables it wrote. A source it cannot handle is
// reported with a SkippableInputError.
type Converter interface {
	Convert(ctx context.Context, src, dstDir string, sp SafePoint) ([]string, error)
}

// sourceExts are the download extensions stage one looks at.
var sourceExts = []string{".zip", ".xlsx", ".csv"}

// FileConverter copies flat tables and unpacks flat tables from zip
// archives. Workbooks need an external converter and are skipped.
type FileConverter struct{}

func (FileConverter) Convert(ctx context.Context, src, dstDir string, sp SafePoint) ([]string, error) {
	name := filepath.Base(src)
	switch strings.ToLower(filepath.Ext(src)) {
	case ".csv":
		f, err := os.Open(src)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		if err := copyTo(filepath.Join(dstDir, name), f); err != nil {
			return nil, err
		}
		return []string{name}, nil

	case ".zip":
		return extractZip(ctx, src, dstDir, sp)

	case ".xlsx":
		return nil, Skip(name, "workbook conversion requires an external converter", nil)

	default:
		return nil, Skip(name, "unsupported source type", nil)
	}
}

// extractZip writes every flat-table member of the archive at src into
// dstDir, flattening member paths. Metadata folders are ignored. sp is
// checked before each member.
func extractZip(ctx context.Context, src, dstDir string, sp SafePoint) ([]string, error) {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return nil, Skip(filepath.Base(src), "unreadable archive", err)
	}
	defer zr.Close()

	var written []string
	for _, member := range zr.File {
		if err := sp.Check(); err != nil {
			return written, err
		}
		if err := ctx.Err(); err != nil {
			return written, err
		}
		if member.FileInfo().IsDir() || strings.HasPrefix(member.Name, "__MACOSX") {
			continue
		}
		base := path.Base(member.Name)
		if strings.ToLower(path.Ext(base)) != ".csv" || strings.HasPrefix(base, ".") {
			continue
		}

		rc, err := member.Open()
		if err != nil {
			return written, fmt.Errorf("open %s: %w", member.Name, err)
		}
		err = copyTo(filepath.Join(dstDir, base), rc)
		rc.Close()
		if err != nil {
			return written, fmt.Errorf("extract %s: %w", member.Name, err)
		}
		written = append(written, base)
	}
	return written, nil
}

func copyTo(dst string, r io.Reader) error {
	return writeFileAtomic(dst, func(f *os.File) error {
		_, err := io.Copy(f, r)
		return err
	})
}

// ConvertStage turns downloads into flat tables in the raw directory.
type ConvertStage struct {
	baseStage
	conv Converter
}

// NewConvertStage returns stage one. A nil converter uses FileConverter.
func NewConvertStage(conv Converter) *ConvertStage {
	if conv == nil {
		conv = FileConverter{}
	}
	return &ConvertStage{baseStage: baseStage{number: 1, name: "convert"}, conv: conv}
}

func (s *ConvertStage) Run(ctx context.Context, run *Run) error {
	if err := run.Report.Update("converting downloads to flat tables"); err != nil {
		return err
	}
	if err := os.MkdirAll(run.Dirs.Raw, 0o755); err != nil {
		return fatal(Label(s), "", err)
	}

	sources, err := listFiles(run.Dirs.Download, sourceExts...)
	if err != nil {
		return fatal(Label(s), "", err)
	}
	sources = filterTargets(sources, run.Request.TargetFiles)

	if len(sources) == 0 {
		run.Logger.Warn("no source files found", "dir", run.Dirs.Download)
		return run.Report.Update("no source files found; skipping")
	}

	converted := 0
	for i, src := range sources {
		name := filepath.Base(src)
		if err := run.Report.Update("file %d/%d: converting %s", i+1, len(sources), name); err != nil {
			return err
		}

		tables, err := s.conv.Convert(ctx, src, run.Dirs.Raw, run.Report)
		if IsSkippable(err) {
			run.Logger.Warn("source skipped", "file", name, "error", err)
			continue
		}
		if err != nil {
			return fatal(Label(s), name, err)
		}
		run.Logger.Info("source converted", "file", name, "tables", len(tables))
		converted += len(tables)
	}

	return run.Report.Update("convert finished: %d flat tables", converted)
}

// filterTargets keeps the paths whose base name is listed in targets. An
// empty target list keeps everything.
func filterTargets(paths, targets []string) []string {
	if len(targets) == 0 {
		return paths
	}
	want := make(map[string]bool, len(targets))
	for _, t := range targets {
		want[filepath.Base(t)] = true
	}
	var out []string
	for _, p := range paths {
		if want[filepath.Base(p)] {
			out = append(out, p)
		}
	}
	return out
}
