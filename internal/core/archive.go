package core

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
)

// ResultsURLPrefix is where result archives are served.
const ResultsURLPrefix = "/api/results/"

// ArchiveName returns the result archive file name for a job.
func ArchiveName(jobID string) string {
	return fmt.Sprintf("processed_data_%s.zip", jobID)
}

// archiveResult describes a written archive.
type archiveResult struct {
	Name  string
	Files int
	Size  int64
}

func (a archiveResult) String() string {
	return fmt.Sprintf("%s (%d tables, %s)", a.Name, a.Files, humanize.Bytes(uint64(a.Size)))
}

// writeArchive zips every table in dir into the job's archive. It returns
// ok=false, and writes nothing, when dir holds no tables.
func writeArchive(dir, jobID string) (res archiveResult, ok bool, err error) {
	files, err := listFiles(dir, ".csv")
	if err != nil {
		return res, false, err
	}
	if len(files) == 0 {
		return res, false, nil
	}

	res.Name = ArchiveName(jobID)
	path := filepath.Join(dir, res.Name)

	err = writeFileAtomic(path, func(f *os.File) error {
		zw := zip.NewWriter(f)
		for _, file := range files {
			if err := addToArchive(zw, file); err != nil {
				return multierr.Append(err, zw.Close())
			}
		}
		return zw.Close()
	})
	if err != nil {
		return res, false, fmt.Errorf("write %s: %w", res.Name, err)
	}

	st, err := os.Stat(path)
	if err != nil {
		return res, false, err
	}
	res.Files = len(files)
	res.Size = st.Size()
	return res, true, nil
}

func addToArchive(zw *zip.Writer, path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, src.Close()) }()

	w, err := zw.CreateHeader(&zip.FileHeader{
		Name:   filepath.Base(path),
		Method: zip.Deflate,
	})
	if err != nil {
		return err
	}
	_, err = io.Copy(w, src)
	return err
}
