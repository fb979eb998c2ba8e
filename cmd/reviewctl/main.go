// Command reviewctl runs the review sheet pipeline from the command line and
// decodes individual headers for debugging.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := loadDotEnv(); err != nil {
		fmt.Fprintln(os.Stderr, "error: load .env:", err)
		os.Exit(1)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// loadDotEnv overlays the given env files (".env" when none) onto the
// environment. A missing file is not an error.
func loadDotEnv(files ...string) error {
	err := godotenv.Overload(files...)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
