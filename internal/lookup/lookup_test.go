package lookup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMinistryID(t *testing.T) {
	tests := []struct {
		name   string
		want   int
		wantOK bool
	}{
		{"内閣官房", 1, true},
		{"防衛省", 99, true},
		{"原子力規制員会", 23, true},
		{"特定個人情報保護委員会", 6, true},
		{"存在しない省", 0, false},
	}

	for _, tt := range tests {
		got, ok := MinistryID(tt.name)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("MinistryID(%q) = %d, %v; want %d, %v", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestYearMap_Resolve(t *testing.T) {
	m := DefaultYearMap()

	tests := []struct {
		filename string
		want     int
		wantOK   bool
	}{
		{"database240918_シート1.csv", 2023, true},
		{"database_220427_Sheet1.csv", 2020, true},
		{"database2019_220427_Sheet1.csv", 2019, true},
		{"database2014.csv", 2014, true},
		{"unknown.csv", 0, false},
	}

	for _, tt := range tests {
		got, ok := m.Resolve(tt.filename)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Resolve(%q) = %d, %v; want %d, %v", tt.filename, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestLoadYearMap(t *testing.T) {
	dir := t.TempDir()

	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		return path
	}

	t.Run("empty path uses defaults", func(t *testing.T) {
		m, err := LoadYearMap("")
		if err != nil {
			t.Fatalf("LoadYearMap error = %v", err)
		}
		if y, ok := m.Resolve("database2016_x.csv"); !ok || y != 2016 {
			t.Errorf("Resolve = %d, %v; want 2016, true", y, ok)
		}
	})

	t.Run("extends defaults", func(t *testing.T) {
		path := write("extend.yaml", "years:\n  - token: database250701\n    year: 2024\n")
		m, err := LoadYearMap(path)
		if err != nil {
			t.Fatalf("LoadYearMap error = %v", err)
		}
		if y, ok := m.Resolve("database250701_a.csv"); !ok || y != 2024 {
			t.Errorf("new token Resolve = %d, %v; want 2024, true", y, ok)
		}
		if y, ok := m.Resolve("database2015.csv"); !ok || y != 2015 {
			t.Errorf("default token Resolve = %d, %v; want 2015, true", y, ok)
		}
	})

	t.Run("replace drops defaults", func(t *testing.T) {
		path := write("replace.yaml", "replace: true\nyears:\n  - token: sheet\n    year: 2020\n")
		m, err := LoadYearMap(path)
		if err != nil {
			t.Fatalf("LoadYearMap error = %v", err)
		}
		if _, ok := m.Resolve("database2015.csv"); ok {
			t.Error("default token still resolves after replace")
		}
		if len(m.Tokens()) != 1 {
			t.Errorf("len(Tokens()) = %d, want 1", len(m.Tokens()))
		}
	})

	t.Run("invalid year", func(t *testing.T) {
		path := write("bad.yaml", "years:\n  - token: x\n    year: 0\n")
		if _, err := LoadYearMap(path); err == nil {
			t.Error("expected error for invalid year")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadYearMap(filepath.Join(dir, "nope.yaml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}
