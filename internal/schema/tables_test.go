package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRegisteredTables(t *testing.T) {
	var keys []string
	for _, table := range All() {
		keys = append(keys, table.Key)
	}

	want := []string{Ministries, Programs, Budgets, FundFlows, Expenditures}
	if diff := cmp.Diff(want, keys); diff != "" {
		t.Errorf("registered tables mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_Columns(t *testing.T) {
	ff := MustGet(FundFlows)

	want := []string{
		"program_id", "block_id", "sequence",
		"支払先費目", "支払先使途", "支払先金額(百万円)", "支払先計",
	}
	if diff := cmp.Diff(want, ff.Columns()); diff != "" {
		t.Errorf("fund flow columns mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"program_id", "block_id", "sequence"}, ff.KeyColumns()); diff != "" {
		t.Errorf("fund flow keys mismatch (-want +got):\n%s", diff)
	}
}

func TestTable_UniqueColumns(t *testing.T) {
	for _, table := range All() {
		seen := make(map[string]bool)
		for _, c := range table.Columns() {
			if seen[c] {
				t.Errorf("table %s: duplicate column %q", table.Key, c)
			}
			seen[c] = true
		}
	}
}

func TestRegister_DuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Register of duplicate key did not panic")
		}
	}()
	Register(Table{Key: Programs})
}
