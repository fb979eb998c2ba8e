// Package assemble folds decoded review sheet rows into canonical records.
//
// A source table is first checked for being a review sheet at all. Each row
// of a qualifying table then yields one program record, one budget record,
// and any number of fund-flow and expenditure records, one per repeated
// group that carries meaningful data.
package assemble

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/ReviewSheet/internal/csvio"
	"github.com/JonMunkholm/ReviewSheet/internal/headers"
	"github.com/JonMunkholm/ReviewSheet/internal/lookup"
	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

// ErrNotReviewSheet marks a table that lacks the sentinel columns of a review
// sheet or carries the exclusion column.
var ErrNotReviewSheet = errors.New("not a review sheet")

// Sentinel columns; a review sheet carries at least minSentinels of them.
var sentinelColumns = []string{"府省", "府省庁", "事業名", "事業番号", "事業番号-1"}

const (
	minSentinels = 3

	// Segment sheets share the sentinels but hold a different layout.
	exclusionColumn = "セグメント名"
)

// Qualifies reports whether header belongs to a review sheet.
func Qualifies(header []string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[headers.Clean(h)] = true
	}
	if present[exclusionColumn] {
		return false
	}

	found := 0
	for _, s := range sentinelColumns {
		if present[s] {
			found++
		}
	}
	return found >= minSentinels
}

// ProgramID formats the id of the n-th program (1-based) of a review year.
func ProgramID(year, n int) string {
	return fmt.Sprintf("%d-%05d", year, n)
}

// IDs hands out program ids. Numbering is per review year and continues
// across every table assembled for that year.
type IDs struct {
	next map[int]int
}

// NewIDs returns a counter starting every year at 1.
func NewIDs() *IDs { return &IDs{next: make(map[int]int)} }

// Next returns the next program id for year.
func (c *IDs) Next(year int) string {
	c.next[year]++
	return ProgramID(year, c.next[year])
}

// Records holds assembled rows per canonical table, in table column order.
type Records struct {
	Programs     [][]string
	Budgets      [][]string
	FundFlows    [][]string
	Expenditures [][]string
}

// Append adds every row of other to r.
func (r *Records) Append(other Records) {
	r.Programs = append(r.Programs, other.Programs...)
	r.Budgets = append(r.Budgets, other.Budgets...)
	r.FundFlows = append(r.FundFlows, other.FundFlows...)
	r.Expenditures = append(r.Expenditures, other.Expenditures...)
}

// Table returns the rows for a schema table key.
func (r *Records) Table(key string) [][]string {
	switch key {
	case schema.Programs:
		return r.Programs
	case schema.Budgets:
		return r.Budgets
	case schema.FundFlows:
		return r.FundFlows
	case schema.Expenditures:
		return r.Expenditures
	default:
		return nil
	}
}

// Sheet assembles every row of table t, reviewed in year. Ids are drawn from
// ids in row order.
func Sheet(t *csvio.Table, year int, ids *IDs) (Records, error) {
	if !Qualifies(t.Header) {
		return Records{}, ErrNotReviewSheet
	}

	plan := headers.NewPlan(t.Header, year)

	var out Records
	for _, row := range t.Rows {
		id := ids.Next(year)

		out.Programs = append(out.Programs, programRow(plan, id, year, row))
		out.Budgets = append(out.Budgets, budgetRow(plan, id, row))
		out.FundFlows = append(out.FundFlows, fundFlowRows(plan, id, row)...)
		out.Expenditures = append(out.Expenditures, expenditureRows(plan, id, row)...)
	}
	return out, nil
}

// MinistryRows returns the ministry master in table column order.
func MinistryRows() [][]string {
	rows := make([][]string, len(lookup.Ministries))
	for i, m := range lookup.Ministries {
		rows[i] = []string{strconv.Itoa(m.ID), m.Name}
	}
	return rows
}

func isBlank(s string) bool { return strings.TrimSpace(s) == "" }

// project lays values out in the column order of table key.
func project(key string, values map[string]string) []string {
	cols := schema.MustGet(key).Columns()
	row := make([]string, len(cols))
	for i, c := range cols {
		row[i] = values[c]
	}
	return row
}
