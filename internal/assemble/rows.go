package assemble

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/ReviewSheet/internal/csvio"
	"github.com/JonMunkholm/ReviewSheet/internal/headers"
	"github.com/JonMunkholm/ReviewSheet/internal/lookup"
	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

func programRow(plan *headers.Plan, id string, year int, row []string) []string {
	values := map[string]string{
		schema.ColProgramID:  id,
		schema.ColSourceYear: strconv.Itoa(year),
	}
	for _, col := range plan.Program {
		values[col.Match.Field] = csvio.Cell(row, col.Index)
	}

	values[headers.StartEndYearField] = startEndYear(values)

	if mid, ok := lookup.MinistryID(strings.TrimSpace(values["府省庁"])); ok {
		values[schema.ColMinistryID] = strconv.Itoa(mid)
	}

	return project(schema.Programs, values)
}

// startEndYear prefers the combined source column and falls back to joining
// separate start and end columns when both hold a value.
func startEndYear(values map[string]string) string {
	if v := values[headers.CombinedYearSource]; !isBlank(v) {
		return v
	}
	start, end := values[headers.StartYearSource], values[headers.EndYearSource]
	if isBlank(start) || isBlank(end) {
		return ""
	}
	return start + "-" + end
}

// budgetRow is emitted for every source row, even one without figures.
// The first non-empty column decoded onto a field wins.
func budgetRow(plan *headers.Plan, id string, row []string) []string {
	values := map[string]string{schema.ColProgramID: id}
	for _, col := range plan.Budget {
		v := csvio.Cell(row, col.Index)
		if isBlank(v) {
			continue
		}
		if _, set := values[col.Match.Field]; !set {
			values[col.Match.Field] = v
		}
	}
	return project(schema.Budgets, values)
}

// group collects the non-empty items of one repeated entry.
type group struct {
	key    headers.GroupKey
	values map[string]string
}

// groupRow folds the non-empty cells of cols by grouping key, keeping the
// order in which keys first appear.
func groupRow(cols []headers.Column, row []string) []*group {
	var groups []*group
	byKey := make(map[headers.GroupKey]*group)

	for _, col := range cols {
		v := strings.TrimSpace(csvio.Cell(row, col.Index))
		if v == "" {
			continue
		}
		key := col.Match.Key()
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, values: make(map[string]string)}
			byKey[key] = g
			groups = append(groups, g)
		}
		if _, set := g.values[col.Match.Item]; !set {
			g.values[col.Match.Item] = v
		}
	}
	return groups
}

func fundFlowRows(plan *headers.Plan, id string, row []string) [][]string {
	var out [][]string
	for _, g := range groupRow(plan.FundFlow, row) {
		if !hasFundFlowData(g.values) {
			continue
		}
		g.values[schema.ColProgramID] = id
		g.values[schema.ColBlockID] = g.key.Block
		g.values[schema.ColSequence] = g.key.Sequence
		out = append(out, project(schema.FundFlows, g.values))
	}
	return out
}

// hasFundFlowData requires a payee item, purpose or amount, or a total that
// is not zero.
func hasFundFlowData(v map[string]string) bool {
	if v["支払先費目"] != "" || v["支払先使途"] != "" || v["支払先金額(百万円)"] != "" {
		return true
	}
	return !isZeroAmount(v["支払先計"])
}

// isZeroAmount treats empty text and any numeric spelling of zero as zero.
// Text that is not a number counts as a meaningful amount.
func isZeroAmount(s string) bool {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return false
	}
	return f == 0
}

func expenditureRows(plan *headers.Plan, id string, row []string) [][]string {
	var out [][]string
	for _, g := range groupRow(plan.Expenditure, row) {
		if g.values["支出先"] == "" && g.values["支出額"] == "" {
			continue
		}
		g.values[schema.ColProgramID] = id
		g.values[schema.ColBlockID] = g.key.Block
		g.values[schema.ColSequence] = g.key.Sequence
		out = append(out, project(schema.Expenditures, g.values))
	}
	return out
}
