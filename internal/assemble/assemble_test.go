package assemble

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/ReviewSheet/internal/csvio"
	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

// field returns the value of column name in a row of table key.
func field(t *testing.T, key string, row []string, name string) string {
	t.Helper()
	for i, c := range schema.MustGet(key).Columns() {
		if c == name {
			return row[i]
		}
	}
	t.Fatalf("table %s has no column %q", key, name)
	return ""
}

func TestQualifies(t *testing.T) {
	tests := []struct {
		name   string
		header []string
		want   bool
	}{
		{"three sentinels", []string{"府省庁", "事業名", "事業番号-1", "備考"}, true},
		{"legacy spellings", []string{"府省", "事業名", "事業番号"}, true},
		{"whitespace in header", []string{"府省\n庁", "事業 名", "事業番号-1"}, true},
		{"two sentinels", []string{"府省庁", "事業名", "予算"}, false},
		{"exclusion column", []string{"府省庁", "事業名", "事業番号-1", "セグメント名"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Qualifies(tt.header); got != tt.want {
				t.Errorf("Qualifies(%q) = %v, want %v", tt.header, got, tt.want)
			}
		})
	}
}

func TestIDs(t *testing.T) {
	ids := NewIDs()

	if got := ids.Next(2019); got != "2019-00001" {
		t.Errorf("first id = %q, want 2019-00001", got)
	}
	if got := ids.Next(2019); got != "2019-00002" {
		t.Errorf("second id = %q, want 2019-00002", got)
	}
	if got := ids.Next(2020); got != "2020-00001" {
		t.Errorf("first id of another year = %q, want 2020-00001", got)
	}
}

func TestSheet_NotReviewSheet(t *testing.T) {
	table := &csvio.Table{Header: []string{"セグメント名", "府省庁", "事業名", "事業番号-1"}}

	_, err := Sheet(table, 2019, NewIDs())
	if !errors.Is(err, ErrNotReviewSheet) {
		t.Errorf("Sheet error = %v, want ErrNotReviewSheet", err)
	}
}

func TestSheet_Program(t *testing.T) {
	table := &csvio.Table{
		Header: []string{"府省", "府省庁", "事業名", "事業番号", "事業開始年度", "事業終了(予定)年度", "事業の目的(目指す姿)"},
		Rows: [][]string{
			{"原子力規制員会", "ignored", "事業A", "0001", "2010", "2025", "目的A"},
			{"未知の省", "", "事業B", "0002", "2012", "", ""},
		},
	}

	recs, err := Sheet(table, 2019, NewIDs())
	if err != nil {
		t.Fatalf("Sheet error = %v", err)
	}
	if len(recs.Programs) != 2 {
		t.Fatalf("len(Programs) = %d, want 2", len(recs.Programs))
	}

	first := recs.Programs[0]
	checks := map[string]string{
		"program_id":   "2019-00001",
		"source_year":  "2019",
		"ministry_id":  "23",
		"府省庁":          "原子力規制員会",
		"事業名":          "事業A",
		"事業番号-1":       "0001",
		"事業開始終了年度":     "2010-2025",
		"事業の目的":        "目的A",
		"実施方法":         "",
	}
	for name, want := range checks {
		if got := field(t, schema.Programs, first, name); got != want {
			t.Errorf("first program %s = %q, want %q", name, got, want)
		}
	}

	second := recs.Programs[1]
	if got := field(t, schema.Programs, second, "program_id"); got != "2019-00002" {
		t.Errorf("second program_id = %q, want 2019-00002", got)
	}
	if got := field(t, schema.Programs, second, "ministry_id"); got != "" {
		t.Errorf("unknown ministry id = %q, want empty", got)
	}
	if got := field(t, schema.Programs, second, "事業開始終了年度"); got != "" {
		t.Errorf("start/end year with missing end = %q, want empty", got)
	}
}

func TestSheet_CombinedStartEndYearPreferred(t *testing.T) {
	table := &csvio.Table{
		Header: []string{"府省庁", "事業名", "事業番号-1", "事業開始・終了(予定)年度", "事業開始年度", "事業終了(予定)年度"},
		Rows:   [][]string{{"内閣府", "事業A", "1", "2010～2025", "2011", "2024"}},
	}

	recs, err := Sheet(table, 2023, NewIDs())
	if err != nil {
		t.Fatalf("Sheet error = %v", err)
	}
	if got := field(t, schema.Programs, recs.Programs[0], "事業開始終了年度"); got != "2010～2025" {
		t.Errorf("事業開始終了年度 = %q, want 2010～2025", got)
	}
}

func TestSheet_BudgetGenerations(t *testing.T) {
	legacy := &csvio.Table{
		Header: []string{
			"府省", "事業名", "事業番号",
			"予算額・執行額(百万円)-予算の状況当初予算-2014年度",
			"予算額・執行額(百万円)-予算の状況計-2013年度",
			"予算額・執行額(百万円)-執行額-2011年度",
			"予算額・執行額(百万円)-執行額-2016年度",
		},
		Rows: [][]string{{"内閣府", "事業A", "0001", "100", "90", "80", "999"}},
	}
	current := &csvio.Table{
		Header: []string{
			"府省庁", "事業名", "事業番号-1",
			"予算額・執行額-2019年度予算の状況当初予算",
			"予算額・執行額-2020年度要求予算の状況計",
			"予算額・執行額-2017年度執行率(%)",
		},
		Rows: [][]string{{"総務省", "事業B", "0002", "200", "210", "95.5"}},
	}

	ids := NewIDs()
	var recs Records
	for _, s := range []struct {
		table *csvio.Table
		year  int
	}{{legacy, 2014}, {current, 2019}} {
		r, err := Sheet(s.table, s.year, ids)
		if err != nil {
			t.Fatalf("Sheet(%d) error = %v", s.year, err)
		}
		recs.Append(r)
	}

	if len(recs.Budgets) != 2 {
		t.Fatalf("len(Budgets) = %d, want 2", len(recs.Budgets))
	}

	legacyRow, currentRow := recs.Budgets[0], recs.Budgets[1]

	legacyWant := map[string]string{
		"program_id":     "2014-00001",
		"予算の状況当初予算":      "100",
		"予算の状況計_py1":     "90",
		"執行額_py3":        "80",
		"執行額":            "",
		"執行額_req":        "",
		"要求予算の状況計_req":   "",
	}
	for name, want := range legacyWant {
		if got := field(t, schema.Budgets, legacyRow, name); got != want {
			t.Errorf("legacy budget %s = %q, want %q", name, got, want)
		}
	}

	currentWant := map[string]string{
		"program_id":   "2019-00001",
		"予算の状況当初予算":    "200",
		"要求予算の状況計_req": "210",
		"執行率(%)_py2":   "95.5",
	}
	for name, want := range currentWant {
		if got := field(t, schema.Budgets, currentRow, name); got != want {
			t.Errorf("current budget %s = %q, want %q", name, got, want)
		}
	}
}

func TestSheet_BudgetRowWithoutFigures(t *testing.T) {
	table := &csvio.Table{
		Header: []string{"府省庁", "事業名", "事業番号-1", "予算額・執行額-2019年度予算の状況計"},
		Rows:   [][]string{{"内閣府", "事業A", "1", ""}},
	}

	recs, err := Sheet(table, 2019, NewIDs())
	if err != nil {
		t.Fatalf("Sheet error = %v", err)
	}
	if len(recs.Budgets) != 1 {
		t.Fatalf("len(Budgets) = %d, want 1", len(recs.Budgets))
	}
	if got := field(t, schema.Budgets, recs.Budgets[0], "予算の状況計"); got != "" {
		t.Errorf("予算の状況計 = %q, want empty", got)
	}
}

func TestSheet_FundFlow(t *testing.T) {
	table := &csvio.Table{
		Header: []string{
			"府省庁", "事業名", "事業番号-1",
			"費目・使途-A.支払先費目-1",
			"費目・使途-A.支払先金額(百万円)-1",
			"費目・使途-A.支払先計-2",
			"費目・使途-B.支払先計",
			"費目・使途-C.支払先計-1",
			"費目・使途-D.支払先使途-1",
		},
		Rows: [][]string{{"内閣府", "事業A", "1", "人件費", "12", "0", "1,500", "", "  "}},
	}

	recs, err := Sheet(table, 2019, NewIDs())
	if err != nil {
		t.Fatalf("Sheet error = %v", err)
	}

	want := [][]string{
		{"2019-00001", "A", "1", "人件費", "", "12", ""},
		{"2019-00001", "B", "", "", "", "", "1,500"},
	}
	if diff := cmp.Diff(want, recs.FundFlows); diff != "" {
		t.Errorf("fund flows mismatch (-want +got):\n%s", diff)
	}
}

func TestHasFundFlowData(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{"all empty", map[string]string{}, false},
		{"zero total", map[string]string{"支払先計": "0"}, false},
		{"zero decimal total", map[string]string{"支払先計": "0.0"}, false},
		{"nonzero total", map[string]string{"支払先計": "3"}, true},
		{"text total", map[string]string{"支払先計": "-"}, true},
		{"purpose only", map[string]string{"支払先使途": "委託"}, true},
		{"amount only", map[string]string{"支払先金額(百万円)": "0"}, true},
	}

	for _, tt := range tests {
		if got := hasFundFlowData(tt.values); got != tt.want {
			t.Errorf("%s: hasFundFlowData = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSheet_Expenditure(t *testing.T) {
	table := &csvio.Table{
		Header: []string{
			"府省庁", "事業名", "事業番号-1",
			"支出先上位10者リスト-A.支払先-1-支出先",
			"支出先上位10者リスト-A.支払先-1-支出額(百万円)",
			"支出先上位10者リスト-A.支払先-2-業務概要",
			"支出先上位10者リスト-グループ-支出先-3",
		},
		Rows: [][]string{{"内閣府", "事業A", "1", "株式会社X", "50", "調査", "法人Y"}},
	}

	recs, err := Sheet(table, 2015, NewIDs())
	if err != nil {
		t.Fatalf("Sheet error = %v", err)
	}
	if len(recs.Expenditures) != 2 {
		t.Fatalf("len(Expenditures) = %d, want 2 (got %q)", len(recs.Expenditures), recs.Expenditures)
	}

	first := recs.Expenditures[0]
	if got := field(t, schema.Expenditures, first, "支出先"); got != "株式会社X" {
		t.Errorf("first 支出先 = %q, want 株式会社X", got)
	}
	if got := field(t, schema.Expenditures, first, "支出額"); got != "50" {
		t.Errorf("first 支出額 = %q, want 50", got)
	}

	second := recs.Expenditures[1]
	if got := field(t, schema.Expenditures, second, "block_id"); got != "グループ" {
		t.Errorf("second block_id = %q, want グループ", got)
	}
	if got := field(t, schema.Expenditures, second, "sequence"); got != "3" {
		t.Errorf("second sequence = %q, want 3", got)
	}
}

func TestMinistryRows(t *testing.T) {
	rows := MinistryRows()
	if len(rows) != 24 {
		t.Fatalf("len(MinistryRows()) = %d, want 24", len(rows))
	}
	if diff := cmp.Diff([]string{"99", "防衛省"}, rows[len(rows)-1]); diff != "" {
		t.Errorf("last ministry mismatch (-want +got):\n%s", diff)
	}
}
