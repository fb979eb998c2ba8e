package headers

import "strings"

// ProgramFields are the canonical program attributes, in output column
// order.
var ProgramFields = []string{
	"府省庁",
	"事業番号-1",
	"事業番号-2",
	"事業番号-3",
	"事業番号-4",
	"事業番号-5",
	"事業名",
	"担当部局庁",
	"作成責任者",
	"事業開始終了年度",
	"担当課室",
	"会計区分",
	"根拠法令（具体的な条項も記載）",
	"関係する計画、通知等",
	"政策",
	"施策",
	"政策体系・評価書URL",
	"主要経費",
	"事業の目的",
	"現状・課題",
	"事業概要",
	"事業概要URL",
	"実施方法",
}

// Source columns the combined start/end year attribute is derived from.
const (
	StartEndYearField  = "事業開始終了年度"
	CombinedYearSource = "事業開始・終了(予定)年度"
	StartYearSource    = "事業開始年度"
	EndYearSource      = "事業終了(予定)年度"
)

// renameRule folds one generational spelling onto a canonical attribute.
type renameRule struct {
	matches func(h string) bool
	to      string
}

func equals(s string) func(string) bool {
	return func(h string) bool { return h == s }
}

func hasPrefix(s string) func(string) bool {
	return func(h string) bool { return strings.HasPrefix(h, s) }
}

func anyOf(ss ...string) func(string) bool {
	return func(h string) bool {
		_, ok := oneOf(h, ss)
		return ok
	}
}

// Order matters: 事業概要URL must be tried before the 事業概要 prefix.
var renameRules = []renameRule{
	{equals("府省"), "府省庁"},
	{equals("事業番号"), "事業番号-1"},
	{hasPrefix("事業の目的"), "事業の目的"},
	{equals("事業概要URL"), "事業概要URL"},
	{hasPrefix("事業概要"), "事業概要"},
	{hasPrefix("根拠法令"), "根拠法令（具体的な条項も記載）"},
	{hasPrefix("現状・課題"), "現状・課題"},
	{anyOf("政策・施策名", "主要政策・施策"), "政策"},
	{equals("主要施策"), "施策"},
}

// ProgramAttribute returns the attribute name a program header maps to:
// the target of the first matching rename rule, or the cleaned header when
// no rule applies.
func ProgramAttribute(header string) string {
	h := Clean(header)
	for _, rule := range renameRules {
		if rule.matches(h) {
			return rule.to
		}
	}
	return h
}

// MatchProgram reports the canonical attribute of a program header. Only
// output attributes and the start/end year source columns match.
func MatchProgram(header string) (Match, bool) {
	name := ProgramAttribute(header)
	if !isProgramColumn(name) {
		return Match{}, false
	}
	return Match{Item: name, Field: name}, true
}

func isProgramColumn(name string) bool {
	switch name {
	case CombinedYearSource, StartYearSource, EndYearSource:
		return true
	}
	_, ok := oneOf(name, ProgramFields)
	return ok
}
