package headers

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Realized budget items, in output column order.
var BudgetItems = []string{
	"予算の状況予備費等",
	"予算の状況前年度から繰越し",
	"予算の状況当初予算",
	"予算の状況翌年度へ繰越し",
	"予算の状況補正予算",
	"予算の状況計",
	"執行率(%)",
	"執行額",
	"当初予算+補正予算に対する執行額の割合(%)",
}

// Request budget items, in output column order.
var RequestItems = []string{
	"要求予算の状況当初予算",
	"要求予算の状況計",
}

// requestMarker flags a header as describing the next-year budget request.
const requestMarker = "要求"

// Offsets accepted for budget figures relative to the review year.
const (
	MinOffset = -3
	MaxOffset = 1
)

// Suffixes maps an offset to the column suffix of its temporal variant.
var Suffixes = map[int]string{
	-3: "_py3",
	-2: "_py2",
	-1: "_py1",
	0:  "",
	1:  "_req",
}

// BudgetFields lists every budget output column: each item under each
// temporal variant, oldest offset first.
func BudgetFields() []string {
	items := append(append([]string(nil), BudgetItems...), RequestItems...)
	fields := make([]string, 0, len(items)*(MaxOffset-MinOffset+1))
	for off := MinOffset; off <= MaxOffset; off++ {
		for _, item := range items {
			fields = append(fields, item+Suffixes[off])
		}
	}
	return fields
}

var (
	// prefix-item-YYYY年度suffix
	reBudgetLegacy = regexp.MustCompile(`^.*?-(.*?)-(\d{4})年度(.*)$`)
	// prefix-YYYY年度item
	reBudgetCurrent = regexp.MustCompile(`^.*?-(\d{4})年度(.*)$`)
)

// Containment is tested longest item first so that a short item never
// claims a header meant for a longer item containing it.
var (
	budgetItemsByLength  = byLengthDesc(BudgetItems)
	requestItemsByLength = byLengthDesc(RequestItems)
)

func byLengthDesc(items []string) []string {
	out := append([]string(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return utf8.RuneCountInString(out[i]) > utf8.RuneCountInString(out[j])
	})
	return out
}

// MatchBudget decodes a budget header for a sheet reviewed in reviewYear.
// Request headers always land on offset +1; other headers are kept only when
// their year lies within [MinOffset, MaxOffset] of the review year.
func MatchBudget(header string, reviewYear int) (Match, bool) {
	h := Clean(header)

	var rawItem, yearStr, suffix string
	if m := reBudgetLegacy.FindStringSubmatch(h); m != nil {
		rawItem, yearStr, suffix = m[1], m[2], m[3]
	} else if m := reBudgetCurrent.FindStringSubmatch(h); m != nil {
		yearStr, rawItem = m[1], m[2]
	} else {
		return Match{}, false
	}

	request := strings.Contains(rawItem, requestMarker) || strings.Contains(suffix, requestMarker)

	candidates := budgetItemsByLength
	if request {
		candidates = requestItemsByLength
	}
	item, ok := containedItem(rawItem, candidates)
	if !ok {
		return Match{}, false
	}

	offset := 1
	if !request {
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return Match{}, false
		}
		offset = year - reviewYear
	}
	if offset < MinOffset || offset > MaxOffset {
		return Match{}, false
	}

	return Match{
		Item:   item,
		Field:  item + Suffixes[offset],
		Offset: offset,
	}, true
}

func containedItem(raw string, items []string) (string, bool) {
	for _, item := range items {
		if strings.Contains(raw, item) {
			return item, true
		}
	}
	return "", false
}
