package headers

import (
	"regexp"
	"strconv"
	"strings"
)

// ExpenditureItems are the canonical items of the expenditure domain, in
// output column order.
var ExpenditureItems = []string{
	"番号",
	"支出先",
	"業務概要",
	"支出額",
	"入札者数",
	"落札率",
	"契約方式",
	"契約方式等",
	"法人番号",
	"一者応札・一者応募又は競争性のない随意契約となった理由及び改善策",
}

// ExpenditurePrefix starts every expenditure header.
const ExpenditurePrefix = "支出先上位10者リスト"

// LegacyExpenditureBlock is the block id of the single-group generation.
const LegacyExpenditureBlock = "グループ"

var (
	// prefix-グループ-item-seq
	reExpenditureLegacy = regexp.MustCompile(`^` + ExpenditurePrefix + `-グループ-(.+?)-(\d+)$`)
	// prefix-X.支払先-seq-item
	reExpenditureCurrent = regexp.MustCompile(`^` + ExpenditurePrefix + `-([A-Za-z])\.支払先-(\d+)-(.+)$`)

	reItemNoise = regexp.MustCompile(`\(.*\)|-\d+$`)
)

// MatchExpenditure decodes an expenditure header from either generation.
func MatchExpenditure(header string) (Match, bool) {
	h := Clean(header)
	if !strings.HasPrefix(h, ExpenditurePrefix) {
		return Match{}, false
	}

	var block, seq, rawItem string
	if m := reExpenditureCurrent.FindStringSubmatch(h); m != nil {
		block, seq = strings.ToUpper(m[1]), m[2]
		rawItem = reItemNoise.ReplaceAllString(m[3], "")
	} else if m := reExpenditureLegacy.FindStringSubmatch(h); m != nil {
		block, rawItem, seq = LegacyExpenditureBlock, m[1], m[2]
	} else {
		return Match{}, false
	}

	item, ok := oneOf(strings.TrimSpace(rawItem), ExpenditureItems)
	if !ok {
		return Match{}, false
	}

	return Match{
		Item:     item,
		Field:    item,
		Block:    block,
		Sequence: canonicalSequence(seq),
	}, true
}

// canonicalSequence drops leading zeros so "01" and "1" share a group.
func canonicalSequence(seq string) string {
	if seq == "" {
		return ""
	}
	n, err := strconv.Atoi(seq)
	if err != nil {
		return seq
	}
	return strconv.Itoa(n)
}
