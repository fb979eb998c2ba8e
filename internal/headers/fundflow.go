package headers

import (
	"regexp"
	"strings"
)

// FundFlowItems are the canonical items of the fund-flow domain, in output
// column order.
var FundFlowItems = []string{
	"支払先費目",
	"支払先使途",
	"支払先金額(百万円)",
	"支払先計",
}

// FundFlowPrefix starts every fund-flow header.
const FundFlowPrefix = "費目・使途"

var (
	reFundFlowSeq   = regexp.MustCompile(`^` + FundFlowPrefix + `.*?([A-Za-z])\.(.+?)-(\d+)$`)
	reFundFlowNoSeq = regexp.MustCompile(`^` + FundFlowPrefix + `.*?([A-Za-z])\.(.+)$`)
)

// MatchFundFlow decodes a fund-flow header. Headers without a trailing
// sequence number group under an empty sequence.
func MatchFundFlow(header string) (Match, bool) {
	h := Clean(header)
	if !strings.HasPrefix(h, FundFlowPrefix) {
		return Match{}, false
	}

	var block, rawItem, seq string
	if m := reFundFlowSeq.FindStringSubmatch(h); m != nil {
		block, rawItem, seq = m[1], m[2], m[3]
	} else if m := reFundFlowNoSeq.FindStringSubmatch(h); m != nil {
		block, rawItem = m[1], m[2]
	} else {
		return Match{}, false
	}

	item, ok := oneOf(strings.TrimSpace(rawItem), FundFlowItems)
	if !ok {
		return Match{}, false
	}

	return Match{
		Item:     item,
		Field:    item,
		Block:    strings.ToUpper(block),
		Sequence: canonicalSequence(seq),
	}, true
}
