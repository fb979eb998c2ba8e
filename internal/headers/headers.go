// Package headers decodes the flattened column headers of review sheets.
//
// A review sheet header packs a category, a repeating-group id, a sequence
// number and sometimes a fiscal year into one string. Each domain has its own
// grammar, and most domains have a legacy and a current generation. Decoding
// never fails loudly: a header that does not fit a grammar is simply not a
// match for that domain.
//
// Headers are expected to have passed through textnorm first.
package headers

import (
	"fmt"
	"strings"
)

// Domain selects a header grammar.
type Domain int

const (
	Program Domain = iota
	Budget
	FundFlow
	Expenditure
)

func (d Domain) String() string {
	switch d {
	case Program:
		return "program"
	case Budget:
		return "budget"
	case FundFlow:
		return "fund_flow"
	case Expenditure:
		return "expenditure"
	default:
		return fmt.Sprintf("Domain(%d)", int(d))
	}
}

// ParseDomain converts a domain name back to a Domain.
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "program", "programs":
		return Program, nil
	case "budget", "budgets":
		return Budget, nil
	case "fund_flow", "fundflow", "fund-flow", "fund_flows":
		return FundFlow, nil
	case "expenditure", "expenditures":
		return Expenditure, nil
	default:
		return 0, fmt.Errorf("unknown header domain %q", s)
	}
}

// Match is one decoded header.
type Match struct {
	// Item is the canonical item the header folds into.
	Item string

	// Field is the output column name. For budget headers it is Item plus
	// the temporal suffix; for every other domain it equals Item.
	Field string

	// Block and Sequence form the grouping key of repeating domains.
	Block    string
	Sequence string

	// Offset is the budget year relative to the review year.
	Offset int
}

// Key returns the grouping key of a repeating-domain match.
func (m Match) Key() GroupKey { return GroupKey{Block: m.Block, Sequence: m.Sequence} }

// GroupKey identifies one repeated entry within a source row.
type GroupKey struct {
	Block    string
	Sequence string
}

// Decode dispatches header to the decoder of domain. reviewYear is only
// consulted by the budget grammar.
func Decode(domain Domain, header string, reviewYear int) (Match, bool) {
	switch domain {
	case Program:
		return MatchProgram(header)
	case Budget:
		return MatchBudget(header, reviewYear)
	case FundFlow:
		return MatchFundFlow(header)
	case Expenditure:
		return MatchExpenditure(header)
	default:
		return Match{}, false
	}
}

// Clean strips the whitespace and line breaks that spreadsheet exports leave
// inside header cells.
func Clean(header string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t', '　':
			return -1
		}
		return r
	}, header)
}

// oneOf returns the first entry of items equal to s.
func oneOf(s string, items []string) (string, bool) {
	for _, item := range items {
		if s == item {
			return item, true
		}
	}
	return "", false
}
