package headers

// Column is one decoded source column.
type Column struct {
	Index int
	Match Match
}

// Plan is the decoded form of a table's header row. Each header is decoded
// once per domain; rows are then folded by column index without looking at
// header text again.
type Plan struct {
	ReviewYear int

	// Cleaned holds every header after Clean, by source index.
	Cleaned []string

	Program     []Column
	Budget      []Column
	FundFlow    []Column
	Expenditure []Column
}

// NewPlan decodes header for a sheet reviewed in reviewYear.
//
// Program attributes that several source columns rename onto keep only the
// first source column.
func NewPlan(header []string, reviewYear int) *Plan {
	p := &Plan{
		ReviewYear: reviewYear,
		Cleaned:    make([]string, len(header)),
	}

	seenProgram := make(map[string]bool)
	for i, h := range header {
		p.Cleaned[i] = Clean(h)

		if m, ok := MatchProgram(h); ok && !seenProgram[m.Field] {
			seenProgram[m.Field] = true
			p.Program = append(p.Program, Column{Index: i, Match: m})
		}
		if m, ok := MatchBudget(h, reviewYear); ok {
			p.Budget = append(p.Budget, Column{Index: i, Match: m})
		}
		if m, ok := MatchFundFlow(h); ok {
			p.FundFlow = append(p.FundFlow, Column{Index: i, Match: m})
		}
		if m, ok := MatchExpenditure(h); ok {
			p.Expenditure = append(p.Expenditure, Column{Index: i, Match: m})
		}
	}
	return p
}

// Columns returns the decoded columns of one domain.
func (p *Plan) Columns(d Domain) []Column {
	switch d {
	case Program:
		return p.Program
	case Budget:
		return p.Budget
	case FundFlow:
		return p.FundFlow
	case Expenditure:
		return p.Expenditure
	default:
		return nil
	}
}
