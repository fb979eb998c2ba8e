package schema

import "github.com/JonMunkholm/ReviewSheet/internal/headers"

// Registry keys of the canonical tables.
const (
	Ministries   = "ministries"
	Programs     = "programs"
	Budgets      = "budgets"
	FundFlows    = "fund_flows"
	Expenditures = "expenditures"
)

// Shared key column names.
const (
	ColProgramID  = "program_id"
	ColSourceYear = "source_year"
	ColMinistryID = "ministry_id"
	ColMinistry   = "ministry_name"
	ColBlockID    = "block_id"
	ColSequence   = "sequence"
)

var (
	programIDField = FieldSpec{Name: ColProgramID, Type: FieldText, Key: true}
	blockField     = FieldSpec{Name: ColBlockID, Type: FieldText, Key: true}
	sequenceField  = FieldSpec{Name: ColSequence, Type: FieldInt, Key: true}
)

func init() {
	Register(Table{
		Key:      Ministries,
		Label:    "Ministries",
		FileName: "ministry_master.csv",
		Fields: []FieldSpec{
			{Name: ColMinistryID, Type: FieldInt, Key: true},
			{Name: ColMinistry, Type: FieldText},
		},
	})

	Register(Table{
		Key:      Programs,
		Label:    "Programs",
		FileName: "program_master.csv",
		Fields: append([]FieldSpec{
			programIDField,
			{Name: ColSourceYear, Type: FieldInt, Key: true},
			{Name: ColMinistryID, Type: FieldInt, Key: true},
		}, text(headers.ProgramFields...)...),
	})

	Register(Table{
		Key:      Budgets,
		Label:    "Budgets",
		FileName: "budget.csv",
		Fields:   append([]FieldSpec{programIDField}, text(headers.BudgetFields()...)...),
	})

	Register(Table{
		Key:      FundFlows,
		Label:    "Fund flows",
		FileName: "fund_flow.csv",
		Fields: append([]FieldSpec{programIDField, blockField, sequenceField},
			text(headers.FundFlowItems...)...),
	})

	Register(Table{
		Key:      Expenditures,
		Label:    "Expenditures",
		FileName: "expenditure.csv",
		Fields: append([]FieldSpec{programIDField, blockField, sequenceField},
			text(headers.ExpenditureItems...)...),
	})
}
