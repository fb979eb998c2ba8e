// Package schema describes the canonical output tables: their file names,
// column order, which columns are keys, and how each column is typed when
// loaded into a database.
package schema

// FieldType is the storage type of an output column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldInt
)

func (t FieldType) String() string {
	switch t {
	case FieldInt:
		return "integer"
	default:
		return "text"
	}
}

// FieldSpec describes one output column.
type FieldSpec struct {
	Name string    // Column name in the output file header
	Type FieldType // Storage type
	Key  bool      // Key columns are written unquoted
}

// Table describes one canonical output table.
type Table struct {
	Key      string // Registry key and database table name: "budgets"
	Label    string // Display name
	FileName string // Output file inside the processed directory
	Fields   []FieldSpec
}

// Columns returns the column names in output order.
func (t Table) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Name
	}
	return cols
}

// KeyColumns returns the names of the columns written unquoted.
func (t Table) KeyColumns() []string {
	var keys []string
	for _, f := range t.Fields {
		if f.Key {
			keys = append(keys, f.Name)
		}
	}
	return keys
}

func text(names ...string) []FieldSpec {
	specs := make([]FieldSpec, len(names))
	for i, n := range names {
		specs[i] = FieldSpec{Name: n, Type: FieldText}
	}
	return specs
}
