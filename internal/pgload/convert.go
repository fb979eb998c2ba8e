package pgload

// convert.go turns canonical table cells into pgtype values.
//
// All ToPg* functions return values with Valid=false for empty or invalid
// input so the column is stored as NULL.

import (
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/ReviewSheet/internal/schema"
)

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgInt4 converts a decimal string to pgtype.Int4. Thousands separators
// are accepted. Returns invalid for empty or non-integer input.
func ToPgInt4(s string) pgtype.Int4 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return pgtype.Int4{Valid: false}
	}
	i, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return pgtype.Int4{Valid: false}
	}
	return pgtype.Int4{Int32: int32(i), Valid: true}
}

// convertRow maps one canonical row onto the table's column types. Rows
// shorter than the table are padded with NULLs.
func convertRow(fields []schema.FieldSpec, row []string) []any {
	out := make([]any, len(fields))
	for i, f := range fields {
		var cell string
		if i < len(row) {
			cell = row[i]
		}
		switch f.Type {
		case schema.FieldInt:
			out[i] = ToPgInt4(cell)
		default:
			out[i] = ToPgText(cell)
		}
	}
	return out
}
