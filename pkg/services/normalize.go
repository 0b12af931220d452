package services

import (
	"github.com/jackc/pgx/v5/pgtype"
)

// NormalizeValue flattens driver-specific numeric types so report rows
// serialize uniformly: every number becomes float64, everything else
// passes through. COUNT(*) and SUM over NUMERIC then look the same to
// API clients regardless of which aggregate produced them.
func NormalizeValue(v any) any {
	switch n := v.(type) {
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	case int16:
		return float64(n)
	case int:
		return float64(n)
	case float32:
		return float64(n)
	case pgtype.Numeric:
		f, err := n.Float64Value()
		if err != nil || !f.Valid {
			return v
		}
		return f.Float64
	default:
		return v
	}
}

// NormalizeRows applies NormalizeValue to every cell in place and
// returns the slice for chaining.
func NormalizeRows(rows []map[string]any) []map[string]any {
	for _, row := range rows {
		for k, v := range row {
			row[k] = NormalizeValue(v)
		}
	}
	return rows
}
