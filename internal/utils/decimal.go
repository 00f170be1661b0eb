package utils

import (
	"strconv"

	"github.com/jackc/pgx/v5/pgtype"
)

// NumericToFloat64 converts a scanned pgtype.Numeric into a float64, falling
// back to a string parse for values outside float range. NULL maps to 0 so
// read paths can treat missing amounts as zero.
func NumericToFloat64(value pgtype.Numeric) float64 {
	if !value.Valid {
		return 0
	}
	f, err := value.Float64Value()
	if err == nil {
		return f.Float64
	}
	raw, err := value.MarshalJSON()
	if err != nil {
		return 0
	}
	out, err := strconv.ParseFloat(string(raw), 64)
	if err != nil {
		return 0
	}
	return out
}

// FloatToNumeric is the write-side counterpart, used where a statement needs
// an explicit numeric parameter rather than pgx's float64 inference.
func FloatToNumeric(value float64) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(strconv.FormatFloat(value, 'f', -1, 64))
	return n
}
