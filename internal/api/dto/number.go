package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

const maxNumberLen = 32

// Number accepts a JSON number or a numeric string.
// Decoding never fails; Set and Valid record what was seen.
type Number struct {
	Value decimal.Decimal
	// The key was present with a non-null, non-empty value.
	Set bool
	// The value parsed as a decimal.
	Valid bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			n.Set = true
			return nil
		}
		raw = string(bytes.TrimSpace([]byte(s)))
		if raw == "" {
			return nil
		}
	}

	n.Set = true
	if len(raw) > maxNumberLen {
		return nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	n.Value, n.Valid = d, true
	return nil
}

// validationValue is what the validator sees: nil when unset, otherwise a
// decimal string that only parses when the input did and is within bounds.
// Out-of-range values are never rendered.
func (n Number) validationValue() any {
	switch {
	case !n.Set:
		return nil
	case !n.Valid, !withinAmount(n.Value):
		return "NaN"
	}
	return n.Value.String()
}
