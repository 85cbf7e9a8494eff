package listing

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Amount is a decimal accepted either as a JSON number or as a formatted
// string such as "₦1,200.50". Strings keep only their digits and dots.
type Amount struct {
	value float64
	set   bool
	valid bool
}

// NewAmount returns a set, valid Amount.
func NewAmount(v float64) Amount {
	return Amount{value: v, set: true, valid: true}
}

// ParseAmount coerces a formatted string. Empty input yields an unset Amount;
// input with no leading number yields a set but invalid Amount.
func ParseAmount(s string) Amount {
	if strings.TrimSpace(s) == "" {
		return Amount{}
	}

	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}

	num := leadingDecimal(b.String())
	if num == "" {
		return Amount{set: true}
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Amount{set: true}
	}
	return Amount{value: v, set: true, valid: true}
}

// leadingDecimal returns the longest prefix of s with at most one dot
// that contains at least one digit.
func leadingDecimal(s string) string {
	end := 0
	dot := false
	digits := false
	for i, r := range s {
		if r == '.' {
			if dot {
				break
			}
			dot = true
		} else {
			digits = true
		}
		end = i + 1
	}
	if !digits {
		return ""
	}
	return strings.TrimSuffix(s[:end], ".")
}

// IsSet reports whether a value was supplied.
func (a Amount) IsSet() bool { return a.set }

// Value returns the parsed value and whether it is a usable number.
func (a Amount) Value() (float64, bool) { return a.value, a.set && a.valid }

// Positive returns a pointer to the value when it parsed to more than zero.
func (a Amount) Positive() *float64 {
	if v, ok := a.Value(); ok && v > 0 {
		return &v
	}
	return nil
}

// UnmarshalJSON accepts numbers, strings and null.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = Amount{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return fmt.Errorf("decoding amount: %w", err)
		}
		*a = ParseAmount(str)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("amount must be a number or string: %w", err)
	}
	*a = NewAmount(v)
	return nil
}

// MarshalJSON writes the value as a number, or null when unset.
func (a Amount) MarshalJSON() ([]byte, error) {
	v, ok := a.Value()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}
