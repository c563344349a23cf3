package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Money is a currency amount. The backend serializes decimal fields as
// strings ("1500.00") while AI proposals carry plain numbers, so both
// forms are accepted on decode. It always encodes as a number.
type Money float64

func (m *Money) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*m = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decoding money: %w", err)
		}
		s = raw
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("decoding money %q: %w", s, err)
	}
	*m = Money(f)
	return nil
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(m), 'f', 2, 64)), nil
}
