package core

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale is the fixed locale used for every user-visible amount and date.
var Locale = language.BrazilianPortuguese

var brl = message.NewPrinter(Locale)

// FormatCurrency renders m as Brazilian reais, e.g. "R$ 1.234,50".
func FormatCurrency(m Money) string {
	neg := m.Cents < 0
	if neg {
		m.Cents = -m.Cents
	}
	s := "R$ " + brl.Sprint(number.Decimal(m.Reais(), number.Scale(2)))
	if neg {
		return "-" + s
	}
	return s
}

// FormatDate renders t as dd/mm/yyyy.
func FormatDate(t time.Time) string {
	return t.Format("02/01/2006")
}

// NewID returns a fresh opaque record identifier.
func NewID() string {
	return uuid.NewString()
}

// MarshalJSON encodes the timestamp as Unix milliseconds; zero encodes as 0.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("0"), nil
	}
	return []byte(strconv.FormatInt(t.UnixMilli(), 10)), nil
}

// UnmarshalJSON accepts Unix milliseconds, null, or an RFC 3339 string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = Timestamp{}
		return nil
	case len(data) > 0 && data[0] == '"':
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("decode timestamp: %w", err)
		}
		if s == "" {
			*t = Timestamp{}
			return nil
		}
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("decode timestamp %q: %w", s, err)
		}
		*t = NewTimestamp(parsed)
		return nil
	}
	ms, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("decode timestamp %s: %w", data, err)
	}
	if ms == 0 {
		*t = Timestamp{}
		return nil
	}
	*t = Timestamp{Time: time.UnixMilli(int64(ms)).UTC()}
	return nil
}
