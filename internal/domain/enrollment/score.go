package enrollment

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ERPlora/module-training/internal/domain"
)

// Score is a decimal with two fractional digits. It mirrors a NUMERIC(5,2)
// column, so its magnitude never exceeds 999.99. The zero value is 0.00.
type Score struct {
	d decimal.Decimal
}

const scorePlaces = 2

var (
	maxScore       = decimal.New(99999, -scorePlaces)
	errScoreSyntax = errors.New("malformed decimal")
)

// NewScore rounds d to two places, half away from zero, and rejects values
// outside ±999.99.
func NewScore(d decimal.Decimal) (Score, error) {
	d = d.Round(scorePlaces)
	if d.Abs().GreaterThan(maxScore) {
		return Score{}, fmt.Errorf("%w: score %s exceeds 999.99", domain.ErrValidation, d.String())
	}
	return Score{d: d}, nil
}

// ScoreFromCents returns the score cents/100. Callers pass values that fit
// NUMERIC(5,2).
func ScoreFromCents(cents int64) Score {
	return Score{d: decimal.New(cents, -scorePlaces)}
}

// ParseScore parses a plain decimal string such as "85", "85.5" or "-0.25".
func ParseScore(s string) (Score, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Score{}, fmt.Errorf("%w: %q", errScoreSyntax, s)
	}
	return NewScore(d)
}

// CoerceScore applies the form policy: blank or malformed input becomes 0,
// out-of-range input is rejected.
func CoerceScore(s string) (Score, error) {
	if strings.TrimSpace(s) == "" {
		return Score{}, nil
	}
	v, err := ParseScore(s)
	if errors.Is(err, errScoreSyntax) {
		return Score{}, nil
	}
	return v, err
}

// Decimal returns the score as a decimal.
func (s Score) Decimal() decimal.Decimal { return s.d }

// Equal reports whether s and o are the same value.
func (s Score) Equal(o Score) bool { return s.d.Equal(o.d) }

func (s Score) IsZero() bool { return s.d.IsZero() }

// String renders the score with exactly two fractional digits.
func (s Score) String() string {
	return s.d.StringFixed(scorePlaces)
}

// MarshalText encodes the score as its fixed-point string.
func (s Score) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a decimal string.
func (s *Score) UnmarshalText(b []byte) error {
	v, err := ParseScore(string(b))
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	*s = v
	return nil
}
