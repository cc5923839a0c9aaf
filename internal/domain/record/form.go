package record

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ERPlora/module-training/internal/domain"
)

// FlagOn is the only wire value that sets a boolean field. Absent or any
// other value means false.
const FlagOn = "on"

// DateLayout is the wire and export format for calendar dates.
const DateLayout = time.DateOnly

// Form is satisfied by url.Values.
type Form interface {
	Get(key string) string
}

// Text returns the trimmed value of key.
func Text(f Form, key string) string {
	return strings.TrimSpace(f.Get(key))
}

// Flag reports whether key carries FlagOn.
func Flag(f Form, key string) bool {
	return strings.TrimSpace(f.Get(key)) == FlagOn
}

// NonNegativeInt coerces key to an int >= 0. Missing, malformed and
// negative values all become 0.
func NonNegativeInt(f Form, key string) int {
	n, err := strconv.Atoi(Text(f, key))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// Date parses key as YYYY-MM-DD. A blank value yields nil.
func Date(f Form, key string) (*time.Time, error) {
	s := Text(f, key)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be a date (YYYY-MM-DD)", domain.ErrValidation, key)
	}
	return &d, nil
}
