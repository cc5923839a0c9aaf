// Package tenant defines the tenant identity every record and query is scoped to.
package tenant

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ERPlora/module-training/internal/domain"
)

// ID identifies a tenant (a hub). It is always a canonical UUID string.
type ID string

// Parse validates s as a UUID and returns it in canonical form.
func Parse(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return "", fmt.Errorf("%w: invalid tenant id %q", domain.ErrValidation, s)
	}
	return ID(u.String()), nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) String() string { return string(id) }

// IsZero reports whether id is unset.
func (id ID) IsZero() bool { return id == "" }
