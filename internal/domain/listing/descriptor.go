package listing

import (
	"fmt"
	"slices"

	"github.com/ERPlora/module-training/internal/domain"
)

// Action is a bulk mutation name.
type Action string

const (
	Activate   Action = "activate"
	Deactivate Action = "deactivate"
	Delete     Action = "delete"
)

// Column is one exported field: its store field name, the header written to
// the file, and an accessor returning the raw value for the formatter.
type Column[T any] struct {
	Field  string
	Header string
	Value  func(*T) any
}

// Descriptor parameterizes the generic engine for one record kind.
type Descriptor[T any] struct {
	// Kind is the plural route segment and export file stem.
	Kind string
	// Search lists the fields matched case-insensitively, OR-combined.
	Search []string
	// Sort maps logical sort keys accepted from callers to store fields.
	Sort map[string]string
	// DefaultSort is the key used when the requested one is not allowed.
	DefaultSort string
	Columns     []Column[T]
	Actions     []Action
	// Toggle reports whether the kind has an is_active flag to flip.
	Toggle bool
}

// Resolve returns q with Sort replaced by an allowed key and the store field
// that key maps to.
func (d *Descriptor[T]) Resolve(q Query) (Query, string) {
	q = q.Normalize()
	field, ok := d.Sort[q.Sort]
	if !ok {
		q.Sort = d.DefaultSort
		field = d.Sort[d.DefaultSort]
	}
	return q, field
}

// Supports reports whether the kind accepts the bulk action.
func (d *Descriptor[T]) Supports(a Action) bool {
	return slices.Contains(d.Actions, a)
}

// Headers returns the export header row.
func (d *Descriptor[T]) Headers() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Header
	}
	return out
}

// Check verifies the descriptor is internally consistent.
func (d *Descriptor[T]) Check() error {
	if d.Kind == "" {
		return fmt.Errorf("%w: descriptor without kind", domain.ErrValidation)
	}
	if _, ok := d.Sort[d.DefaultSort]; !ok {
		return fmt.Errorf("%w: %s default sort %q not in allow-list", domain.ErrValidation, d.Kind, d.DefaultSort)
	}
	for _, c := range d.Columns {
		if c.Value == nil {
			return fmt.Errorf("%w: %s column %q has no accessor", domain.ErrValidation, d.Kind, c.Field)
		}
	}
	return nil
}
