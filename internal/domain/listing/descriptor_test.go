package listing

import (
	"errors"
	"slices"
	"testing"

	"github.com/ERPlora/module-training/internal/domain"
)

type row struct{ Name string }

func testDescriptor() Descriptor[row] {
	return Descriptor[row]{
		Kind:        "rows",
		Search:      []string{"name"},
		Sort:        map[string]string{"name": "name", "created_at": "created_at"},
		DefaultSort: "name",
		Columns: []Column[row]{
			{Field: "name", Header: "Name", Value: func(r *row) any { return r.Name }},
		},
		Actions: []Action{Delete},
	}
}

func TestDescriptorResolve(t *testing.T) {
	d := testDescriptor()
	tests := []struct {
		sort      string
		wantKey   string
		wantField string
	}{
		{"created_at", "created_at", "created_at"},
		{"name", "name", "name"},
		{"", "name", "name"},
		{"unknown_value", "name", "name"},
		{"name; DROP TABLE rows", "name", "name"},
	}
	for _, tt := range tests {
		q, field := d.Resolve(Query{Sort: tt.sort})
		if q.Sort != tt.wantKey || field != tt.wantField {
			t.Errorf("Resolve(%q) = (%q, %q), want (%q, %q)", tt.sort, q.Sort, field, tt.wantKey, tt.wantField)
		}
		if q.PageSize != DefaultPageSize || q.Page != 1 {
			t.Errorf("Resolve should normalize the query, got %+v", q)
		}
	}
}

func TestDescriptorSupports(t *testing.T) {
	d := testDescriptor()
	if !d.Supports(Delete) {
		t.Error("expected delete to be supported")
	}
	if d.Supports(Activate) || d.Supports(Action("archive")) {
		t.Error("unexpected action support")
	}
}

func TestDescriptorHeaders(t *testing.T) {
	d := testDescriptor()
	if got := d.Headers(); !slices.Equal(got, []string{"Name"}) {
		t.Errorf("headers = %v", got)
	}
}

func TestDescriptorCheck(t *testing.T) {
	d := testDescriptor()
	if err := d.Check(); err != nil {
		t.Fatalf("valid descriptor: %v", err)
	}

	d.DefaultSort = "missing"
	if err := d.Check(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for bad default sort, got %v", err)
	}

	d = testDescriptor()
	d.Columns[0].Value = nil
	if err := d.Check(); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("expected ErrValidation for nil accessor, got %v", err)
	}
}
