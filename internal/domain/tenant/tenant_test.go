package tenant

import (
	"errors"
	"testing"

	"github.com/ERPlora/module-training/internal/domain"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    ID
		wantErr bool
	}{
		{"canonical", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"uppercase normalized", "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", "6ba7b810-9dad-11d1-80b4-00c04fd430c8", false},
		{"empty", "", "", true},
		{"garbage", "hub-1", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected ErrValidation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsZero(t *testing.T) {
	var id ID
	if !id.IsZero() {
		t.Error("zero value should report IsZero")
	}
	if MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8").IsZero() {
		t.Error("parsed id should not be zero")
	}
}
