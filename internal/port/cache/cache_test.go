package cache

import (
	"testing"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

func TestKey(t *testing.T) {
	a := tenant.ID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	b := tenant.ID("3f2504e0-4f89-11d3-9a0c-0305e82c3301")

	if got := Key(a, "dashboard"); got != "6ba7b810-9dad-11d1-80b4-00c04fd430c8:dashboard" {
		t.Errorf("Key = %q", got)
	}
	if Key(a, "dashboard") == Key(b, "dashboard") {
		t.Error("keys of different tenants must differ")
	}
}
