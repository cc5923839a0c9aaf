package record

import (
	"testing"

	"github.com/ERPlora/module-training/internal/domain/tenant"
)

const hub = tenant.ID("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

func TestOwned(t *testing.T) {
	b := Owned(hub)
	if b.TenantID != hub {
		t.Errorf("tenant = %q, want %q", b.TenantID, hub)
	}
	if !b.Live() || b.DeletedAt != nil {
		t.Error("new record should be live without deleted_at")
	}
}

func TestParseVisibility(t *testing.T) {
	if ParseVisibility("all") != All {
		t.Error(`"all" should parse to All`)
	}
	for _, s := range []string{"", "live", "ALL", "deleted"} {
		if ParseVisibility(s) != Live {
			t.Errorf("%q should parse to Live", s)
		}
	}
	if All.String() != "all" || Live.String() != "live" {
		t.Error("unexpected String output")
	}
}
