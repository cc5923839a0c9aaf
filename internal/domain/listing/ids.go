package listing

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ERPlora/module-training/internal/domain"
)

// CanonicalID returns id in canonical UUID form. Anything that is not a UUID
// cannot name a record of kind, so it is reported as domain.ErrNotFound.
func CanonicalID(kind, id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%s %q: %w", kind, id, domain.ErrNotFound)
	}
	return u.String(), nil
}

// ParseIDs splits a comma-separated identifier list. Blank and malformed
// tokens are dropped and duplicates collapsed; order of first appearance
// is kept.
func ParseIDs(raw string) []string {
	parts := strings.Split(raw, ",")
	seen := make(map[string]struct{}, len(parts))
	ids := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := uuid.Parse(p)
		if err != nil {
			continue
		}
		id := u.String()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
