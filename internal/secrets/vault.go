// Package secrets holds secret values in memory and reloads them from their
// source without a restart, so mounted secrets can be rotated in place.
package secrets

import (
	"fmt"
	"sync"
)

// Loader retrieves secrets from a source (env vars, mounted files, ...).
type Loader func() (map[string]string, error)

// Vault holds secret values and swaps them atomically on Reload.
type Vault struct {
	mu     sync.RWMutex
	values map[string]string
	loader Loader
}

// NewVault creates a Vault, calling the loader once to populate initial values.
func NewVault(loader Loader) (*Vault, error) {
	vals, err := loader()
	if err != nil {
		return nil, fmt.Errorf("initial secret load: %w", err)
	}
	return &Vault{values: vals, loader: loader}, nil
}

// Get returns the secret for key, or an empty string if not found.
func (v *Vault) Get(key string) string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.values[key]
}

// Bytes returns a func reading the current value of key on every call.
func (v *Vault) Bytes(key string) func() []byte {
	return func() []byte { return []byte(v.Get(key)) }
}

// Reload calls the loader and swaps in the new values. On error the
// existing values are kept.
func (v *Vault) Reload() error {
	vals, err := v.loader()
	if err != nil {
		return fmt.Errorf("reload secrets: %w", err)
	}
	v.mu.Lock()
	v.values = vals
	v.mu.Unlock()
	return nil
}

// Redacted returns a log-safe hint of the secret for key: the first two
// characters followed by a mask. Secrets of four characters or fewer are
// fully masked.
func (v *Vault) Redacted(key string) string {
	s := v.Get(key)
	switch {
	case s == "":
		return ""
	case len(s) <= 4:
		return "****"
	default:
		return s[:2] + "****"
	}
}
