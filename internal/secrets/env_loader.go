package secrets

import (
	"fmt"
	"os"
	"strings"
)

// EnvLoader returns a Loader that reads the specified environment variables.
// Missing variables are silently omitted from the result map.
func EnvLoader(keys ...string) Loader {
	return func() (map[string]string, error) {
		vals := make(map[string]string, len(keys))
		for _, k := range keys {
			if v := os.Getenv(k); v != "" {
				vals[k] = v
			}
		}
		return vals, nil
	}
}

// FileLoader returns a Loader that reads the whole of path, trimmed of
// surrounding whitespace, as the value of key. An empty file is an error so
// a half-written rotation never blanks the secret.
func FileLoader(key, path string) Loader {
	return func() (map[string]string, error) {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read secret %s: %w", key, err)
		}
		v := strings.TrimSpace(string(b))
		if v == "" {
			return nil, fmt.Errorf("secret %s: %s is empty", key, path)
		}
		return map[string]string{key: v}, nil
	}
}
