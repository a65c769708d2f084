package geo

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingSeparator = errors.New("geo: entry lacks separator")
	ErrDuplicateKey     = errors.New("geo: duplicate key")
)

// ParseKeyValues converts entries like "tissue: liver" into a map. Each entry
// is split on the first occurrence of sep and both halves are trimmed. An
// entry without sep, or a key seen twice, is an error.
func ParseKeyValues(pairs []string, sep string) (map[string]string, error) {
	out := make(map[string]string, len(pairs))

	for i, pair := range pairs {
		parts := strings.SplitN(pair, sep, 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: entry %d %q does not contain %q", ErrMissingSeparator, i, pair, sep)
		}

		key := strings.TrimSpace(parts[0])
		if _, exists := out[key]; exists {
			return nil, fmt.Errorf("%w: %q (entry %d)", ErrDuplicateKey, key, i)
		}
		out[key] = strings.TrimSpace(parts[1])
	}

	return out, nil
}
