package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLimit reads a ?limit= value. Empty input yields def; anything other
// than a non-negative integer is an error.
func ParseLimit(raw string, def int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("limit must be a non-negative integer, got %q", raw)
	}
	return n, nil
}
