package config

import (
	"fmt"
	"sort"
	"strings"
)

// normalizer maps case-insensitive user input onto a typed enumeration.
type normalizer[T comparable] struct {
	values       map[string]T
	defaultValue T
	validKeys    []string
}

func newNormalizer[T comparable](values map[string]T, defaultValue T) *normalizer[T] {
	n := &normalizer[T]{values: make(map[string]T, len(values)), defaultValue: defaultValue}
	for k, v := range values {
		key := strings.ToLower(strings.TrimSpace(k))
		n.values[key] = v
		n.validKeys = append(n.validKeys, key)
	}
	sort.Strings(n.validKeys)
	return n
}

// Normalize returns the default for unknown input.
func (n *normalizer[T]) Normalize(raw string) T {
	if v, ok := n.values[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v
	}
	return n.defaultValue
}

// NormalizeWithError rejects unknown input.
func (n *normalizer[T]) NormalizeWithError(raw string) (T, error) {
	if v, ok := n.values[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid value %q, valid options: %v", raw, n.validKeys)
}
