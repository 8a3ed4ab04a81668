// Package normalization maps free-form configuration strings onto typed
// enumerations.
package normalization

import (
	"fmt"
	"sort"
	"strings"
)

// Normalizer maps case-insensitive, whitespace-trimmed spellings onto the
// values of an enumeration.
type Normalizer[T comparable] struct {
	name     string
	values   map[string]T
	fallback T
	keys     []string
}

// New builds a Normalizer. name labels errors and warnings; fallback is
// returned by Normalize for unknown input.
func New[T comparable](name string, values map[string]T, fallback T) *Normalizer[T] {
	n := &Normalizer[T]{name: name, values: make(map[string]T, len(values)), fallback: fallback}
	for k, v := range values {
		key := clean(k)
		n.values[key] = v
		n.keys = append(n.keys, key)
	}
	sort.Strings(n.keys)
	return n
}

// Normalize returns the value raw denotes, or the fallback.
func (n *Normalizer[T]) Normalize(raw string) T {
	if v, ok := n.Lookup(raw); ok {
		return v
	}
	return n.fallback
}

// Lookup returns the value raw denotes and whether it was recognised.
func (n *Normalizer[T]) Lookup(raw string) (T, bool) {
	v, ok := n.values[clean(raw)]
	return v, ok
}

// Parse is Lookup with an error listing the accepted spellings.
func (n *Normalizer[T]) Parse(raw string) (T, error) {
	if v, ok := n.Lookup(raw); ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q, valid options: %s", n.name, raw, strings.Join(n.keys, ", "))
}

// Fix normalizes the raw value of a config field. Empty input yields the
// zero value. A warning is returned when the spelling changed or the
// fallback was substituted.
func (n *Normalizer[T]) Fix(field string, raw string) (T, string) {
	if strings.TrimSpace(raw) == "" {
		var zero T
		return zero, ""
	}
	v, ok := n.Lookup(raw)
	if !ok {
		return n.fallback, fmt.Sprintf("unknown %s '%s', defaulting to %v", field, raw, n.fallback)
	}
	if fmt.Sprint(v) != raw {
		return v, fmt.Sprintf("normalized %s from '%s' to '%v'", field, raw, v)
	}
	return v, ""
}

// Keys returns the accepted spellings, sorted.
func (n *Normalizer[T]) Keys() []string {
	return append([]string(nil), n.keys...)
}

func clean(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
