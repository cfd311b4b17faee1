package mrtrie

import (
	"fmt"
	"regexp"
)

// DefaultSkippedNamePattern matches alphanumeric area codes such as "H2"
// that collide with ordinary tokens.
const DefaultSkippedNamePattern = `^[A-Z]+[0-9][A-Z0-9]*$`

// Default exclusion sets. Callers get copies through DefaultFilterConfig.
var (
	// place types unlikely to appear in running text, e.g. area identifiers
	// like "72M7"
	defaultSkippedPlaceTypes = []string{
		"ICES Statistical Rectangles",
		"FAO Subdivisions",
		"NAFO Area",
		"ICES Areas",
	}

	// names that coincide with very frequent English words
	defaultSkippedNames = []string{"As", "Of"}
)

// SkipReason identifies which exclusion rule rejected a record.
type SkipReason string

const (
	// SkipNone means the record is retained.
	SkipNone SkipReason = ""
	// SkipPlaceType means the place type is in the excluded set.
	SkipPlaceType SkipReason = "place type"
	// SkipName means the name exactly equals an excluded name.
	SkipName SkipReason = "name"
	// SkipNamePattern means the name matches the excluded pattern.
	SkipNamePattern SkipReason = "name pattern"
)

// Filter decides which gazetteer records are excluded from the trie.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	placeTypes  map[string]struct{}
	names       map[string]struct{}
	namePattern *regexp.Regexp // nil disables the pattern rule
}

// NewFilter builds a Filter from explicit exclusion inputs.
// An empty pattern disables the pattern rule.
func NewFilter(placeTypes, names []string, pattern string) (*Filter, error) {
	f := &Filter{
		placeTypes: toSet(placeTypes),
		names:      toSet(names),
	}
	if pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling skipped name pattern %q: %w", pattern, err)
		}
		f.namePattern = re
	}
	return f, nil
}

// DefaultFilter returns a Filter using the default exclusion inputs.
func DefaultFilter() *Filter {
	f, err := NewFilter(defaultSkippedPlaceTypes, defaultSkippedNames, DefaultSkippedNamePattern)
	if err != nil {
		// The default pattern is a compile-time constant.
		panic(err)
	}
	return f
}

// Skip reports whether a record with the given name and place type must be
// excluded, and by which rule. Rules are evaluated in a fixed order:
// place type, exact name, name pattern.
func (f *Filter) Skip(name, placeType string) SkipReason {
	if _, ok := f.placeTypes[placeType]; ok {
		return SkipPlaceType
	}
	if _, ok := f.names[name]; ok {
		return SkipName
	}
	if f.namePattern != nil && f.namePattern.MatchString(name) {
		return SkipNamePattern
	}
	return SkipNone
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
