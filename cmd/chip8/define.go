package main

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

var errDefineSyntax = errors.New("expected NAME=VALUE")

// defineFlag collects repeated -D NAME=VALUE assembler predefines.
type defineFlag map[string]string

func (df defineFlag) String() string {
	var defs []string
	for _, key := range slices.Sorted(maps.Keys(df)) {
		defs = append(defs, fmt.Sprintf("%v=%v", key, df[key]))
	}
	return strings.Join(defs, ",")
}

func (df defineFlag) Set(text string) (err error) {
	key, value, ok := strings.Cut(text, "=")
	key = strings.TrimSpace(key)
	if !ok || len(key) == 0 {
		err = fmt.Errorf("%q: %w", text, errDefineSyntax)
		return
	}

	df[key] = strings.TrimSpace(value)

	return
}
