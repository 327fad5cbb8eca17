// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package chinese

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// convertFunc converts a string with a phrase-aware dictionary.
type convertFunc func(string) (string, error)

// buildTable derives a rune-to-rune table from convert by feeding it every
// code point in ranges, one per line. Lines keep the dictionary from matching
// multi-character phrases, so each output line is the single-character
// mapping of its input line. Mappings that are not exactly one code point are
// dropped.
func buildTable(convert convertFunc, ranges [][2]rune) (map[rune]rune, error) {
	var runes []rune
	for _, rg := range ranges {
		for r := rg[0]; r <= rg[1]; r++ {
			runes = append(runes, r)
		}
	}

	var b strings.Builder
	for i, r := range runes {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteRune(r)
	}

	out, err := convert(b.String())
	if err != nil {
		return nil, fmt.Errorf("converting character ranges: %w", err)
	}

	lines := strings.Split(out, "\n")
	if len(lines) != len(runes) {
		return buildTableSlow(convert, runes)
	}

	table := make(map[rune]rune)
	for i, line := range lines {
		addMapping(table, runes[i], line)
	}
	return resolveChains(table), nil
}

// buildTableSlow converts one code point per call. It is used when the batch
// conversion did not preserve line structure.
func buildTableSlow(convert convertFunc, runes []rune) (map[rune]rune, error) {
	table := make(map[rune]rune)
	for _, r := range runes {
		out, err := convert(string(r))
		if err != nil {
			return nil, fmt.Errorf("converting %q: %w", r, err)
		}
		addMapping(table, r, out)
	}
	return resolveChains(table), nil
}

func addMapping(table map[rune]rune, from rune, to string) {
	if utf8.RuneCountInString(to) != 1 {
		return
	}
	r, _ := utf8.DecodeRuneInString(to)
	if r != from && r != utf8.RuneError {
		table[from] = r
	}
}

// resolveChains rewrites a->b, b->c into a->c, b->c so that converting twice
// equals converting once. Entries caught in a cycle are removed.
func resolveChains(table map[rune]rune) map[rune]rune {
	resolved := make(map[rune]rune, len(table))
	for from, to := range table {
		seen := map[rune]bool{from: true}
		cycle := false
		for {
			next, ok := table[to]
			if !ok {
				break
			}
			if seen[to] {
				cycle = true
				break
			}
			seen[to] = true
			to = next
		}
		if !cycle && to != from {
			resolved[from] = to
		}
	}
	return resolved
}
