// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package chinese maps traditional Chinese characters to their simplified
// variants, one code point at a time.
package chinese

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/longbridgeapp/opencc"
)

// openccConfig selects the OpenCC traditional-to-simplified dictionary set.
const openccConfig = "t2s"

// cjkRanges lists the code point blocks scanned when building the table.
var cjkRanges = [][2]rune{
	{0x3400, 0x4DBF},   // Extension A
	{0x4E00, 0x9FFF},   // Unified Ideographs
	{0xF900, 0xFAFF},   // Compatibility Ideographs
	{0x20000, 0x2A6DF}, // Extension B
}

// defaultTable is built once per process and never mutated afterwards.
var defaultTable = sync.OnceValues(func() (map[rune]rune, error) {
	cc, err := opencc.New(openccConfig)
	if err != nil {
		return nil, fmt.Errorf("loading opencc %s dictionary: %w", openccConfig, err)
	}
	return buildTable(cc.Convert, cjkRanges)
})

// Converter rewrites text from the traditional to the simplified variant.
// Conversion is length preserving: each code point maps to exactly one code
// point. A Converter is safe for concurrent use.
type Converter struct {
	table map[rune]rune
}

// New returns a Converter backed by the shared OpenCC-derived table. The
// table is loaded on first use.
func New() (*Converter, error) {
	t, err := defaultTable()
	if err != nil {
		return nil, err
	}
	return &Converter{table: t}, nil
}

// NewWithTable returns a Converter backed by a copy of table. Mapping chains
// are resolved so that conversion stays idempotent.
func NewWithTable(table map[rune]rune) *Converter {
	t := make(map[rune]rune, len(table))
	for k, v := range table {
		if k != v {
			t[k] = v
		}
	}
	return &Converter{table: resolveChains(t)}
}

// Convert returns text with every mapped code point replaced by its
// simplified form. Unmapped code points and invalid UTF-8 bytes are copied
// through unchanged.
func (c *Converter) Convert(text string) string {
	first := -1
	for i, r := range text {
		if _, ok := c.table[r]; ok {
			first = i
			break
		}
	}
	if first < 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	b.WriteString(text[:first])
	for i := first; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size <= 1 {
			b.WriteByte(text[i])
			i++
			continue
		}
		if s, ok := c.table[r]; ok {
			b.WriteRune(s)
		} else {
			b.WriteString(text[i : i+size])
		}
		i += size
	}
	return b.String()
}

// IsTraditional reports whether ch is a single code point that converts to a
// different code point. Empty and multi-code-point input report false.
func (c *Converter) IsTraditional(ch string) bool {
	if utf8.RuneCountInString(ch) != 1 {
		return false
	}
	return c.Convert(ch) != ch
}

// Len returns the number of mapped code points.
func (c *Converter) Len() int {
	return len(c.table)
}

// ConvertedCount returns the number of code point positions at which before
// and after differ. Positions beyond the shorter string are not counted.
func ConvertedCount(before, after string) int {
	n := 0
	a := []rune(after)
	i := 0
	for _, r := range before {
		if i >= len(a) {
			break
		}
		if r != a[i] {
			n++
		}
		i++
	}
	return n
}
