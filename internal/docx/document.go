// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package docx opens Word .docx containers as an ordered tree of paragraphs
// and tables whose runs expose only their text for mutation.
//
// Only the character data of <w:t> elements in word/document.xml is ever
// rewritten. Every other byte of the container, run and paragraph
// properties included, is written back unchanged on Save.
package docx

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ErrNotDocx is returned when a zip container has no word/document.xml part.
var ErrNotDocx = errors.New("not a docx container: word/document.xml missing")

// ErrNoTextSlot is returned when text is set on a run that has no <w:t>
// element to hold it.
var ErrNoTextSlot = errors.New("run has no text element")

// Block is a top-level body element: exactly one of *Paragraph or *Table.
type Block interface {
	isBlock()
}

// Paragraph is an ordered sequence of runs.
type Paragraph struct {
	runs []*Run
}

func (*Paragraph) isBlock() {}

// Runs returns the paragraph's runs in document order.
func (p *Paragraph) Runs() []*Run {
	return p.runs
}

// Text returns the concatenated text of all runs.
func (p *Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.runs {
		b.WriteString(r.Text())
	}
	return b.String()
}

// Table is an ordered grid of rows.
type Table struct {
	rows []*Row
}

func (*Table) isBlock() {}

// Rows returns the table rows in document order.
func (t *Table) Rows() []*Row {
	return t.rows
}

// Row is an ordered sequence of cells.
type Row struct {
	cells []*Cell
}

// Cells returns the row's cells in document order.
func (r *Row) Cells() []*Cell {
	return r.cells
}

// Cell holds the paragraphs directly inside a table cell.
type Cell struct {
	paragraphs []*Paragraph
}

// Paragraphs returns the cell's paragraphs in document order.
func (c *Cell) Paragraphs() []*Paragraph {
	return c.paragraphs
}

// Text returns the cell paragraphs' text joined by newlines.
func (c *Cell) Text() string {
	parts := make([]string, len(c.paragraphs))
	for i, p := range c.paragraphs {
		parts[i] = p.Text()
	}
	return strings.Join(parts, "\n")
}

// Style is an opaque handle to a run's formatting. It holds the raw <w:rPr>
// markup, which is never rewritten.
type Style struct {
	raw string
}

// String returns the raw run properties markup, or "" for an unstyled run.
func (s Style) String() string {
	return s.raw
}

// Run is the smallest styled text unit. Its style handle is fixed at parse
// time; only the text can change, through SetText.
type Run struct {
	style    Style
	segments []*segment
}

// segment is one <w:t> element within a run.
type segment struct {
	tagStart    int // offset of '<' of the start tag
	start, end  int // character data range; equal for self-closing tags
	selfClosing bool
	prefix      string
	orig        string
	text        string
}

// Style returns the run's formatting handle.
func (r *Run) Style() Style {
	return r.style
}

// Text returns the run's text.
func (r *Run) Text() string {
	var b strings.Builder
	for _, s := range r.segments {
		b.WriteString(s.text)
	}
	return b.String()
}

// SetText replaces the run's text and leaves its style untouched. When the
// new text has as many code points as the current text it is split across
// the run's text elements at the same positions; otherwise the first
// element receives all of it.
func (r *Run) SetText(text string) error {
	if len(r.segments) == 0 {
		if text == "" {
			return nil
		}
		return ErrNoTextSlot
	}

	lengths := make([]int, len(r.segments))
	total := 0
	for i, s := range r.segments {
		lengths[i] = utf8.RuneCountInString(s.text)
		total += lengths[i]
	}

	if utf8.RuneCountInString(text) != total {
		r.segments[0].text = text
		for _, s := range r.segments[1:] {
			s.text = ""
		}
		return nil
	}

	rest := text
	for i, s := range r.segments {
		cut := 0
		for n := 0; n < lengths[i]; n++ {
			_, size := utf8.DecodeRuneInString(rest[cut:])
			cut += size
		}
		s.text = rest[:cut]
		rest = rest[cut:]
	}
	return nil
}

