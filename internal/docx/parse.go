// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// inlineContainers are paragraph children that wrap runs without starting a
// new paragraph. Runs inside them belong to the enclosing paragraph.
var inlineContainers = map[string]bool{
	"hyperlink":  true,
	"ins":        true,
	"smartTag":   true,
	"fldSimple":  true,
	"customXml":  true,
	"sdt":        true,
	"sdtContent": true,
}

// frame tracks one open element while scanning document.xml.
type frame struct {
	local    string
	body     bool
	para     *Paragraph
	table    *Table
	row      *Row
	cell     *Cell
	run      *Run
	seg      *segment
	rprOf    *Run
	rprStart int
}

// parseDocumentXML builds the block tree from the main document part. It
// scans raw tokens so that element prefixes and byte offsets are preserved.
func parseDocumentXML(src []byte) ([]Block, []*segment, error) {
	dec := xml.NewDecoder(bytes.NewReader(src))

	var (
		blocks   []Block
		segments []*segment
		stack    []frame
	)
	top := func() frame {
		if len(stack) == 0 {
			return frame{}
		}
		return stack[len(stack)-1]
	}

	for {
		before := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("parsing document.xml: %w", err)
		}
		after := int(dec.InputOffset())

		switch t := tok.(type) {
		case xml.StartElement:
			parent := top()
			f := frame{local: t.Name.Local}
			switch t.Name.Local {
			case "body":
				f.body = parent.local == "document"
			case "p":
				switch {
				case parent.body:
					f.para = &Paragraph{}
					blocks = append(blocks, f.para)
				case parent.cell != nil:
					f.para = &Paragraph{}
					parent.cell.paragraphs = append(parent.cell.paragraphs, f.para)
				}
			case "tbl":
				if parent.body {
					f.table = &Table{}
					blocks = append(blocks, f.table)
				}
			case "tr":
				if parent.table != nil {
					f.row = &Row{}
					parent.table.rows = append(parent.table.rows, f.row)
				}
			case "tc":
				if parent.row != nil {
					f.cell = &Cell{}
					parent.row.cells = append(parent.row.cells, f.cell)
				}
			case "r":
				if parent.para != nil {
					f.run = &Run{}
					parent.para.runs = append(parent.para.runs, f.run)
				}
			case "rPr":
				if parent.run != nil {
					f.rprOf = parent.run
					f.rprStart = before
				}
			case "t":
				if parent.run != nil {
					f.seg = &segment{
						tagStart: before,
						start:    after,
						prefix:   t.Name.Space,
					}
					f.run = parent.run
				}
			default:
				if inlineContainers[t.Name.Local] && parent.para != nil {
					f.para = parent.para
				}
			}
			stack = append(stack, f)

		case xml.EndElement:
			if len(stack) == 0 {
				return nil, nil, fmt.Errorf("parsing document.xml: unexpected </%s>", t.Name.Local)
			}
			f := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if f.seg != nil {
				f.seg.end = before
				f.seg.selfClosing = f.seg.end == f.seg.start && bytes.HasSuffix(src[:f.seg.start], []byte("/>"))
				f.seg.orig = f.seg.text
				f.run.segments = append(f.run.segments, f.seg)
				segments = append(segments, f.seg)
			}
			if f.rprOf != nil {
				f.rprOf.style = Style{raw: string(src[f.rprStart:after])}
			}

		case xml.CharData:
			if len(stack) > 0 {
				if seg := stack[len(stack)-1].seg; seg != nil {
					seg.text += string(t)
				}
			}
		}
	}

	return blocks, segments, nil
}

// renderDocumentXML splices changed segment text into src. Bytes outside
// changed <w:t> character data are copied unchanged.
func renderDocumentXML(src []byte, segments []*segment) []byte {
	var b bytes.Buffer
	b.Grow(len(src))
	last := 0
	for _, s := range segments {
		if s.text == s.orig {
			continue
		}
		if s.selfClosing {
			name := "t"
			if s.prefix != "" {
				name = s.prefix + ":t"
			}
			b.Write(src[last:s.tagStart])
			fmt.Fprintf(&b, `<%s xml:space="preserve">`, name)
			xml.EscapeText(&b, []byte(s.text))
			fmt.Fprintf(&b, "</%s>", name)
			last = s.start
			continue
		}
		b.Write(src[last:s.start])
		xml.EscapeText(&b, []byte(s.text))
		last = s.end
	}
	b.Write(src[last:])
	return b.Bytes()
}
