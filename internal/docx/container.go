// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// documentPart is the zip entry holding the main document body.
const documentPart = "word/document.xml"

// Document is an opened .docx container.
type Document struct {
	zr       *zip.Reader
	src      []byte
	blocks   []Block
	segments []*segment
}

// Open reads and parses the .docx file at path.
func Open(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return doc, nil
}

// Read parses a .docx container held in memory.
func Read(data []byte) (*Document, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading zip container: %w", err)
	}

	var part *zip.File
	for _, f := range zr.File {
		if f.Name == documentPart {
			part = f
			break
		}
	}
	if part == nil {
		return nil, ErrNotDocx
	}

	rc, err := part.Open()
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", documentPart, err)
	}
	src, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", documentPart, err)
	}

	blocks, segments, err := parseDocumentXML(src)
	if err != nil {
		return nil, err
	}

	return &Document{
		zr:       zr,
		src:      src,
		blocks:   blocks,
		segments: segments,
	}, nil
}

// Blocks returns the top-level body elements in document order.
func (d *Document) Blocks() []Block {
	return d.blocks
}

// Paragraphs returns the top-level paragraphs in document order.
func (d *Document) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range d.blocks {
		if p, ok := b.(*Paragraph); ok {
			out = append(out, p)
		}
	}
	return out
}

// Tables returns the top-level tables in document order.
func (d *Document) Tables() []*Table {
	var out []*Table
	for _, b := range d.blocks {
		if t, ok := b.(*Table); ok {
			out = append(out, t)
		}
	}
	return out
}

// Save writes the document to path. Container entries other than the main
// document part are copied without recompression. The file is written to a
// temporary sibling and renamed into place; the parent directory must exist.
func (d *Document) Save(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docx-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := d.Write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}

// Write writes the container to w.
func (d *Document) Write(w io.Writer) error {
	zw := zip.NewWriter(w)
	if err := zw.SetComment(d.zr.Comment); err != nil {
		return err
	}

	for _, f := range d.zr.File {
		if f.Name != documentPart {
			if err := zw.Copy(f); err != nil {
				return fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     f.Name,
			Method:   f.Method,
			Modified: f.Modified,
		})
		if err != nil {
			return fmt.Errorf("creating %s: %w", f.Name, err)
		}
		if _, err := fw.Write(renderDocumentXML(d.src, d.segments)); err != nil {
			return fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	return zw.Close()
}
