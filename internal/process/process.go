// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package process converts the text of one Word document from traditional
// to simplified Chinese, leaving every formatting attribute in place.
package process

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docx-t2s/internal/chinese"
	"github.com/pdiddy/docx-t2s/internal/docx"
	"github.com/pdiddy/docx-t2s/pkg/types"
)

// Upgrader turns a legacy .doc file into .docx container bytes.
type Upgrader interface {
	Upgrade(path string) ([]byte, error)
}

// ProgressFunc receives the percentage of top-level elements processed.
type ProgressFunc func(percent int)

// Processor rewrites run text in documents through a chinese.Converter.
type Processor struct {
	conv     *chinese.Converter
	upgrader Upgrader
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithUpgrader enables opening legacy .doc inputs through u.
func WithUpgrader(u Upgrader) Option {
	return func(p *Processor) { p.upgrader = u }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

// New returns a Processor that converts text with conv.
func New(conv *chinese.Converter, opts ...Option) *Processor {
	p := &Processor{
		conv:   conv,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessDocument converts the document at inputPath and saves it to
// outputPath, creating missing parent directories. Top-level paragraphs are
// converted first, then top-level tables. progress, when non-nil, is called
// once per top-level element with floor(done/total*100).
//
// Failures are reported in the result, never returned. A save failure
// reports zero converted characters even though conversion completed.
func (p *Processor) ProcessDocument(inputPath, outputPath string, progress ProgressFunc) types.ProcessResult {
	doc, err := p.open(inputPath)
	if err != nil {
		return failed(err)
	}

	paragraphs := doc.Paragraphs()
	tables := doc.Tables()
	total := len(paragraphs) + len(tables)
	done := 0
	step := func() {
		done++
		if progress != nil {
			progress(done * 100 / total)
		}
	}

	converted := 0
	for _, para := range paragraphs {
		n, err := p.convertParagraph(para)
		if err != nil {
			return failed(err)
		}
		converted += n
		step()
	}
	for _, tbl := range tables {
		n, err := p.convertTable(tbl)
		if err != nil {
			return failed(err)
		}
		converted += n
		step()
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return failed(fmt.Errorf("creating output directory: %w", err))
	}
	if err := doc.Save(outputPath); err != nil {
		return failed(err)
	}

	p.logger.Debug("document converted",
		slog.String("input", inputPath),
		slog.String("output", outputPath),
		slog.Int("paragraphs", len(paragraphs)),
		slog.Int("tables", len(tables)),
		slog.Int("converted_chars", converted),
	)
	return types.ProcessResult{Success: true, ConvertedChars: converted}
}

// open parses inputPath, falling back to the upgrader for legacy .doc files
// that are not zip containers.
func (p *Processor) open(inputPath string) (*docx.Document, error) {
	doc, err := docx.Open(inputPath)
	if err == nil {
		return doc, nil
	}
	if p.upgrader == nil || !strings.EqualFold(filepath.Ext(inputPath), ".doc") || errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	p.logger.Debug("upgrading legacy document", slog.String("input", inputPath), slog.Any("open_error", err))
	data, uerr := p.upgrader.Upgrade(inputPath)
	if uerr != nil {
		return nil, fmt.Errorf("upgrading %s: %w", inputPath, uerr)
	}
	doc, err = docx.Read(data)
	if err != nil {
		return nil, fmt.Errorf("opening upgraded %s: %w", inputPath, err)
	}
	return doc, nil
}

// convertParagraph rewrites every run and returns the number of code points
// changed.
func (p *Processor) convertParagraph(para *docx.Paragraph) (int, error) {
	n := 0
	for _, run := range para.Runs() {
		before := run.Text()
		if before == "" {
			continue
		}
		after := p.conv.Convert(before)
		if after == before {
			continue
		}
		if err := run.SetText(after); err != nil {
			return 0, err
		}
		n += chinese.ConvertedCount(before, after)
	}
	return n, nil
}

func (p *Processor) convertTable(tbl *docx.Table) (int, error) {
	n := 0
	for _, row := range tbl.Rows() {
		for _, cell := range row.Cells() {
			for _, para := range cell.Paragraphs() {
				c, err := p.convertParagraph(para)
				if err != nil {
					return 0, err
				}
				n += c
			}
		}
	}
	return n, nil
}

func failed(err error) types.ProcessResult {
	return types.ProcessResult{Success: false, ConvertedChars: 0, ErrorMessage: err.Error()}
}
