// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package manager owns the queue of documents awaiting conversion and drives
// batch conversion over it.
//
// A Manager is not safe for concurrent use and drives at most one batch at a
// time. StartConversion blocks until the queue is drained and invokes
// callbacks on the calling goroutine.
package manager

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pdiddy/docx-t2s/internal/chinese"
	"github.com/pdiddy/docx-t2s/internal/process"
	"github.com/pdiddy/docx-t2s/internal/validate"
	"github.com/pdiddy/docx-t2s/pkg/types"
)

// outputExt is the extension of every converted document.
const outputExt = ".docx"

// DocumentProcessor converts a single document.
type DocumentProcessor interface {
	ProcessDocument(inputPath, outputPath string, progress process.ProgressFunc) types.ProcessResult
}

// ProgressFunc is called before each file is processed with its 1-based
// position, the queue length, and the file's base name.
type ProgressFunc func(index, total int, name string)

// CompletionFunc receives every task once the queue has drained.
type CompletionFunc func(tasks []types.ConversionTask)

// Manager holds the ordered, deduplicated conversion queue.
type Manager struct {
	files     []string
	processor DocumentProcessor
	suffix    string
	logger    *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithSuffix overrides the suffix appended to output file stems.
func WithSuffix(suffix string) Option {
	return func(m *Manager) { m.suffix = suffix }
}

// WithLogger sets the structured logger. The default discards output.
func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// New returns a Manager that hands validated documents to proc.
func New(proc DocumentProcessor, opts ...Option) *Manager {
	m := &Manager{
		processor: proc,
		suffix:    types.DefaultOutputSuffix,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewDefault returns a Manager backed by the shared traditional-to-simplified
// converter.
func NewDefault(opts ...Option) (*Manager, error) {
	conv, err := chinese.New()
	if err != nil {
		return nil, err
	}
	return New(process.New(conv), opts...), nil
}

// dedupKey returns the canonical form of path used for queue membership:
// the absolute, symlink-resolved path when it exists, else path unchanged.
func dedupKey(path string) string {
	if _, err := os.Stat(path); err != nil {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// AddFiles appends paths not already queued, in input order, and returns
// the appended subset. Duplicates are dropped silently.
func (m *Manager) AddFiles(paths []string) []string {
	keys := make(map[string]bool, len(m.files)+len(paths))
	for _, f := range m.files {
		keys[dedupKey(f)] = true
	}

	var added []string
	for _, p := range paths {
		key := dedupKey(p)
		if keys[key] {
			continue
		}
		keys[key] = true
		m.files = append(m.files, p)
		added = append(added, p)
	}
	return added
}

// RemoveFile removes the first entry equal to path, or failing that the
// first entry sharing its dedup key. It reports whether an entry was removed.
func (m *Manager) RemoveFile(path string) bool {
	if i := slices.Index(m.files, path); i >= 0 {
		m.files = slices.Delete(m.files, i, i+1)
		return true
	}
	key := dedupKey(path)
	for i, f := range m.files {
		if dedupKey(f) == key {
			m.files = slices.Delete(m.files, i, i+1)
			return true
		}
	}
	return false
}

// ClearFiles empties the queue.
func (m *Manager) ClearFiles() {
	m.files = nil
}

// Files returns a copy of the queue.
func (m *Manager) Files() []string {
	return slices.Clone(m.files)
}

// DefaultOutputPath returns the output path next to inputPath: the input
// stem plus the suffix, always with a .docx extension.
func (m *Manager) DefaultOutputPath(inputPath string) string {
	return filepath.Join(filepath.Dir(inputPath), m.outputName(inputPath))
}

func (m *Manager) outputName(inputPath string) string {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + m.suffix + outputExt
}

// StartConversion converts every queued file in order and returns one task
// per file. Outputs go to outputDir when it is non-empty, otherwise next to
// each input. Failures are recorded on the task and never stop the batch.
// The queue is left unchanged, so calling again reprocesses every file.
func (m *Manager) StartConversion(outputDir string, progress ProgressFunc, completion CompletionFunc) []types.ConversionTask {
	files := slices.Clone(m.files)
	total := len(files)
	tasks := make([]types.ConversionTask, 0, total)

	for i, in := range files {
		out := m.DefaultOutputPath(in)
		if outputDir != "" {
			out = filepath.Join(outputDir, m.outputName(in))
		}

		task := types.ConversionTask{
			InputPath:  in,
			OutputPath: out,
			Status:     types.TaskProcessing,
		}

		if progress != nil {
			progress(i+1, total, filepath.Base(in))
		}

		if ok, reason := validate.Validate(in); !ok {
			task.Fail(reason)
			m.logger.Warn("validation failed", slog.String("input", in), slog.String("reason", reason))
			tasks = append(tasks, task)
			continue
		}

		res := m.processor.ProcessDocument(in, out, nil)
		if res.Success {
			task.Complete(res.ConvertedChars)
			m.logger.Info("converted", slog.String("input", in), slog.String("output", out),
				slog.Int("converted_chars", res.ConvertedChars))
		} else {
			task.Fail(res.ErrorMessage)
			m.logger.Warn("conversion failed", slog.String("input", in), slog.String("error", res.ErrorMessage))
		}
		tasks = append(tasks, task)
	}

	if completion != nil {
		completion(tasks)
	}
	return tasks
}
