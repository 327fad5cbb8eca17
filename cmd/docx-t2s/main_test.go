package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docx-t2s/internal/docx/docxtest"
	"github.com/pdiddy/docx-t2s/internal/history"
	"github.com/pdiddy/docx-t2s/pkg/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestPartitionSupported(t *testing.T) {
	supported, skipped := partitionSupported([]string{"a.docx", "b.txt", "c.DOC", "d", "e.docx"})
	assert.Equal(t, []string{"a.docx", "c.DOC", "e.docx"}, supported)
	assert.Equal(t, []string{"b.txt", "d"}, skipped)
}

func TestRenderTasks(t *testing.T) {
	tasks := []types.ConversionTask{
		{InputPath: "a.docx", OutputPath: "a_简体.docx", Status: types.TaskCompleted, ConvertedChars: 12},
		{InputPath: "b.docx", OutputPath: "b_简体.docx", Status: types.TaskFailed, ErrorMessage: "file not found: b.docx"},
	}

	out := renderTasks(tasks, false)
	assert.Contains(t, out, "a_简体.docx")
	assert.Contains(t, out, "12")
	assert.Contains(t, out, "file not found: b.docx")
	assert.NotContains(t, out, "b_简体.docx")
	assert.NotContains(t, out, "\x1b[")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "completed", statusLabel(types.TaskCompleted, false))
	colored := statusLabel(types.TaskFailed, true)
	assert.Contains(t, colored, "failed")
	assert.NotEqual(t, "failed", colored)
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, renderTable(nil, nil, nil))
}

func TestShouldColorize_NonFile(t *testing.T) {
	assert.False(t, shouldColorize(&bytes.Buffer{}))
}

func TestRenderRuns(t *testing.T) {
	out := renderRuns([]history.Run{{ID: "run-1", Completed: 2, Failed: 1, ConvertedChars: 40}})
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "40")
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "report.docx")
	docxtest.Write(t, in, docxtest.Paragraph(docxtest.Run("這是繁體中文測試")))
	outDir := filepath.Join(dir, "out")
	reportPath := filepath.Join(dir, "batch.json")

	out, err := execute(t, "convert", "--output-dir", outDir, "--report", reportPath, in, filepath.Join(dir, "notes.txt"))
	require.NoError(t, err, out)

	assert.Contains(t, out, "skipped: "+filepath.Join(dir, "notes.txt"))
	assert.Contains(t, out, "[1/1] report.docx")
	assert.Contains(t, out, "1 completed, 0 failed")

	converted := filepath.Join(outDir, "report_简体.docx")
	assert.FileExists(t, converted)
	xml := docxtest.ReadPart(t, converted, "word/document.xml")
	assert.True(t, strings.Contains(xml, "繁体") && strings.Contains(xml, "测试"), xml)

	report, err := history.ReadReport(reportPath)
	require.NoError(t, err)
	assert.NotEmpty(t, report.Run.ID)
	assert.Equal(t, 1, report.Run.Completed)
	require.Len(t, report.Tasks, 1)
	assert.Equal(t, types.TaskCompleted, report.Tasks[0].Status)
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.docx")
	require.NoError(t, os.WriteFile(good, []byte("PK"), 0o644))
	missing := filepath.Join(dir, "missing.docx")

	out, err := execute(t, "validate", good, missing)
	require.Error(t, err)
	assert.Contains(t, out, "ok    "+good)
	assert.Contains(t, out, "fail  "+missing+": file not found: "+missing)
}
