package main

import (
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/pdiddy/docx-t2s/internal/history"
	"github.com/pdiddy/docx-t2s/pkg/types"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

const timeFormat = "2006-01-02 15:04:05"

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// shouldColorize reports whether writer is a terminal.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusLabel(status types.TaskStatus, color bool) string {
	label := string(status)
	if !color {
		return label
	}
	switch status {
	case types.TaskCompleted:
		return text.FgGreen.Sprint(label)
	case types.TaskFailed:
		return text.FgRed.Sprint(label)
	default:
		return text.FgYellow.Sprint(label)
	}
}

// renderTasks lays out one row per task: input, status, converted
// characters, and either the output path or the failure reason.
func renderTasks(tasks []types.ConversionTask, color bool) string {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		detail := t.OutputPath
		if t.Status == types.TaskFailed {
			detail = t.ErrorMessage
		}
		rows = append(rows, []string{
			t.InputPath,
			statusLabel(t.Status, color),
			strconv.Itoa(t.ConvertedChars),
			detail,
		})
	}
	return renderTable(
		[]string{"Input", "Status", "Chars", "Output / Error"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(timeFormat),
			strconv.Itoa(r.Total()),
			strconv.Itoa(r.Completed),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.ConvertedChars),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Files", "Completed", "Failed", "Chars"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}
