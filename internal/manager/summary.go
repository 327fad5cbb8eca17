// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package manager

import "github.com/pdiddy/docx-t2s/pkg/types"

// Summary holds the outcome counts of a batch.
type Summary struct {
	Completed      int
	Failed         int
	ConvertedChars int
}

// Summarize counts terminal tasks and converted characters.
func Summarize(tasks []types.ConversionTask) Summary {
	var s Summary
	for _, t := range tasks {
		switch t.Status {
		case types.TaskCompleted:
			s.Completed++
			s.ConvertedChars += t.ConvertedChars
		case types.TaskFailed:
			s.Failed++
		}
	}
	return s
}

// Total returns the number of tasks that reached a terminal state.
func (s Summary) Total() int {
	return s.Completed + s.Failed
}

// HasFailures reports whether any task failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0
}
