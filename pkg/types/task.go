// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// TaskStatus indicates where a ConversionTask is in its lifecycle.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether no further transition can occur from s.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// ConversionTask records the outcome of converting one queued document.
// A task is created in the processing state and moved exactly once into a
// terminal state; each batch produces a fresh slice of tasks.
type ConversionTask struct {
	// InputPath is the queued source document.
	InputPath string `json:"input_path" yaml:"input_path"`

	// OutputPath is where the converted .docx is (or would have been) written.
	OutputPath string `json:"output_path" yaml:"output_path"`

	// Status is the lifecycle state of the task.
	Status TaskStatus `json:"status" yaml:"status"`

	// ErrorMessage explains a failed task. Empty for completed tasks.
	ErrorMessage string `json:"error_message,omitempty" yaml:"error_message,omitempty"`

	// ConvertedChars counts code points rewritten to the simplified variant.
	ConvertedChars int `json:"converted_chars" yaml:"converted_chars"`
}

// Complete moves the task into the completed state.
func (t *ConversionTask) Complete(convertedChars int) {
	t.Status = TaskCompleted
	t.ConvertedChars = convertedChars
	t.ErrorMessage = ""
}

// Fail moves the task into the failed state. No conversion work is credited.
func (t *ConversionTask) Fail(reason string) {
	t.Status = TaskFailed
	t.ConvertedChars = 0
	t.ErrorMessage = reason
}

// ProcessResult is the outcome of processing a single document. It is folded
// into a ConversionTask immediately after the document is processed.
type ProcessResult struct {
	Success        bool
	ConvertedChars int
	ErrorMessage   string
}
