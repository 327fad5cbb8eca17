package types

// DefaultOutputSuffix is appended to the input stem to name converted documents.
const DefaultOutputSuffix = "_简体"

// DefaultUpgradeImage is the container image used to upgrade legacy .doc files.
const DefaultUpgradeImage = "doc2docx:latest"

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// OutputDir places converted documents in a single directory. Empty means
	// next to each input document.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Suffix is appended to the input stem (default "_简体").
	Suffix string `json:"suffix" yaml:"suffix"`

	// UpgradeDoc enables piping legacy .doc inputs through UpgradeImage before
	// conversion.
	UpgradeDoc bool `json:"upgrade_doc" yaml:"upgrade_doc"`

	// UpgradeImage is the container image that reads a .doc on stdin and
	// writes a .docx on stdout.
	UpgradeImage string `json:"upgrade_image" yaml:"upgrade_image"`
}

// HistoryConfig holds settings for the batch history store.
type HistoryConfig struct {
	// Enabled records every batch into the history database.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Dir is the directory holding history.db and its lock file.
	Dir string `json:"dir" yaml:"dir"`

	// MaxResults is the default number of batches listed (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all configuration sections.
type PipelineConfig struct {
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	History    HistoryConfig    `json:"history" yaml:"history"`
}
