package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docx-t2s/internal/chinese"
	"github.com/pdiddy/docx-t2s/internal/container"
	"github.com/pdiddy/docx-t2s/internal/history"
	"github.com/pdiddy/docx-t2s/internal/manager"
	"github.com/pdiddy/docx-t2s/internal/process"
	"github.com/pdiddy/docx-t2s/internal/validate"
	"github.com/pdiddy/docx-t2s/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert [files...]",
	Short: "Convert documents from traditional to simplified Chinese",
	Long: `Convert rewrites every text run of the given .docx documents from traditional
to simplified Chinese and saves the result as <name>_简体.docx. Formatting,
tables, and images are preserved. Files that fail validation or conversion
are reported and the rest of the batch continues.

Legacy .doc files are converted only when --upgrade-doc is set and a docker
or podman runtime with the upgrade image is available.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output-dir", "o", "", "write all converted documents to this directory")
	convertCmd.Flags().Bool("record", false, "record the batch in the history database")
	convertCmd.Flags().String("report", "", "write a batch report to this file (.yaml or .json)")
	convertCmd.Flags().Bool("upgrade-doc", false, "upgrade legacy .doc inputs through a container image")

	_ = viper.BindPFlag("conversion.output_dir", convertCmd.Flags().Lookup("output-dir"))
	_ = viper.BindPFlag("history.enabled", convertCmd.Flags().Lookup("record"))
	_ = viper.BindPFlag("conversion.upgrade_doc", convertCmd.Flags().Lookup("upgrade-doc"))

	rootCmd.AddCommand(convertCmd)
}

// partitionSupported splits paths by extension, keeping input order.
func partitionSupported(paths []string) (supported, skipped []string) {
	for _, p := range paths {
		if validate.IsSupportedFormat(p) {
			supported = append(supported, p)
		} else {
			skipped = append(skipped, p)
		}
	}
	return supported, skipped
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	out := cmd.OutOrStdout()
	ctx := cmdContext(cmd)

	files, skipped := partitionSupported(args)
	for _, p := range skipped {
		fmt.Fprintf(out, "skipped: %s (unsupported format)\n", p)
	}
	if len(files) == 0 {
		return fmt.Errorf("no .docx or .doc files given")
	}

	conv, err := chinese.New()
	if err != nil {
		return fmt.Errorf("loading conversion table: %w", err)
	}

	procOpts := []process.Option{process.WithLogger(logger)}
	if cfg.Conversion.UpgradeDoc {
		up, err := newUpgrader(ctx, cfg.Conversion.UpgradeImage)
		if err != nil {
			return err
		}
		procOpts = append(procOpts, process.WithUpgrader(up))
	}

	mgr := manager.New(process.New(conv, procOpts...),
		manager.WithSuffix(cfg.Conversion.Suffix),
		manager.WithLogger(logger),
	)
	mgr.AddFiles(files)

	run := history.Run{StartedAt: time.Now().UTC(), OutputDir: cfg.Conversion.OutputDir}
	tasks := mgr.StartConversion(cfg.Conversion.OutputDir,
		func(index, total int, name string) {
			fmt.Fprintf(out, "[%d/%d] %s\n", index, total, name)
		}, nil)
	run.FinishedAt = time.Now().UTC()

	summary := manager.Summarize(tasks)
	printBatch(out, tasks, summary)

	if cfg.History.Enabled {
		run, err = recordRun(ctx, cfg.History, run, tasks)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Recorded run %s\n", run.ID)
	} else {
		run.ID = uuid.NewString()
		run.Completed, run.Failed, run.ConvertedChars = summary.Completed, summary.Failed, summary.ConvertedChars
	}

	if report, _ := cmd.Flags().GetString("report"); report != "" {
		if err := history.WriteReport(report, run, tasks); err != nil {
			return err
		}
		fmt.Fprintf(out, "Report written to %s\n", report)
	}

	if summary.HasFailures() {
		return fmt.Errorf("%d of %d files failed", summary.Failed, summary.Total())
	}
	return nil
}

func newUpgrader(ctx context.Context, image string) (*process.ContainerUpgrader, error) {
	rt, err := container.DetectRuntime(ctx)
	if err != nil {
		return nil, fmt.Errorf("upgrading .doc files: %w", err)
	}
	up, err := process.NewContainerUpgrader(ctx, rt, image)
	if err != nil {
		return nil, fmt.Errorf("upgrading .doc files: %w", err)
	}
	logger.Debug("legacy upgrader ready", "runtime", rt.Name(), "image", image)
	return up, nil
}

func recordRun(ctx context.Context, cfg types.HistoryConfig, run history.Run, tasks []types.ConversionTask) (history.Run, error) {
	store, err := history.Open(cfg)
	if err != nil {
		return run, err
	}
	defer store.Close()

	return store.Record(ctx, run, tasks)
}

func printBatch(w io.Writer, tasks []types.ConversionTask, summary manager.Summary) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintln(w, renderTasks(tasks, shouldColorize(w)))
	fmt.Fprintf(w, "Batch complete: %d completed, %d failed, %d characters converted\n",
		summary.Completed, summary.Failed, summary.ConvertedChars)
}
