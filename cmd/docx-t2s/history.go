package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docx-t2s/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded conversion batches",
	Long: `History lists batches recorded with convert --record (or history.enabled in
the config file), newest first.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		return withStore(func(store *history.Store) error {
			runs, err := store.Runs(cmdContext(cmd), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recorded batches.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderRuns(runs))
			return nil
		})
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the tasks of one recorded batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *history.Store) error {
			run, tasks, err := store.Get(cmdContext(cmd), args[0])
			if errors.Is(err, history.ErrRunNotFound) {
				return fmt.Errorf("no recorded batch with id %s", args[0])
			}
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Run %s started %s\n", run.ID, run.StartedAt.Local().Format(timeFormat))
			if run.OutputDir != "" {
				fmt.Fprintf(out, "Output directory: %s\n", run.OutputDir)
			}
			fmt.Fprintln(out, renderTasks(tasks, shouldColorize(out)))
			return nil
		})
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <run-id>",
	Short: "Delete one recorded batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *history.Store) error {
			if err := store.Delete(cmdContext(cmd), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		})
	},
}

func init() {
	historyCmd.Flags().Int("limit", 0, "maximum batches to list (default history.max_results)")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	rootCmd.AddCommand(historyCmd)
}

func withStore(fn func(*history.Store) error) error {
	store, err := history.Open(loadConfig().History)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
