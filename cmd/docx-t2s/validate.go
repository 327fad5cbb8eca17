package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/docx-t2s/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Check that documents can be converted",
	Long: `Validate runs the admission checks used by convert on each path: the file
exists, is a regular file, has a .docx or .doc extension, and is readable.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		bad := 0
		for _, p := range args {
			if ok, reason := validate.Validate(p); ok {
				fmt.Fprintf(out, "ok    %s\n", p)
			} else {
				bad++
				fmt.Fprintf(out, "fail  %s: %s\n", p, reason)
			}
		}
		if bad > 0 {
			return fmt.Errorf("%d of %d files failed validation", bad, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
