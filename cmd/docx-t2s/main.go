// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the docx-t2s CLI, which converts Word
// documents from traditional to simplified Chinese in batches.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docx-t2s/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger is configured from --verbose before any subcommand runs.
var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

var rootCmd = &cobra.Command{
	Use:   "docx-t2s",
	Short: "Convert Word documents from traditional to simplified Chinese",
	Long: `docx-t2s rewrites the text of .docx documents from traditional to simplified
Chinese. Fonts, colours, sizes, alignment, tables, and images are preserved;
only the characters change. Converted files are written next to the originals
with a "_简体" suffix, or into a single output directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./docx-t2s.yaml or ~/.config/docx-t2s/config.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log conversion details to stderr")
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("docx-t2s")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "docx-t2s"))
		}
	}

	setDefaults()
	viper.SetEnvPrefix("DOCX_T2S")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func setDefaults() {
	viper.SetDefault("conversion.suffix", types.DefaultOutputSuffix)
	viper.SetDefault("conversion.upgrade_image", types.DefaultUpgradeImage)
	viper.SetDefault("history.dir", defaultHistoryDir())
	viper.SetDefault("history.max_results", 20)
}

func defaultHistoryDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "docx-t2s")
	}
	return ".docx-t2s"
}

// loadConfig assembles the pipeline configuration from viper.
func loadConfig() types.PipelineConfig {
	return types.PipelineConfig{
		Conversion: types.ConversionConfig{
			OutputDir:    viper.GetString("conversion.output_dir"),
			Suffix:       viper.GetString("conversion.suffix"),
			UpgradeDoc:   viper.GetBool("conversion.upgrade_doc"),
			UpgradeImage: viper.GetString("conversion.upgrade_image"),
		},
		History: types.HistoryConfig{
			Enabled:    viper.GetBool("history.enabled"),
			Dir:        viper.GetString("history.dir"),
			MaxResults: viper.GetInt("history.max_results"),
		},
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
