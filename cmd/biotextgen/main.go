// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the biotextgen CLI.
// Each pipeline stage is a subcommand; run executes them all in order.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/biotextgen/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds keys loaded from .secrets/ and .env at startup.
var loadedSecrets secrets.Secrets

// logger is the diagnostic logger handed to network clients.
var logger = zap.NewNop()

// envReplacer maps nested keys such as dataset.seed to BIOTEXTGEN_DATASET_SEED.
var envReplacer = strings.NewReplacer(".", "_")

// rootCmd is the base command for the biotextgen CLI.
var rootCmd = &cobra.Command{
	Use:   "biotextgen",
	Short: "Build biomedical training datasets from PubMed abstracts",
	Long: `biotextgen collects PubMed abstracts for a list of search terms, cleans
them, annotates biomedical entities, reduces each abstract to its
entity-bearing sentences, reports corpus statistics, and synthesizes
question-answering, summarization and text generation datasets.

Each stage is a subcommand that reads the previous stage's snapshot under
the output directory: collect, clean, annotate, reduce, stats, dataset,
combine and index. run executes the whole pipeline.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		envFile, _ := cmd.Flags().GetString("env-file")
		s, err := secrets.LoadAll(secretsDir, envFile)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", s.Keys())
		}

		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./biotextgen.yaml or ~/.config/biotextgen/biotextgen.yaml)")
	pf.String("input-dir", "", "directory for raw per-term files and the manifest")
	pf.String("output-dir", "", "root for cleaned/, enriched/, processed/, training/ and index/")
	pf.String("secrets-dir", ".secrets", "directory of one-file-per-key secrets")
	pf.String("env-file", ".env", "dotenv file merged under the secrets directory")
	pf.Bool("strict", false, "exit non-zero when any unit of work failed")
	pf.BoolP("verbose", "v", false, "debug logging on stderr")

	_ = viper.BindPFlag("input_dir", pf.Lookup("input-dir"))
	_ = viper.BindPFlag("output_dir", pf.Lookup("output-dir"))
}

func initConfig() {
	if err := setDefaults(); err != nil {
		fmt.Fprintln(os.Stderr, "warning: loading defaults:", err)
	}

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("biotextgen")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "biotextgen"))
		}
	}

	viper.SetEnvPrefix("BIOTEXTGEN")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// strictCheck turns counted unit failures into an error when --strict is set.
func strictCheck(cmd *cobra.Command, failed int, what string) error {
	strict, _ := cmd.Flags().GetBool("strict")
	if strict && failed > 0 {
		return fmt.Errorf("%d %s failed", failed, what)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
