// Package main provides the topic-agent CLI entry point.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/DanielDi/agent-tech-mining/internal/common"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	cfgFile     string
	envFiles    []string
	verbose     bool
	logJSON     bool
	humanOutput bool

	v      *viper.Viper
	cfg    *common.Config
	logger *slog.Logger
)

// flagKeys binds command flags to config keys. Flags only override the
// config when set explicitly.
var flagKeys = map[string]string{
	"vocab":          "paths.vocabulary",
	"dataset":        "paths.dataset",
	"sheet":          "paths.sheet",
	"recursive":      "ingest.recursive",
	"ext":            "ingest.extensions",
	"debounce":       "ingest.debounce",
	"pdftotext":      "text.pdftotext",
	"model":          "llm.model",
	"max-input":      "llm.max_input_chars",
	"workers":        "pipeline.workers",
	"doc-timeout":    "pipeline.document_timeout",
	"strict":         "pipeline.strict",
	"cache":          "cache.path",
	"prefer-poppler": "text.prefer_external",
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		code := exitCodeFor(err)
		reportError(code, err)
		os.Exit(code)
	}
}

var rootCmd = &cobra.Command{
	Use:   "topic-agent",
	Short: "Extract topic-modeling metadata from research papers",
	Long: `topic-agent reads research articles (PDF), asks a language model for the
methods each one uses, reconciles the answers against a growing vocabulary of
known labels, and keeps a spreadsheet with one row per article.

Stores:
  - vocabulary: JSON {category: [labels...]} (default topic_methods.json)
  - dataset:    XLSX, one row per article keyed by SourceFile (default topic_metadata.xlsx)

Configuration is read from defaults, an optional YAML file (--config), .env
files, TOPIC_AGENT_* / OPENAI_* environment variables and flags, in that order.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: initConfig,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (YAML)")
	pf.StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files to load; missing files are ignored")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.BoolVar(&logJSON, "log-json", false, "log as JSON")
	pf.BoolVar(&humanOutput, "human", false, "use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// initConfig layers dotenv, viper defaults, the config file and explicit
// flags into cfg, and builds the logger.
func initConfig(cmd *cobra.Command, _ []string) error {
	logger = newLogger(os.Stderr, verbose, logJSON)
	slog.SetDefault(logger)

	if err := common.LoadDotEnv(envFiles...); err != nil {
		return configError(err)
	}

	v = common.NewViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return configError(common.WrapError(err, "read config "+cfgFile))
		}
		logger.Debug("config.file", "path", v.ConfigFileUsed())
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok && bindErr == nil {
			bindErr = v.BindPFlag(key, f)
		}
	})
	if bindErr != nil {
		return configError(bindErr)
	}

	cfg = common.LoadConfig(v)
	if err := cfg.Validate(); err != nil {
		return configError(err)
	}
	return nil
}
