// Package main is the latexify CLI entry point.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/config"
	"github.com/hyperjump/latexify/internal/extract"
	"github.com/hyperjump/latexify/internal/llm"
	"github.com/hyperjump/latexify/internal/pipeline"
	"github.com/hyperjump/latexify/pkg/utils"
)

// version is set at build time via ldflags.
var version = "dev"

const configFileName = "latexify.yaml"

// app holds state shared by subcommands for one invocation.
type app struct {
	configPath string
	debug      bool
	viper      *viper.Viper
}

func newRootCmd() *cobra.Command {
	a := &app{viper: config.NewViper()}
	root := &cobra.Command{
		Use:   "latexify",
		Short: "Convert documents to LaTeX",
		Long: `latexify turns plain text, PDF, Word, PowerPoint, Excel and OpenDocument
files into LaTeX. A hosted model writes the document; when it is unavailable an
escaped minimal article is produced instead, so conversion always succeeds once
the text can be extracted.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: ./latexify.yaml or ~/.config/latexify/config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newConvertCmd(a),
		newEditCmd(a),
		newServerCmd(a),
		newWatchCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)
	return root
}

// resolveConfigPath returns the explicit path, or the first existing default
// location, or "" for built-in defaults.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	candidates := []string{configFileName}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "latexify", "config.yaml"))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// loadConfig reads the config file and .env files, applies environment and flag
// overrides, and validates the result.
func (a *app) loadConfig(cmd *cobra.Command, flagKeys map[string]string) (*config.Config, error) {
	path := resolveConfigPath(a.configPath)

	envFiles := []string{".env"}
	if path != "" {
		envFiles = append(envFiles, filepath.Join(filepath.Dir(path), ".env"))
	}
	if _, err := config.LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	bindings := map[string]string{"debug": "debug"}
	for key, flag := range flagKeys {
		bindings[key] = flag
	}
	for key, flag := range bindings {
		if f := cmd.Flags().Lookup(flag); f != nil {
			if err := a.viper.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}
	config.ApplyOverrides(cfg, a.viper)

	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger returns the zap logger for long-running commands.
func (a *app) newLogger(cfg *config.Config) (*zap.Logger, error) {
	return utils.NewLogger(cfg.Debug)
}

// newQuietLogger logs only in debug mode, keeping one-shot command output clean.
func (a *app) newQuietLogger(cfg *config.Config) (*zap.Logger, error) {
	if !cfg.Debug {
		return zap.NewNop(), nil
	}
	return utils.NewLogger(true)
}

// buildConverter wires the registry and, when enabled, the model client.
func buildConverter(cfg *config.Config, logger *zap.Logger) *pipeline.Converter {
	var backend llm.Backend
	if cfg.LLM.EnabledOrDefault() {
		client := llm.NewClaudeClient(cfg.LLM, logger)
		if logger != nil {
			logger.Debug("llm backend enabled", zap.String("model", client.Model()))
		}
		backend = client
	}
	return pipeline.NewConverter(extract.NewRegistry(), backend,
		pipeline.WithLogger(logger),
		pipeline.WithStrict(cfg.LLM.Strict),
		pipeline.WithDefaultTitle(cfg.Conversion.DefaultTitle),
		pipeline.WithUploadDir(cfg.Server.UploadDir),
	)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "See latexify config init for a starting config file.")
		}
		os.Exit(1)
	}
}
