package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/latexify/internal/watcher"
)

func newWatchCmd(a *app) *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "watch --dir IN --out OUT",
		Short: "Convert every document dropped into a folder",
		Long: `watch converts the supported documents already in IN, then keeps watching
IN and writes OUT/<name>.tex whenever a file is created or changed. Removing an
input removes its output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd, map[string]string{
				"watch.input_dir":  "dir",
				"watch.output_dir": "out",
				"llm.strict":       "strict",
			})
			if err != nil {
				return err
			}
			if cfg.Watch.InputDir == "" || cfg.Watch.OutputDir == "" {
				return fmt.Errorf("watch needs --dir and --out (or watch.input_dir and watch.output_dir)")
			}
			logger, err := a.newLogger(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("recursive") {
				cfg.Watch.Recursive = &recursive
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			folder := watcher.NewFolder(buildConverter(cfg, logger), cfg.Watch.InputDir, cfg.Watch.OutputDir, logger)
			if err := folder.Watch(ctx, cfg.Watch.Extensions, cfg.Watch.RecursiveOrDefault()); err != nil {
				return err
			}
			stats := folder.Stats()
			logger.Info("watch stopped",
				zap.Int64("converted", stats.Converted),
				zap.Int64("fallback", stats.Fallback),
				zap.Int64("failed", stats.Failed),
				zap.Int64("removed", stats.Removed))
			return nil
		},
	}
	cmd.Flags().String("dir", "", "input directory to watch")
	cmd.Flags().String("out", "", "output directory for .tex files")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "watch subdirectories")
	cmd.Flags().Bool("strict", false, "reject model output that is not a well-formed document")
	return cmd
}
