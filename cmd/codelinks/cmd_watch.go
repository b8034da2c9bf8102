package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"codelinks/internal/source"
	"codelinks/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var watchDebounce time.Duration

// watchCmd re-runs analyse whenever sources change
var watchCmd = &cobra.Command{
	Use:   "watch [src-dir]",
	Short: "Re-run analyse when source files change",
	Long: `Runs analyse once, then again every time a supported source file below
src-dir is created, modified or removed. Stops on Ctrl+C.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&analyseOutdir, "outdir", "o", "", "Output directory (overrides output.dir)")
	watchCmd.Flags().StringVar(&analyseSQLite, "sqlite", "", "Also store results in this SQLite database")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before re-running")
}

func runWatch(cmd *cobra.Command, args []string) error {
	c := loadedConfig()
	if len(args) > 0 {
		c.Source.SrcDir = args[0]
	}
	if analyseOutdir != "" {
		c.Output.Dir = analyseOutdir
	}
	if analyseSQLite != "" {
		c.Output.SQLitePath = analyseSQLite
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	rerun := func(ctx context.Context, changed []string) {
		if len(changed) > 0 {
			logger.Info("sources changed", zap.Strings("paths", changed))
		}
		res, err := analyseTree(ctx, c)
		if err != nil {
			logger.Error("analyse failed", zap.Error(err))
			return
		}
		contentPath, err := res.Dump(c.Output.Dir)
		if err != nil {
			logger.Error("dump failed", zap.Error(err))
			return
		}
		if c.Output.SQLitePath != "" {
			if err := storeResult(ctx, c.Output.SQLitePath, res); err != nil {
				logger.Error("sqlite export failed", zap.Error(err))
			}
		}
		fmt.Fprintln(out, renderSummary(res, contentPath))
	}

	registry, err := source.DefaultRegistry().Restrict(c.Source.Languages)
	if err != nil {
		return err
	}
	w, err := watch.New(c.Source.SrcDir, registry.Extensions(), watchDebounce, rerun)
	if err != nil {
		return err
	}
	defer w.Stop()

	rerun(ctx, nil)
	if err := w.Start(ctx); err != nil {
		return err
	}

	fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", c.Source.SrcDir)
	<-ctx.Done()
	return nil
}
