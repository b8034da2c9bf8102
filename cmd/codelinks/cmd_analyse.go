package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"codelinks/internal/analyse"
	"codelinks/internal/config"
	"codelinks/internal/discover"
	"codelinks/internal/export"
	"codelinks/internal/gitinfo"
	"codelinks/internal/source"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	analyseOutdir string
	analyseSQLite string
)

// analyseCmd extracts marked content from a source tree
var analyseCmd = &cobra.Command{
	Use:   "analyse [src-dir]",
	Short: "Extract needs and need-id references from source comments",
	Long: `Discovers the source files below src-dir (default: source.src_dir from
the config), extracts marked content from their comments and writes
marked_content.json plus warnings/codelinks_warnings.json into the output
directory.

Example:
  codelinks analyse ./src --outdir build/codelinks --sqlite build/marks.db`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyse,
}

func init() {
	analyseCmd.Flags().StringVarP(&analyseOutdir, "outdir", "o", "", "Output directory (overrides output.dir)")
	analyseCmd.Flags().StringVar(&analyseSQLite, "sqlite", "", "Also store results in this SQLite database")
}

func runAnalyse(cmd *cobra.Command, args []string) error {
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

	res, err := analyseTree(ctx, c)
	if err != nil {
		return err
	}
	contentPath, err := res.Dump(c.Output.Dir)
	if err != nil {
		return err
	}
	if c.Output.SQLitePath != "" {
		if err := storeResult(ctx, c.Output.SQLitePath, res); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), renderSummary(res, contentPath))
	return nil
}

// analyseTree discovers and analyses the configured source tree.
func analyseTree(ctx context.Context, c *config.Config) (*analyse.Result, error) {
	registry, err := source.DefaultRegistry().Restrict(c.Source.Languages)
	if err != nil {
		return nil, err
	}
	files, err := discover.Discover(ctx, discoverOptions(c.Source, registry))
	if err != nil {
		return nil, err
	}

	gitDir := c.Source.SrcDir
	if c.Analyse.GitRoot != "" {
		gitDir = c.Analyse.GitRoot
	}
	git, err := gitinfo.Detect(gitDir)
	if err != nil {
		logger.Warn("git metadata unavailable", zap.Error(err))
		git = nil
	}

	return analyse.New(analyseConfig(c.Analyse), registry, git).Run(ctx, files)
}

func discoverOptions(s config.SourceConfig, registry *source.Registry) discover.Options {
	return discover.Options{
		Root:       s.SrcDir,
		Include:    s.Include,
		Exclude:    s.Exclude,
		Gitignore:  s.Gitignore,
		Extensions: registry.Extensions(),
	}
}

func analyseConfig(a config.AnalyseConfig) analyse.Config {
	return analyse.Config{
		Workers:      a.Workers,
		MaxFileBytes: a.MaxFileBytes,
		OnelineNeeds: a.GetOnelineNeeds,
		Style:        a.OnelineStyle,
		NeedIDRefs:   a.GetNeedIDRefs,
		RefMarkers:   a.NeedIDRefMarkers,
		MarkedRst:    a.GetRst,
		RstStyle:     a.MarkedRst,
	}
}

func storeResult(ctx context.Context, path string, res *analyse.Result) error {
	store, err := export.NewStore(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Replace(ctx, res.Contents)
}
