package main

import (
	"fmt"

	"codelinks/internal/discover"
	"codelinks/internal/source"

	"github.com/spf13/cobra"
)

var (
	discoverIncludes  []string
	discoverExcludes  []string
	discoverGitignore bool
	discoverLanguages []string
)

// discoverCmd lists the files analyse would read
var discoverCmd = &cobra.Command{
	Use:   "discover [src-dir]",
	Short: "List the source files below a directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDiscover,
}

func init() {
	discoverCmd.Flags().StringSliceVarP(&discoverIncludes, "includes", "i", nil, "Glob patterns to be included")
	discoverCmd.Flags().StringSliceVarP(&discoverExcludes, "excludes", "e", nil, "Glob patterns to be excluded")
	discoverCmd.Flags().BoolVar(&discoverGitignore, "gitignore", true, "Respect .gitignore in the given directory")
	discoverCmd.Flags().StringSliceVarP(&discoverLanguages, "languages", "l", nil, "Languages or extensions to discover (default: all supported)")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	c := loadedConfig()
	src := c.Source
	if len(args) > 0 {
		src.SrcDir = args[0]
	}
	if cmd.Flags().Changed("includes") {
		src.Include = discoverIncludes
	}
	if cmd.Flags().Changed("excludes") {
		src.Exclude = discoverExcludes
	}
	if cmd.Flags().Changed("gitignore") {
		src.Gitignore = discoverGitignore
	}
	if cmd.Flags().Changed("languages") {
		src.Languages = discoverLanguages
	}

	registry, err := source.DefaultRegistry().Restrict(src.Languages)
	if err != nil {
		return err
	}
	files, err := discover.Discover(commandContext(cmd), discoverOptions(src, registry))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d files discovered\n", len(files))
	for _, f := range files {
		fmt.Fprintln(out, f)
	}
	return nil
}
