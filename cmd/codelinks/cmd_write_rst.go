package main

import (
	"fmt"
	"os"
	"path/filepath"

	"codelinks/internal/analyse"
	"codelinks/internal/export"

	"github.com/spf13/cobra"
)

var (
	rstOut            string
	rstTitle          string
	rstRemoteURLField string
)

// writeRSTCmd converts analysis output into needextend directives
var writeRSTCmd = &cobra.Command{
	Use:   "write-rst [marked-content-json]",
	Short: "Convert marked_content.json into needextend RST",
	Long: `Writes one ".. needextend::" directive per need id referenced by a
need-id-refs entry, setting the remote URL option on each need.

Example:
  codelinks write-rst output/marked_content.json --out docs/needextend.rst`,
	Args: cobra.ExactArgs(1),
	RunE: runWriteRST,
}

func init() {
	writeRSTCmd.Flags().StringVar(&rstOut, "out", "", "Output file (default: needextend.rst next to the JSON file)")
	writeRSTCmd.Flags().StringVar(&rstTitle, "title", "", "Title of the RST document")
	writeRSTCmd.Flags().StringVar(&rstRemoteURLField, "remote-url-field", "", "Need option receiving the URL (overrides output.remote_url_field)")
}

func runWriteRST(cmd *cobra.Command, args []string) error {
	c := loadedConfig()

	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open marked content: %w", err)
	}
	contents, err := analyse.ReadJSON(in)
	in.Close()
	if err != nil {
		return err
	}

	outPath := rstOut
	if outPath == "" {
		outPath = filepath.Join(filepath.Dir(args[0]), "needextend.rst")
	}
	field := c.Output.RemoteURLField
	if rstRemoteURLField != "" {
		field = rstRemoteURLField
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	n, err := export.NeedExtend(out, contents, export.NeedExtendOptions{RemoteURLField: field, Title: rstTitle})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outPath)
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d needextend directives written to %s\n", n, outPath)
	return nil
}
