package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/codedigest/internal/scanner"
)

// NewScanCommand creates the scan command
func NewScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "List the files collection would include, without analyzing",
		Long: `Walk the scan root with the configured extension allow-list, directory
deny-list, and ignore patterns, and print the collected file paths in
traversal order, one per line. The first file-limit entries of this
listing are exactly the files a digest would contain.`,
		Args: cobra.NoArgs,
		RunE: runScan,
	}

	addScanFlags(cmd)

	return cmd
}

// runScan implements the scan command logic
func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	s, err := scanner.New(cfg.Root, scanner.Options{
		Extensions:     cfg.Extensions,
		IgnoreDirs:     cfg.IgnoreDirs,
		IgnorePatterns: cfg.IgnorePatterns,
	})
	if err != nil {
		return err
	}

	files, err := s.Collect()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		fmt.Fprintln(out, f)
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d files collected\n", len(files))

	return nil
}
