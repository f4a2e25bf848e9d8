package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/dmt/internal/wordlist"
)

var (
	importSheet    string
	importNoHeader bool
	importLevel    int
)

func newImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import words from a .csv, .xlsx or .txt file",
		Args:  cobra.ExactArgs(1),
		RunE:  runImportCmd,
	}
	cmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	cmd.Flags().BoolVar(&importNoHeader, "no-header", false, "first row holds data, not column names")
	cmd.Flags().IntVar(&importLevel, "level", 0, "level for .txt lists (0 classifies each word)")
	return cmd
}

func runImportCmd(cmd *cobra.Command, args []string) error {
	settings, _, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	st, err := openStore(settings)
	if err != nil {
		return err
	}
	defer closeStore(st)

	cfg := wordlist.DefaultImportConfig(args[0])
	cfg.SheetName = importSheet
	cfg.SkipHeader = !importNoHeader
	cfg.Level = importLevel

	result, err := wordlist.ImportWords(context.Background(), st, cfg)
	if err != nil {
		return fmt.Errorf("failed to import words: %w", err)
	}
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprintf(out, "Processed %d rows: %d created, %d updated, %d unchanged, %d errors\n",
		result.TotalProcessed, result.Created, result.Updated, result.Unchanged, len(result.Errors)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	for _, msg := range result.Errors {
		logErrln(msg)
	}
	return nil
}
