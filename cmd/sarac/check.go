package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sarac/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] file.ast",
	Short: "Lower a parsed module and report diagnostics without emitting IR",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, err := resolveRunConfig(cmd, inputPath, false)
	if err != nil {
		return err
	}

	res, err := driver.LowerFile(cmd.Context(), inputPath, cfg.Options)
	reportDiagnostics(res, cfg)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(cmd.OutOrStdout(), "ok")
	}
	return nil
}
