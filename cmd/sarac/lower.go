package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"sarac/internal/driver"
)

var (
	lowerOutput string
	lowerName   string
	lowerCache  bool
)

var lowerCmd = &cobra.Command{
	Use:   "lower [flags] file.ast",
	Short: "Lower a parsed module to textual IR",
	Long:  `Lower reads a serialized AST document and emits the textual IR for the whole module`,
	Args:  cobra.ExactArgs(1),
	RunE:  runLower,
}

func init() {
	lowerCmd.Flags().StringVarP(&lowerOutput, "output", "o", "", "write IR to this file instead of stdout")
	lowerCmd.Flags().StringVar(&lowerName, "name", "", "override the module name")
	lowerCmd.Flags().BoolVar(&lowerCache, "cache", false, "reuse cached IR for unchanged inputs")
}

func runLower(cmd *cobra.Command, args []string) error {
	inputPath := args[0]

	cfg, err := resolveRunConfig(cmd, inputPath, lowerCache)
	if err != nil {
		return err
	}
	if lowerName != "" {
		cfg.ModuleName = lowerName
	}
	if lowerOutput != "" {
		cfg.Output = lowerOutput
	}

	res, err := driver.LowerFile(cmd.Context(), inputPath, cfg.Options)
	reportDiagnostics(res, cfg)
	if err != nil {
		return fmt.Errorf("lowering failed: %w", err)
	}

	if cfg.Output == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.Text)
		return err
	}
	if err := os.WriteFile(cfg.Output, []byte(res.Text), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Output, err)
	}
	if !cfg.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", cfg.Output)
	}
	return nil
}
