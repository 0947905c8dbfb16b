package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/mmwrtab/pkg/config"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate an mmwrtab configuration file without parsing bulletins.

Checks:
  - YAML syntax
  - Required fields and value ranges
  - Webhook URLs and triggers
  - Fetch and store sections, when present
  - Bulletin discovery (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Validating %s...\n", configPath)

	// Load and validate config
	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Fetch.StartYear != 0 {
		if err := config.ValidateFetch(cfg); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}
	if cfg.Store.DBName != "" {
		if err := config.ValidateStore(cfg); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	// Report what we found
	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Sources:  %d pattern(s)\n", len(cfg.Sources))
	if cfg.FileList != "" {
		fmt.Fprintf(w, "  File list: %s\n", cfg.FileList)
	}
	if cfg.Contains != "" {
		fmt.Fprintf(w, "  Contains: %q\n", cfg.Contains)
	}
	fmt.Fprintf(w, "  Webhooks: %d\n", len(cfg.Webhooks))

	// Check if bulletins exist (warnings only)
	files, err := discover(cfg)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error discovering bulletins: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No bulletins match the configured sources\n")
	} else {
		fmt.Fprintf(w, "\nBulletins matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
