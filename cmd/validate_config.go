package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chopper-dev/chopper/internal/config"
	"github.com/chopper-dev/chopper/internal/validation"
)

// validateConfigCmd represents the validate-config command
var validateConfigCmd = &cobra.Command{
	Use:   "validate-config <config-file>",
	Short: "Validate a configuration file",
	Long: `Validate the syntax and content of a chopper configuration file.

This command checks:
- YAML syntax
- Unknown fields
- Comment mode validity

If the configuration is valid, a summary of the configuration will be displayed.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidateConfig(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Configuration validation failed: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(validateConfigCmd)
}

func runValidateConfig(configPath string) error {
	if err := validation.ValidateConfigPath(configPath); err != nil {
		return err
	}

	fmt.Printf("Validating configuration file: %s\n", configPath)

	fc, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	printConfigSummary(fc)

	fmt.Println("Configuration is valid.")
	return nil
}

func printConfigSummary(fc *config.FileConfig) {
	fmt.Println("\nConfiguration summary:")
	if fc.StyleDir != "" {
		fmt.Printf("  Style dir:  %s\n", fc.StyleDir)
	}
	if fc.ScriptDir != "" {
		fmt.Printf("  Script dir: %s\n", fc.ScriptDir)
	}
	if fc.HTMLDir != "" {
		fmt.Printf("  HTML dir:   %s\n", fc.HTMLDir)
	}
	if fc.Comments != "" {
		fmt.Printf("  Comments:   %s\n", fc.Comments)
	}
	if fc.Warn != nil {
		fmt.Printf("  Warn:       %t\n", *fc.Warn)
	}
	if fc.Indent != "" {
		fmt.Printf("  Indent:     %q\n", fc.Indent)
	}
	if fc.Suffix != "" {
		fmt.Printf("  Suffix:     %s\n", fc.Suffix)
	}
}
