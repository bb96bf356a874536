package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/chopper-dev/chopper/internal/reconcile"
	"github.com/chopper-dev/chopper/internal/version"
)

var (
	styleDir     string
	scriptDir    string
	htmlDir      string
	commentsMode string
	configFile   string
	warnFlag     bool
	updateFlag   bool
	dryRunFlag   bool
	watchFlag    bool
	indentFlag   string
	suffixFlag   string
)

var rootCmd = &cobra.Command{
	Use:     "chopper <source-path>",
	Short:   "Extract embedded style, script, and chop blocks into separate files",
	Version: version.GetVersion(),
	Long: `A CLI tool that chops composite template files into separate CSS, JS,
and HTML files. Blocks are marked with a chopper:file attribute naming the
destination; chopper extracts each block's content and keeps the
destinations in sync with the source.

Input can be either a single source file or a directory searched for
files matching the source suffix (default ".chopper.html").`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := executeChop(cmd, args); err != nil {
			if errors.Is(err, reconcile.ErrCancelled) {
				fmt.Fprintln(os.Stderr, "Operation cancelled")
			} else {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			os.Exit(1)
		}
	},
}

func Execute() error {
	// Setup flags
	rootCmd.Flags().StringVarP(&styleDir, "style-dir", "c", "", "Output directory for style blocks (default: source directory)")
	rootCmd.Flags().StringVarP(&scriptDir, "script-dir", "s", "", "Output directory for script blocks (default: source directory)")
	rootCmd.Flags().StringVarP(&htmlDir, "html-dir", "m", "", "Output directory for chop blocks (default: source directory)")
	rootCmd.Flags().StringVar(&commentsMode, "comments", "", "Provenance comment mode: none, client, or server")
	rootCmd.Flags().StringVar(&configFile, "config", "", "Configuration file (default: .chopper.yaml in the working directory)")
	rootCmd.Flags().BoolVarP(&warnFlag, "warn", "w", false, "Report drifted destinations instead of overwriting them")
	rootCmd.Flags().BoolVarP(&updateFlag, "update", "u", false, "Interactively copy destination edits back into the source (requires --warn)")
	rootCmd.Flags().BoolVarP(&dryRunFlag, "dry-run", "d", false, "Show what would be done without touching any files")
	rootCmd.Flags().BoolVar(&watchFlag, "watch", false, "Re-chop source files whenever they change")
	rootCmd.Flags().StringVar(&indentFlag, "indent", "", "Indent prepended to lines spliced back into the source (default two spaces)")
	rootCmd.Flags().StringVar(&suffixFlag, "suffix", "", `Source file suffix (default ".chopper.html")`)

	// Enable version flag
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	return rootCmd.Execute()
}
