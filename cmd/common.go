package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/chopper-dev/chopper/internal/chop"
	"github.com/chopper-dev/chopper/internal/comment"
	"github.com/chopper-dev/chopper/internal/config"
	"github.com/chopper-dev/chopper/internal/reconcile"
	"github.com/chopper-dev/chopper/internal/report"
	"github.com/chopper-dev/chopper/internal/validation"
	"github.com/chopper-dev/chopper/internal/watcher"
	"github.com/chopper-dev/chopper/internal/writer"
	"github.com/chopper-dev/chopper/pkg/types"
)

// executeChop resolves configuration, validates inputs, and runs the chop
// pipeline in batch or watch mode.
func executeChop(cmd *cobra.Command, args []string) error {
	opts, err := resolveOptions(cmd, args)
	if err != nil {
		return err
	}

	if err := validation.ValidateInputPath(opts.SourceRoot); err != nil {
		return fmt.Errorf("invalid source path: %w", err)
	}
	for _, dir := range []string{opts.StyleDir, opts.ScriptDir, opts.HTMLDir} {
		if err := validation.ValidateOutputDir(dir); err != nil {
			return err
		}
	}
	if err := validation.ValidateFlagCombination(opts.Warn, opts.Update, opts.Watch); err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return err
	}

	applyDirDefaults(opts)

	rep := report.New(os.Stdout, os.Stderr, opts.DryRun)

	warn := opts.Warn
	if opts.Watch && warn {
		// Watching exists to keep destinations current, which warn mode
		// forbids.
		rep.Warning(types.ActionChop, "warn mode is ignored while watching")
		warn = false
	}

	var rec writer.Reconciler
	if opts.Update {
		decider := reconcile.NewTerminalDecider(os.Stdin, os.Stdout)
		rec = reconcile.New(decider, opts.CommentMode, opts.Indent, opts.DryRun, rep)
	}

	w := writer.New(warn, opts.DryRun, opts.CommentMode, rec, rep)
	ch := chop.New(opts, w, rep)

	files, err := chop.Discover(opts.SourceRoot, opts.Suffix)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		rep.Warning(types.ActionChop, fmt.Sprintf("no source files matching %q under %s", opts.Suffix, opts.SourceRoot))
	}

	ok, err := ch.Batch(files)
	if err != nil {
		return err
	}

	if opts.Watch {
		return runWatch(opts, ch)
	}

	if !ok {
		return fmt.Errorf("some files were different")
	}
	return nil
}

// resolveOptions layers chopper's configuration sources. Later sources
// win: defaults, YAML config file, dotenv, environment, flags.
func resolveOptions(cmd *cobra.Command, args []string) (*config.Options, error) {
	opts := config.Default()

	path := configFile
	if path == "" {
		path = config.FindDefaultConfig(".")
	}
	if path != "" {
		if err := validation.ValidateConfigPath(path); err != nil {
			return nil, err
		}
		fc, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		fc.Apply(opts)
	}

	if _, err := config.LoadDotenv("."); err != nil {
		return nil, err
	}
	config.ApplyEnv(opts)

	fl := cmd.Flags()
	if fl.Changed("style-dir") {
		opts.StyleDir = styleDir
	}
	if fl.Changed("script-dir") {
		opts.ScriptDir = scriptDir
	}
	if fl.Changed("html-dir") {
		opts.HTMLDir = htmlDir
	}
	if fl.Changed("comments") {
		mode, ok := comment.ParseMode(commentsMode)
		if !ok {
			return nil, fmt.Errorf("invalid comments mode %q (want none, client, or server)", commentsMode)
		}
		opts.CommentMode = mode
	}
	if fl.Changed("warn") {
		opts.Warn = warnFlag
	}
	if fl.Changed("update") {
		opts.Update = updateFlag
	}
	if fl.Changed("dry-run") {
		opts.DryRun = dryRunFlag
	}
	if fl.Changed("watch") {
		opts.Watch = watchFlag
	}
	if fl.Changed("indent") {
		opts.Indent = indentFlag
	}
	if fl.Changed("suffix") {
		opts.Suffix = suffixFlag
	}

	// The positional argument beats CHOPPER_SOURCE_DIR.
	if len(args) == 1 {
		opts.SourceRoot = args[0]
	}

	return opts, nil
}

// applyDirDefaults resolves unset output directories to the source root's
// directory, so a bare invocation chops files next to their source.
func applyDirDefaults(opts *config.Options) {
	base := opts.SourceRoot
	if stat, err := os.Stat(base); err == nil && !stat.IsDir() {
		base = filepath.Dir(base)
	}
	if opts.StyleDir == "" {
		opts.StyleDir = base
	}
	if opts.ScriptDir == "" {
		opts.ScriptDir = base
	}
	if opts.HTMLDir == "" {
		opts.HTMLDir = base
	}
}

// runWatch blocks re-chopping changed source files until interrupted.
func runWatch(opts *config.Options, ch *chop.Chopper) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := opts.SourceRoot
	if stat, err := os.Stat(root); err == nil && !stat.IsDir() {
		root = filepath.Dir(root)
	}

	w := watcher.New(root, opts.Suffix, watcher.DefaultDebounce, func(path string) {
		// Per-file failures are already reported; watching continues.
		_, _ = ch.File(path)
	})
	return w.Run(ctx)
}
