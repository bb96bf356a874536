// Package validation guards the filesystem boundaries of chopper: the
// paths the CLI accepts and, critically, the destination paths declared
// inside source files.
package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveOutputPath joins a declared relative path onto its output root and
// canonicalizes the result. It fails when the canonical path is not a
// descendant of the root.
//
// Declared paths are attacker-controllable content embedded in source
// files, so this is a security boundary: it must run on every write, not
// just once per invocation.
func ResolveOutputPath(declared, base string) (string, error) {
	if declared == "" {
		return "", fmt.Errorf("declared path cannot be empty")
	}
	if base == "" {
		return "", fmt.Errorf("output base directory cannot be empty")
	}

	absBase, err := filepath.Abs(filepath.Clean(base))
	if err != nil {
		return "", fmt.Errorf("failed to resolve output base: %w", err)
	}

	declared = filepath.FromSlash(declared)
	var target string
	if filepath.IsAbs(declared) {
		target = filepath.Clean(declared)
	} else {
		target = filepath.Join(absBase, declared)
	}

	rel, err := filepath.Rel(absBase, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path escapes destination directory: %s", declared)
	}

	return target, nil
}

// ValidateInputPath validates the source file/directory argument.
func ValidateInputPath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	stat, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("path does not exist or is not accessible: %s", path)
	}

	// Reject symbolic links to prevent symlink attacks.
	if stat.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("symbolic links are not allowed: %s", path)
	}

	if !stat.IsDir() && !stat.Mode().IsRegular() {
		return fmt.Errorf("path must be a regular file or directory: %s", path)
	}

	return nil
}

// ValidateOutputDir validates a per-kind output directory flag. An empty
// value is allowed and resolved to a default later.
func ValidateOutputDir(path string) error {
	if path == "" {
		return nil
	}

	if stat, err := os.Stat(path); err == nil {
		if !stat.IsDir() {
			return fmt.Errorf("output path exists but is not a directory: %s", path)
		}
	}

	return nil
}

// ValidateConfigPath validates a configuration file path.
func ValidateConfigPath(path string) error {
	if path == "" {
		return nil // Optional
	}

	stat, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("config file does not exist: %s", path)
	}

	if !stat.Mode().IsRegular() {
		return fmt.Errorf("config path must be a regular file: %s", path)
	}

	// Check file size to prevent DoS attacks
	const maxConfigSize = 1024 * 1024 // 1MB
	if stat.Size() > maxConfigSize {
		return fmt.Errorf("config file too large (max %d bytes): %s", maxConfigSize, path)
	}

	return nil
}

// ValidateFlagCombination rejects flag combinations that have no coherent
// behavior.
func ValidateFlagCombination(warn, update, watch bool) error {
	if update && !warn {
		return fmt.Errorf("--update requires --warn: updating the source only makes sense when drift is reported instead of overwritten")
	}
	if update && watch {
		return fmt.Errorf("cannot use --update with --watch: interactive prompts are not available while watching")
	}
	return nil
}
