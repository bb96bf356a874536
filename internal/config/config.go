// Package config resolves chopper's options from its four sources. Later
// sources win: built-in defaults, a YAML config file, a dotenv file
// discovered by walking parent directories, and real environment variables.
// Command-line flags are applied on top by the cmd layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/chopper-dev/chopper/internal/comment"
	"github.com/chopper-dev/chopper/pkg/types"
)

const (
	// DefaultSuffix identifies composite source files.
	DefaultSuffix = ".chopper.html"
	// DefaultIndent is used when splicing reconciled content back into a
	// source file.
	DefaultIndent = "  "
	// MaxSourceFileSize bounds how large a source file chopper will read.
	MaxSourceFileSize = 10 * 1024 * 1024

	// maxDotenvSearchDepth bounds the upward dotenv discovery.
	maxDotenvSearchDepth = 5
)

// dotenvNames are searched in order at each directory level.
var dotenvNames = []string{".env.chopper", ".env"}

// configNames are the default YAML config file names searched in the
// working directory when no --config flag is given.
var configNames = []string{".chopper.yaml", "chopper.yaml"}

// Options is the fully resolved configuration the core consumes.
type Options struct {
	SourceRoot  string
	StyleDir    string
	ScriptDir   string
	HTMLDir     string
	CommentMode comment.Mode
	Warn        bool
	Update      bool
	DryRun      bool
	Watch       bool
	Indent      string
	Suffix      string
}

// Default returns Options populated with built-in defaults.
func Default() *Options {
	return &Options{
		CommentMode: comment.ModeNone,
		Indent:      DefaultIndent,
		Suffix:      DefaultSuffix,
	}
}

// DirFor returns the configured output root for a block kind.
func (o *Options) DirFor(k types.Kind) string {
	switch k {
	case types.KindStyle:
		return o.StyleDir
	case types.KindScript:
		return o.ScriptDir
	case types.KindChop:
		return o.HTMLDir
	}
	return ""
}

// FileConfig mirrors the YAML config file. Pointer fields distinguish
// "absent" from zero values so the file only overrides what it sets.
type FileConfig struct {
	StyleDir  string `yaml:"style_dir"`
	ScriptDir string `yaml:"script_dir"`
	HTMLDir   string `yaml:"html_dir"`
	Comments  string `yaml:"comments"`
	Warn      *bool  `yaml:"warn"`
	Indent    string `yaml:"indent"`
	Suffix    string `yaml:"suffix"`
}

// LoadFile parses a YAML config file, rejecting unknown fields.
func LoadFile(configPath string) (*FileConfig, error) {
	data, err := os.ReadFile(configPath) //nolint:gosec // configPath is validated before use
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := validateConfigFields(data); err != nil {
		return nil, fmt.Errorf("invalid configuration fields: %w", err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Comments != "" {
		if _, ok := comment.ParseMode(fc.Comments); !ok {
			return nil, fmt.Errorf("invalid comments mode %q (want none, client, or server)", fc.Comments)
		}
	}

	return &fc, nil
}

// FindDefaultConfig returns the first default config file present in dir,
// or "" when none exists.
func FindDefaultConfig(dir string) string {
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if stat, err := os.Stat(path); err == nil && stat.Mode().IsRegular() {
			return path
		}
	}
	return ""
}

// validateConfigFields rejects unknown top-level keys so typos fail loudly
// instead of being silently ignored.
func validateConfigFields(data []byte) error {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	valid := map[string]bool{
		"style_dir":  true,
		"script_dir": true,
		"html_dir":   true,
		"comments":   true,
		"warn":       true,
		"indent":     true,
		"suffix":     true,
	}

	var invalid []string
	for field := range raw {
		if !valid[field] {
			invalid = append(invalid, fmt.Sprintf("'%s'", field))
		}
	}
	if len(invalid) > 0 {
		return fmt.Errorf("unknown fields found: %s", strings.Join(invalid, ", "))
	}
	return nil
}

// Apply overlays the file config onto opts.
func (fc *FileConfig) Apply(opts *Options) {
	if fc.StyleDir != "" {
		opts.StyleDir = fc.StyleDir
	}
	if fc.ScriptDir != "" {
		opts.ScriptDir = fc.ScriptDir
	}
	if fc.HTMLDir != "" {
		opts.HTMLDir = fc.HTMLDir
	}
	if fc.Comments != "" {
		if m, ok := comment.ParseMode(fc.Comments); ok {
			opts.CommentMode = m
		}
	}
	if fc.Warn != nil {
		opts.Warn = *fc.Warn
	}
	if fc.Indent != "" {
		opts.Indent = fc.Indent
	}
	if fc.Suffix != "" {
		opts.Suffix = fc.Suffix
	}
}

// LoadDotenv searches startDir and up to maxDotenvSearchDepth parent
// directories for a dotenv file and loads the first one found into the
// process environment without overriding variables that are already set.
// It returns the loaded path, or "" when nothing was found.
func LoadDotenv(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve search directory: %w", err)
	}

	for depth := 0; depth <= maxDotenvSearchDepth; depth++ {
		for _, name := range dotenvNames {
			path := filepath.Join(dir, name)
			if stat, err := os.Stat(path); err == nil && stat.Mode().IsRegular() {
				if err := godotenv.Load(path); err != nil {
					return "", fmt.Errorf("failed to load %s: %w", path, err)
				}
				return path, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}

// ApplyEnv overlays CHOPPER_* environment variables onto opts.
func ApplyEnv(opts *Options) {
	if v, ok := os.LookupEnv("CHOPPER_SOURCE_DIR"); ok && v != "" {
		opts.SourceRoot = v
	}
	if v, ok := os.LookupEnv("CHOPPER_STYLE_DIR"); ok && v != "" {
		opts.StyleDir = v
	}
	if v, ok := os.LookupEnv("CHOPPER_SCRIPT_DIR"); ok && v != "" {
		opts.ScriptDir = v
	}
	if v, ok := os.LookupEnv("CHOPPER_HTML_DIR"); ok && v != "" {
		opts.HTMLDir = v
	}
	if v, ok := os.LookupEnv("CHOPPER_COMMENTS"); ok && v != "" {
		if m, okm := comment.ParseMode(v); okm {
			opts.CommentMode = m
		}
	}
	if v, ok := os.LookupEnv("CHOPPER_WARN"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Warn = b
		}
	}
	if v, ok := os.LookupEnv("CHOPPER_WATCH"); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Watch = b
		}
	}
	if v, ok := os.LookupEnv("CHOPPER_SUFFIX"); ok && v != "" {
		opts.Suffix = v
	}
	if v, ok := os.LookupEnv("CHOPPER_INDENT"); ok && v != "" {
		opts.Indent = v
	}
}

// Validate checks the fully resolved options.
func (o *Options) Validate() error {
	if o.SourceRoot == "" {
		return fmt.Errorf("source path is required")
	}
	if o.Suffix == "" {
		return fmt.Errorf("source file suffix cannot be empty")
	}
	if _, ok := comment.ParseMode(string(o.CommentMode)); !ok {
		return fmt.Errorf("invalid comments mode %q", o.CommentMode)
	}
	return nil
}
