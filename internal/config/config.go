package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/pdf-exam-json/internal/convert"
	"github.com/a3tai/pdf-exam-json/internal/exam"
)

const (
	// Mode constants
	ModeConvert  = "convert"
	ModeValidate = "validate"
	ModeStdio    = "stdio"

	// Default values
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "console"
	DefaultWorkers     = 4
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	envPrefix = "EXAM_PDF"
)

// DefaultBackends lists the text providers in the order they are tried.
var DefaultBackends = []string{"ledongthuc", "pdfcpu"}

// Config holds all configuration for the converter
type Config struct {
	Mode string // "convert", "validate" or "stdio"

	// Conversion inputs. Input, Output and Title may also come from the
	// positional arguments <pdf_file> [output_file] [exam_title].
	Input     string
	Output    string
	Title     string
	Directory string

	// Extraction configuration
	Backends     []string
	Marker       string
	AnswerPolicy string
	Format       string
	Shuffle      bool
	Seed         int64
	Workers      int
	Pages        string // Page ranges such as "1-3,5"; empty reads every page
	MaxFileSize  int64  // Maximum PDF file size in bytes

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Mode:         ModeConvert,
		Backends:     append([]string(nil), DefaultBackends...),
		Marker:       exam.DefaultMarker,
		AnswerPolicy: string(exam.PolicyPreserve),
		Format:       convert.FormatJSON,
		Workers:      DefaultWorkers,
		MaxFileSize:  DefaultMaxFileSize,
		Version:      "1.0.0",
		ServerName:   "pdf-exam-json",
		LogLevel:     DefaultLogLevel,
		LogFormat:    DefaultLogFormat,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)
	applyPositionalArgs(cfg, pflag.Args())

	if cfg.Mode == ModeStdio && cfg.Directory == "" {
		if wd, err := os.Getwd(); err == nil {
			cfg.Directory = wd
		} else {
			cfg.Directory = "."
		}
	}
	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("title", cfg.Title)
	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("backend", cfg.Backends)
	viper.SetDefault("marker", cfg.Marker)
	viper.SetDefault("answer-policy", cfg.AnswerPolicy)
	viper.SetDefault("format", cfg.Format)
	viper.SetDefault("shuffle", cfg.Shuffle)
	viper.SetDefault("seed", cfg.Seed)
	viper.SetDefault("workers", cfg.Workers)
	viper.SetDefault("pages", cfg.Pages)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'convert' a PDF, 'validate' an exam JSON file, or 'stdio' MCP server")
	pflag.StringP("output", "o", cfg.Output, "Output file (default: input name with the format's extension)")
	pflag.StringP("title", "t", cfg.Title, "Exam title (default: \""+convert.DefaultTitle+"\")")
	pflag.String("dir", cfg.Directory, "Convert every PDF in this directory; in stdio mode, the directory tools may access")
	pflag.StringSlice("backend", cfg.Backends, "Text extraction backends in order of preference")
	pflag.String("marker", cfg.Marker, "Token that precedes each question number")
	pflag.String("answer-policy", cfg.AnswerPolicy,
		"Answer letters past the last option: 'preserve', 'reject' or 'clamp'")
	pflag.String("format", cfg.Format, "Output format (json, yaml)")
	pflag.Bool("shuffle", cfg.Shuffle, "Shuffle answer options of every question")
	pflag.Int64("seed", cfg.Seed, "Shuffle seed (0 picks a random seed)")
	pflag.Int("workers", cfg.Workers, "Concurrent conversions in --dir mode")
	pflag.String("pages", cfg.Pages, "Only read these pages, e.g. '1-3,5,9-' (default: all pages)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (console, json)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "output", "title", "dir", "backend", "marker", "answer-policy", "format",
		"shuffle", "seed", "workers", "pages", "maxfilesize", "loglevel", "logformat",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <pdf_file> [output_file] [exam_title]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nConverts exam PDF files to JSON for quiz players\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s exam.pdf\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s exam.pdf output.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s exam.pdf output.json \"My Exam Title\"\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=./exams --workers=8\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=validate output.json\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=./exams\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EXAM_PDF_MODE, EXAM_PDF_OUTPUT, EXAM_PDF_TITLE, EXAM_PDF_DIR,\n")
		fmt.Fprintf(os.Stderr, "  EXAM_PDF_BACKEND, EXAM_PDF_FORMAT, EXAM_PDF_ANSWER_POLICY,\n")
		fmt.Fprintf(os.Stderr, "  EXAM_PDF_WORKERS, EXAM_PDF_PAGES, EXAM_PDF_MAXFILESIZE, EXAM_PDF_LOGLEVEL, EXAM_PDF_LOGFORMAT\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Output = viper.GetString("output")
	cfg.Title = viper.GetString("title")
	cfg.Directory = viper.GetString("dir")
	cfg.Backends = viper.GetStringSlice("backend")
	cfg.Marker = viper.GetString("marker")
	cfg.AnswerPolicy = viper.GetString("answer-policy")
	cfg.Format = strings.ToLower(viper.GetString("format"))
	cfg.Shuffle = viper.GetBool("shuffle")
	cfg.Seed = viper.GetInt64("seed")
	cfg.Workers = viper.GetInt("workers")
	cfg.Pages = viper.GetString("pages")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
}

// applyPositionalArgs fills Input, Output and Title from
// <pdf_file> [output_file] [exam_title]. Flags win over positional values.
func applyPositionalArgs(cfg *Config, args []string) {
	if len(args) > 0 {
		cfg.Input = args[0]
	}
	if len(args) > 1 && cfg.Output == "" {
		cfg.Output = args[1]
	}
	if len(args) > 2 && cfg.Title == "" {
		cfg.Title = args[2]
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeConvert:
		if c.Input == "" && c.Directory == "" {
			return errors.New("a PDF file or --dir is required")
		}
		if c.Input != "" && c.Directory != "" {
			return errors.New("a PDF file and --dir cannot be combined")
		}
		if c.Directory != "" && c.Output != "" {
			return errors.New("--output cannot be used with --dir")
		}
	case ModeValidate:
		if c.Input == "" {
			return errors.New("an exam JSON file is required in validate mode")
		}
	case ModeStdio:
		if c.Directory == "" {
			return errors.New("directory cannot be empty in stdio mode")
		}
	default:
		return errors.New("mode must be one of 'convert', 'validate' or 'stdio'")
	}

	if len(c.Backends) == 0 {
		return errors.New("at least one backend is required")
	}
	if c.Marker == "" {
		return errors.New("question marker cannot be empty")
	}

	if _, ok := exam.ParseAnswerPolicy(c.AnswerPolicy); !ok {
		return fmt.Errorf("invalid answer policy: %s (must be one of: preserve, reject, clamp)", c.AnswerPolicy)
	}

	if c.Format != convert.FormatJSON && c.Format != convert.FormatYAML {
		return fmt.Errorf("invalid format: %s (must be one of: json, yaml)", c.Format)
	}

	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format: %s (must be one of: console, json)", c.LogFormat)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsStdioMode returns true if the MCP server should run over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsBatch returns true if a whole directory is converted
func (c *Config) IsBatch() bool {
	return c.Mode == ModeConvert && c.Directory != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Input: %s, Output: %s, Title: %s, Directory: %s, Backends: %v, "+
		"Format: %s, AnswerPolicy: %s, Workers: %d, Pages: %q, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Input, c.Output, c.Title, c.Directory, c.Backends,
		c.Format, c.AnswerPolicy, c.Workers, c.Pages, c.LogLevel, c.MaxFileSize)
}
