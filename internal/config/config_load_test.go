package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/pdf-exam-json/internal/convert"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	for _, name := range []string{
		"EXAM_PDF_MODE", "EXAM_PDF_OUTPUT", "EXAM_PDF_TITLE", "EXAM_PDF_DIR",
		"EXAM_PDF_FORMAT", "EXAM_PDF_ANSWER_POLICY", "EXAM_PDF_WORKERS",
		"EXAM_PDF_LOGLEVEL", "EXAM_PDF_MAXFILESIZE",
	} {
		os.Unsetenv(name)
	}
}

func withArgs(t *testing.T, args ...string) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	})
	setArgs(args)
	resetFlags()
	clearEnvVars()
}

func TestLoadFromFlags_Positional(t *testing.T) {
	withArgs(t, "pdf-exam-json", "exam.pdf", "out.json", "Networking 101")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != ModeConvert {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, ModeConvert)
	}
	if cfg.Input != "exam.pdf" {
		t.Errorf("LoadFromFlags() Input = %v, want exam.pdf", cfg.Input)
	}
	if cfg.Output != "out.json" {
		t.Errorf("LoadFromFlags() Output = %v, want out.json", cfg.Output)
	}
	if cfg.Title != "Networking 101" {
		t.Errorf("LoadFromFlags() Title = %v, want Networking 101", cfg.Title)
	}
	if cfg.Format != convert.FormatJSON {
		t.Errorf("LoadFromFlags() Format = %v, want json", cfg.Format)
	}
}

func TestLoadFromFlags_Flags(t *testing.T) {
	withArgs(t, "pdf-exam-json",
		"--title=Flag Title", "--format=yaml", "--answer-policy=reject",
		"--backend=pdfcpu", "--shuffle", "--seed=9", "--loglevel=debug",
		"exam.pdf")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Title != "Flag Title" {
		t.Errorf("Title = %v, want Flag Title", cfg.Title)
	}
	if cfg.Format != convert.FormatYAML {
		t.Errorf("Format = %v, want yaml", cfg.Format)
	}
	if cfg.AnswerPolicy != "reject" {
		t.Errorf("AnswerPolicy = %v, want reject", cfg.AnswerPolicy)
	}
	if strings.Join(cfg.Backends, ",") != "pdfcpu" {
		t.Errorf("Backends = %v, want [pdfcpu]", cfg.Backends)
	}
	if !cfg.Shuffle || cfg.Seed != 9 {
		t.Errorf("Shuffle/Seed = %v/%d, want true/9", cfg.Shuffle, cfg.Seed)
	}
	if !cfg.IsDebug() {
		t.Error("expected debug logging")
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	withArgs(t, "pdf-exam-json", "exam.pdf")
	os.Setenv("EXAM_PDF_TITLE", "From Env")
	os.Setenv("EXAM_PDF_ANSWER_POLICY", "clamp")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Title != "From Env" {
		t.Errorf("Title = %v, want From Env", cfg.Title)
	}
	if cfg.AnswerPolicy != "clamp" {
		t.Errorf("AnswerPolicy = %v, want clamp", cfg.AnswerPolicy)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	withArgs(t, "pdf-exam-json", "--title=From Flag", "exam.pdf")
	os.Setenv("EXAM_PDF_TITLE", "From Env")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Title != "From Flag" {
		t.Errorf("Title = %v, want From Flag", cfg.Title)
	}
}

func TestLoadFromFlags_StdioDefaultsDirectory(t *testing.T) {
	withArgs(t, "pdf-exam-json", "--mode=stdio")

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	wd, _ := os.Getwd()
	want, _ := filepath.Abs(wd)
	if cfg.Directory != want {
		t.Errorf("Directory = %v, want %v", cfg.Directory, want)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "no input", args: []string{"pdf-exam-json"}},
		{name: "invalid mode", args: []string{"pdf-exam-json", "--mode=server", "exam.pdf"}},
		{name: "invalid format", args: []string{"pdf-exam-json", "--format=xml", "exam.pdf"}},
		{name: "invalid log level", args: []string{"pdf-exam-json", "--loglevel=trace", "exam.pdf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			withArgs(t, tt.args...)

			_, err := LoadFromFlags()
			if err == nil {
				t.Fatal("LoadFromFlags() expected error")
			}
			if !strings.Contains(err.Error(), "invalid configuration") {
				t.Errorf("LoadFromFlags() error = %v, want invalid configuration", err)
			}
		})
	}
}
