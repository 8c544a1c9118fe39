package convert

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/a3tai/pdf-exam-json/internal/exam"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ExtFor returns the file extension written for format.
func ExtFor(format string) string {
	if format == FormatYAML {
		return ".yaml"
	}
	return ".json"
}

// Encode writes e to w in the given format. JSON is indented by two spaces
// and keeps non-ASCII and HTML characters verbatim.
func Encode(w io.Writer, e *exam.Exam, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(e)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(e); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}

// WriteFile encodes e and writes it to path, creating parent directories.
func WriteFile(path string, e *exam.Exam, format string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, e, format); err != nil {
		return fmt.Errorf("failed to encode exam: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

// DefaultOutputPath derives the output file name from the input by
// replacing its extension with ext, or appending ext when it has none.
func DefaultOutputPath(input, ext string) string {
	if old := filepath.Ext(input); old != "" {
		return strings.TrimSuffix(input, old) + ext
	}
	return input + ext
}

// LoadExam reads an exam file and checks it against the player's layout.
func LoadExam(path string) (*exam.Exam, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open exam file: %w", err)
	}
	defer f.Close()

	return exam.Decode(f)
}
