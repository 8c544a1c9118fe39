package text

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

const defaultPDFToTextBinary = "pdftotext"

// PDFToTextProvider shells out to the poppler pdftotext utility.
type PDFToTextProvider struct {
	binary string
}

// NewPDFToTextProvider creates a provider running binary, or "pdftotext"
// from PATH when binary is empty.
func NewPDFToTextProvider(binary string) *PDFToTextProvider {
	if binary == "" {
		binary = defaultPDFToTextBinary
	}
	return &PDFToTextProvider{binary: binary}
}

// Name returns the provider name.
func (p *PDFToTextProvider) Name() string {
	return ProviderPDFToText
}

// Available checks that the binary can be found.
func (p *PDFToTextProvider) Available() error {
	if _, err := exec.LookPath(p.binary); err != nil {
		return fmt.Errorf("%s not found: %w", p.binary, err)
	}
	return nil
}

// ExtractText runs pdftotext and splits its output on form feeds, which it
// emits after every page.
func (p *PDFToTextProvider) ExtractText(ctx context.Context, path string) (*Document, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, "-enc", "UTF-8", path, "-")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ProviderError{
			Provider: ProviderPDFToText,
			Op:       "extract_text",
			Err:      fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String())),
		}
	}

	return newDocument(path, ProviderPDFToText, splitPages(stdout.String()))
}

func splitPages(out string) []string {
	pages := strings.Split(out, "\f")
	if len(pages) > 1 && strings.TrimSpace(pages[len(pages)-1]) == "" {
		pages = pages[:len(pages)-1]
	}
	for i, page := range pages {
		pages[i] = strings.TrimSuffix(page, "\n")
	}
	return pages
}
