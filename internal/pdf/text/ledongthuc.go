package text

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/ledongthuc/pdf"
)

// LedongthucProvider extracts text with github.com/ledongthuc/pdf.
type LedongthucProvider struct{}

// NewLedongthucProvider creates a ledongthuc/pdf backed provider.
func NewLedongthucProvider() *LedongthucProvider {
	return &LedongthucProvider{}
}

// Name returns the provider name.
func (p *LedongthucProvider) Name() string {
	return ProviderLedongthuc
}

// Available always succeeds; the library is linked in.
func (p *LedongthucProvider) Available() error {
	return nil
}

// ExtractText reads the text of each page, one output line per baseline.
// Pages that fail to decode are left empty; the document fails only when no
// page produced text.
func (p *LedongthucProvider) ExtractText(ctx context.Context, path string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ProviderError{Provider: ProviderLedongthuc, Op: "extract_text", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, &ProviderError{
			Provider: ProviderLedongthuc,
			Op:       "open",
			Err:      fmt.Errorf("failed to open PDF: %w", err),
		}
	}
	defer f.Close()

	pages := make([]string, 0, reader.NumPage())
	var firstErr error
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(pageNum)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		content, err := pageText(page)
		if err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("page %d: %w", pageNum, err)
			}
			pages = append(pages, "")
			continue
		}
		pages = append(pages, content)
	}

	doc, err = newDocument(path, ProviderLedongthuc, pages)
	if err != nil && firstErr != nil {
		return nil, &ProviderError{Provider: ProviderLedongthuc, Op: "extract_text", Err: firstErr}
	}
	return doc, err
}

// pageText lays out the glyphs of a page in content order, starting a new
// line whenever the baseline moves. Page.Content follows Td, TD, T* and Tm,
// which GetPlainText does not.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	var (
		b        strings.Builder
		lineY    float64
		lineEnd  float64
		haveLine bool
	)
	for _, glyph := range page.Content().Text {
		if glyph.S == "" || glyph.S == "\n" {
			continue
		}

		tolerance := math.Max(glyph.FontSize/2, 1)
		switch {
		case !haveLine:
			haveLine = true
		case math.Abs(glyph.Y-lineY) > tolerance:
			b.WriteByte('\n')
		case glyph.X-lineEnd > glyph.FontSize/5 && glyph.S != " " && !strings.HasSuffix(b.String(), " "):
			b.WriteByte(' ')
		}

		b.WriteString(glyph.S)
		lineY = glyph.Y
		lineEnd = glyph.X + glyph.W
	}

	return b.String(), nil
}
