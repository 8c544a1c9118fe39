package text

import (
	"context"
	"fmt"
	"os"

	"github.com/a3tai/pdf-exam-json/internal/pdf/content"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// PDFCPUProvider extracts text by reading page content streams with pdfcpu
// and interpreting their text operators.
type PDFCPUProvider struct{}

// NewPDFCPUProvider creates a pdfcpu backed provider.
func NewPDFCPUProvider() *PDFCPUProvider {
	return &PDFCPUProvider{}
}

// Name returns the provider name.
func (p *PDFCPUProvider) Name() string {
	return ProviderPDFCPU
}

// Available always succeeds; the library is linked in.
func (p *PDFCPUProvider) Available() error {
	return nil
}

// ExtractText reads the file with relaxed validation and decodes the text
// drawn on every page.
func (p *PDFCPUProvider) ExtractText(ctx context.Context, path string) (doc *Document, err error) {
	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = &ProviderError{Provider: ProviderPDFCPU, Op: "extract_text", Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	file, err := os.Open(path)
	if err != nil {
		return nil, &ProviderError{
			Provider: ProviderPDFCPU,
			Op:       "open",
			Err:      fmt.Errorf("failed to open file: %w", err),
		}
	}
	defer file.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadContext(file, conf)
	if err != nil {
		return nil, &ProviderError{
			Provider: ProviderPDFCPU,
			Op:       "open",
			Err:      fmt.Errorf("failed to read PDF context: %w", err),
		}
	}

	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, &ProviderError{
			Provider: ProviderPDFCPU,
			Op:       "open",
			Err:      fmt.Errorf("failed to ensure page count: %w", err),
		}
	}

	pages := make([]string, 0, pdfCtx.PageCount)
	for pageNum := 1; pageNum <= pdfCtx.PageCount; pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		r, err := pdfcpu.ExtractPageContent(pdfCtx, pageNum)
		if err != nil {
			return nil, &ProviderError{
				Provider: ProviderPDFCPU,
				Op:       "extract_text",
				Err:      fmt.Errorf("page %d: %w", pageNum, err),
			}
		}
		if r == nil {
			pages = append(pages, "")
			continue
		}

		pageText, err := content.Text(r)
		if err != nil {
			return nil, &ProviderError{
				Provider: ProviderPDFCPU,
				Op:       "extract_text",
				Err:      fmt.Errorf("page %d: %w", pageNum, err),
			}
		}
		pages = append(pages, pageText)
	}

	return newDocument(path, ProviderPDFCPU, pages)
}
