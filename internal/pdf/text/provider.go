// Package text acquires the plain text of PDF documents through a prioritized
// list of extraction providers.
package text

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// Provider names understood by NewProvider and NewSelector.
const (
	ProviderLedongthuc = "ledongthuc"
	ProviderPDFCPU     = "pdfcpu"
	ProviderPDFToText  = "pdftotext"
)

// Document is the text of a PDF as seen by one provider. Text holds every
// page in order, each followed by a newline.
type Document struct {
	Path     string `json:"path"`
	Pages    int    `json:"pages"`
	Text     string `json:"text"`
	Provider string `json:"provider"`

	// PageTexts holds the text of each page, without the trailing newline.
	PageTexts []string `json:"-"`
}

// Provider extracts the plain text of a PDF file.
type Provider interface {
	// Name identifies the provider in configuration and logs.
	Name() string

	// Available reports why the provider cannot run on this host, or nil.
	Available() error

	// ExtractText reads every page of the file at path.
	ExtractText(ctx context.Context, path string) (*Document, error)
}

var registry = map[string]func() Provider{
	ProviderLedongthuc: func() Provider { return NewLedongthucProvider() },
	ProviderPDFCPU:     func() Provider { return NewPDFCPUProvider() },
	ProviderPDFToText:  func() Provider { return NewPDFToTextProvider("") },
}

// Names returns the registered provider names in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewProvider creates the provider registered under name.
func NewProvider(name string) (Provider, error) {
	create, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknownProvider, name, strings.Join(Names(), ", "))
	}
	return create(), nil
}

// Selector picks the first usable provider from a prioritized list.
type Selector struct {
	providers []Provider
}

// NewSelector resolves names, in priority order, into providers.
func NewSelector(names []string) (*Selector, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("at least one provider is required")
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		p, err := NewProvider(name)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	return NewSelectorFor(providers...), nil
}

// NewSelectorFor builds a selector over already constructed providers.
func NewSelectorFor(providers ...Provider) *Selector {
	return &Selector{providers: providers}
}

// Providers returns the candidates in priority order.
func (s *Selector) Providers() []Provider {
	return append([]Provider(nil), s.providers...)
}

// Select returns the first provider whose Available check passes. When none
// passes the error wraps ErrNoProvider and lists each provider's reason.
func (s *Selector) Select() (Provider, error) {
	reasons := make([]string, 0, len(s.providers))
	for _, p := range s.providers {
		err := p.Available()
		if err == nil {
			return p, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s: %v", p.Name(), err))
	}
	if len(reasons) == 0 {
		return nil, ErrNoProvider
	}
	return nil, fmt.Errorf("%w (%s)", ErrNoProvider, strings.Join(reasons, "; "))
}

// newDocument joins page texts and rejects documents without any text.
func newDocument(path, provider string, pages []string) (*Document, error) {
	var b strings.Builder
	for _, page := range pages {
		b.WriteString(page)
		b.WriteByte('\n')
	}

	doc := &Document{
		Path:      path,
		Pages:     len(pages),
		Text:      b.String(),
		Provider:  provider,
		PageTexts: pages,
	}
	if strings.TrimSpace(doc.Text) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrNoText)
	}
	return doc, nil
}
