package text

import (
	"errors"
	"fmt"
)

var (
	// ErrNoText is returned when a document yields no extractable text.
	ErrNoText = errors.New("no extractable text")

	// ErrNoProvider is returned when none of the configured providers is usable.
	ErrNoProvider = errors.New("no text extraction provider available")

	// ErrUnknownProvider is returned for provider names missing from the registry.
	ErrUnknownProvider = errors.New("unknown text extraction provider")
)

// ProviderError reports a failure inside a specific text provider.
type ProviderError struct {
	Provider string `json:"provider"`
	Op       string `json:"operation"`
	Err      error  `json:"error"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s provider error in %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
