package text

import (
	"fmt"
	"strconv"
	"strings"
)

// PageRange is an inclusive, 1-based span of pages. End 0 means "to the
// last page".
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ParsePageRanges parses a comma separated list such as "1-3,5,9-".
// An empty list yields no ranges, which selects every page.
func ParsePageRanges(list string) ([]PageRange, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return nil, nil
	}

	var ranges []PageRange
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		startText, endText, isSpan := strings.Cut(part, "-")
		start, err := parsePageNumber(startText)
		if err != nil {
			return nil, fmt.Errorf("invalid page range %q: %w", part, err)
		}

		end := start
		if isSpan {
			if strings.TrimSpace(endText) == "" {
				end = 0
			} else if end, err = parsePageNumber(endText); err != nil {
				return nil, fmt.Errorf("invalid page range %q: %w", part, err)
			}
			if end != 0 && end < start {
				return nil, fmt.Errorf("invalid page range %q: end before start", part)
			}
		}

		ranges = append(ranges, PageRange{Start: start, End: end})
	}

	return ranges, nil
}

func parsePageNumber(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("not a page number: %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("page numbers start at 1")
	}
	return n, nil
}

// normalizeRanges clamps ranges to the document and drops empty ones.
func normalizeRanges(ranges []PageRange, totalPages int) []PageRange {
	var validRanges []PageRange

	for _, r := range ranges {
		start := r.Start
		end := r.End

		if start < 1 {
			start = 1
		}
		if end == 0 || end > totalPages {
			end = totalPages
		}
		if start > end {
			continue
		}

		validRanges = append(validRanges, PageRange{Start: start, End: end})
	}

	return validRanges
}

// SelectPages returns a document holding only the pages covered by ranges,
// in document order and without duplicates. No ranges selects every page.
func (d *Document) SelectPages(ranges []PageRange) (*Document, error) {
	if len(ranges) == 0 {
		return d, nil
	}

	keep := make([]bool, len(d.PageTexts)+1)
	for _, r := range normalizeRanges(ranges, len(d.PageTexts)) {
		for page := r.Start; page <= r.End; page++ {
			keep[page] = true
		}
	}

	var pages []string
	for i, page := range d.PageTexts {
		if keep[i+1] {
			pages = append(pages, page)
		}
	}

	return newDocument(d.Path, d.Provider, pages)
}
