// Package pdftest writes small uncompressed PDF files for tests.
package pdftest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Layout selects how a page moves from one line to the next.
type Layout int

const (
	// NextLine sets the leading once and advances with T*.
	NextLine Layout = iota
	// MoveText advances with "0 -14 Td", as most generators do.
	MoveText
	// TextMatrix places every line with an absolute Tm.
	TextMatrix
)

const (
	top     = 740
	leading = 14
)

// Write creates a PDF at dir/name with one page per element of pages. Each
// page shows its lines top to bottom in Helvetica, advancing with T*.
func Write(tb testing.TB, dir, name string, pages ...[]string) string {
	tb.Helper()
	return WriteLayout(tb, dir, name, NextLine, pages...)
}

// WriteLayout is Write with an explicit line layout.
func WriteLayout(tb testing.TB, dir, name string, layout Layout, pages ...[]string) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, BuildLayout(layout, pages...), 0o644); err != nil {
		tb.Fatalf("write test PDF: %v", err)
	}
	return path
}

// Build returns the bytes of a PDF with the given pages laid out with T*.
func Build(pages ...[]string) []byte {
	return BuildLayout(NextLine, pages...)
}

// BuildLayout returns the bytes of a PDF with the given pages and layout.
func BuildLayout(layout Layout, pages ...[]string) []byte {
	streams := make([]string, len(pages))
	for i, lines := range pages {
		streams[i] = contentStream(layout, lines)
	}
	return BuildContent(streams...)
}

// BuildContent returns the bytes of a PDF whose pages draw the given raw
// content streams. The font resource /F1 is Helvetica with WinAnsi encoding.
func BuildContent(streams ...string) []byte {
	var objects []string

	kids := make([]string, len(streams))
	for i := range streams {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(streams)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)

	for i, stream := range streams {
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

func contentStream(layout Layout, lines []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT\n/F1 12 Tf\n%d TL\n", leading)
	if layout != TextMatrix {
		fmt.Fprintf(&b, "72 %d Td\n", top)
	}
	for i, line := range lines {
		switch {
		case layout == TextMatrix:
			fmt.Fprintf(&b, "1 0 0 1 72 %d Tm\n", top-i*leading)
		case i == 0:
		case layout == MoveText:
			fmt.Fprintf(&b, "0 -%d Td\n", leading)
		default:
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", escape(line))
	}
	b.WriteString("ET")
	return b.String()
}

var escaper = strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)

func escape(s string) string {
	return escaper.Replace(s)
}
