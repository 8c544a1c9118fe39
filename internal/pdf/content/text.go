package content

import (
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// tjSpaceThreshold is the TJ adjustment, in thousandths of text space, past
// which a gap is rendered as a space.
const tjSpaceThreshold = -200

// Text walks a page content stream and returns the text drawn by its text
// showing operators. Line moves (T*, ', ", Td/TD with a vertical offset and
// Tm changing the baseline) start a new output line.
//
// Strings are decoded as WinAnsi unless they carry a UTF-16BE byte order
// mark; fonts with custom encodings or CMaps are not interpreted.
func Text(r io.Reader) (string, error) {
	w := &textWriter{}
	lex := NewLexer(r)

	var (
		operands []Token
		array    []Token
		inArray  bool
	)

	for {
		tok, err := lex.Next()
		if err != nil {
			return w.String(), err
		}

		switch tok.Type {
		case TokenEOF:
			return w.String(), nil
		case TokenArrayStart:
			inArray = true
			array = array[:0]
		case TokenArrayEnd:
			inArray = false
		case TokenOperator:
			w.apply(tok.Value, operands, array)
			if tok.Value == "ID" {
				lex.SkipInlineImage()
			}
			operands = operands[:0]
			array = array[:0]
		default:
			if inArray {
				array = append(array, tok)
			} else {
				operands = append(operands, tok)
			}
		}
	}
}

type textWriter struct {
	out      strings.Builder
	lineText bool
	lineY    float64
	haveY    bool
}

func (w *textWriter) String() string {
	return w.out.String()
}

func (w *textWriter) newline() {
	if w.lineText {
		w.out.WriteByte('\n')
		w.lineText = false
	}
}

func (w *textWriter) space() {
	s := w.out.String()
	if w.lineText && !strings.HasSuffix(s, " ") {
		w.out.WriteByte(' ')
	}
}

func (w *textWriter) show(raw string) {
	text := decodeString(raw)
	if text == "" {
		return
	}
	w.out.WriteString(text)
	w.lineText = true
}

func (w *textWriter) apply(op string, operands, array []Token) {
	switch op {
	case "Tj":
		if s, ok := lastString(operands); ok {
			w.show(s)
		}
	case "'", "\"":
		w.newline()
		if s, ok := lastString(operands); ok {
			w.show(s)
		}
	case "TJ":
		for _, item := range array {
			switch item.Type {
			case TokenString:
				w.show(item.Value)
			case TokenNumber:
				if n, err := strconv.ParseFloat(item.Value, 64); err == nil && n < tjSpaceThreshold {
					w.space()
				}
			}
		}
	case "T*":
		w.newline()
	case "Td", "TD":
		if len(operands) < 2 {
			return
		}
		tx, _ := strconv.ParseFloat(operands[len(operands)-2].Value, 64)
		ty, _ := strconv.ParseFloat(operands[len(operands)-1].Value, 64)
		if ty != 0 {
			w.newline()
			w.haveY = false
		} else if tx > 0 {
			w.space()
		}
	case "Tm":
		if len(operands) < 6 {
			return
		}
		y, err := strconv.ParseFloat(operands[len(operands)-1].Value, 64)
		if err != nil {
			return
		}
		if !w.haveY || y != w.lineY {
			w.newline()
		}
		w.lineY = y
		w.haveY = true
	}
}

func lastString(operands []Token) (string, bool) {
	if len(operands) == 0 {
		return "", false
	}
	last := operands[len(operands)-1]
	if last.Type != TokenString {
		return "", false
	}
	return last.Value, true
}

var utf16Decoder = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

func decodeString(raw string) string {
	if strings.HasPrefix(raw, "\xfe\xff") {
		if s, err := utf16Decoder.NewDecoder().String(raw); err == nil {
			return s
		}
	}
	s, err := charmap.Windows1252.NewDecoder().String(raw)
	if err != nil {
		return raw
	}
	return s
}
