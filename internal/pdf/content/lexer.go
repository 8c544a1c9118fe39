package content

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"io"
	"strconv"
)

// TokenType represents the type of a content stream token
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenNumber
	TokenString
	TokenName
	TokenOperator
	TokenArrayStart
	TokenArrayEnd
	TokenDictStart
	TokenDictEnd
)

// Token is one lexical item of a page content stream. For strings Value
// holds the decoded bytes; hex strings are decoded as well.
type Token struct {
	Type  TokenType
	Value string
	Pos   int64
}

// Lexer tokenizes page content streams
type Lexer struct {
	reader   *bufio.Reader
	position int64
	current  byte
	hasNext  bool
	err      error
}

// NewLexer creates a new content stream lexer
func NewLexer(r io.Reader) *Lexer {
	l := &Lexer{
		reader:   bufio.NewReader(r),
		position: -1,
		hasNext:  true,
	}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if !l.hasNext {
		return
	}

	ch, err := l.reader.ReadByte()
	if err != nil {
		if err != io.EOF {
			l.err = err
		}
		l.hasNext = false
		l.current = 0
		return
	}

	l.current = ch
	l.position++
}

func (l *Lexer) peek() byte {
	if !l.hasNext {
		return 0
	}
	next, err := l.reader.Peek(1)
	if err != nil || len(next) == 0 {
		return 0
	}
	return next[0]
}

func isWhitespace(ch byte) bool {
	return ch == 0 || ch == '\t' || ch == '\n' || ch == '\f' || ch == '\r' || ch == ' '
}

func isDelimiter(ch byte) bool {
	switch ch {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isRegular(ch byte) bool {
	return !isWhitespace(ch) && !isDelimiter(ch)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for l.hasNext {
		switch {
		case isWhitespace(l.current):
			l.advance()
		case l.current == '%':
			for l.hasNext && l.current != '\n' && l.current != '\r' {
				l.advance()
			}
		default:
			return
		}
	}
}

// Next returns the next token. At the end of input it returns a TokenEOF
// token and any read error encountered.
func (l *Lexer) Next() (Token, error) {
	l.skipWhitespaceAndComments()
	if !l.hasNext {
		return Token{Type: TokenEOF, Pos: l.position}, l.err
	}

	start := l.position
	switch l.current {
	case '(':
		return Token{Type: TokenString, Value: l.readLiteralString(), Pos: start}, nil
	case '<':
		if l.peek() == '<' {
			l.advance()
			l.advance()
			return Token{Type: TokenDictStart, Value: "<<", Pos: start}, nil
		}
		return Token{Type: TokenString, Value: l.readHexString(), Pos: start}, nil
	case '>':
		l.advance()
		if l.hasNext && l.current == '>' {
			l.advance()
			return Token{Type: TokenDictEnd, Value: ">>", Pos: start}, nil
		}
		return l.Next()
	case '[':
		l.advance()
		return Token{Type: TokenArrayStart, Value: "[", Pos: start}, nil
	case ']':
		l.advance()
		return Token{Type: TokenArrayEnd, Value: "]", Pos: start}, nil
	case '{', '}', ')':
		// Stray delimiters carry no text; skip them.
		l.advance()
		return l.Next()
	case '/':
		l.advance()
		return Token{Type: TokenName, Value: l.readRegular(), Pos: start}, nil
	}

	if (l.current >= '0' && l.current <= '9') || l.current == '+' || l.current == '-' || l.current == '.' {
		return Token{Type: TokenNumber, Value: l.readRegular(), Pos: start}, nil
	}
	return Token{Type: TokenOperator, Value: l.readRegular(), Pos: start}, nil
}

func (l *Lexer) readRegular() string {
	var buf bytes.Buffer
	for l.hasNext && isRegular(l.current) {
		buf.WriteByte(l.current)
		l.advance()
	}
	return buf.String()
}

// readLiteralString reads a string enclosed in balanced parentheses,
// resolving escape sequences.
func (l *Lexer) readLiteralString() string {
	var buf bytes.Buffer

	l.advance() // opening parenthesis
	depth := 1

	for l.hasNext {
		ch := l.current
		switch ch {
		case '(':
			depth++
			buf.WriteByte(ch)
		case ')':
			depth--
			if depth == 0 {
				l.advance()
				return buf.String()
			}
			buf.WriteByte(ch)
		case '\\':
			l.advance()
			if !l.hasNext {
				return buf.String()
			}
			switch l.current {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '\r':
				// Line continuation
				if l.peek() == '\n' {
					l.advance()
				}
			case '\n':
				// Line continuation
			default:
				if l.current >= '0' && l.current <= '7' {
					octal := []byte{l.current}
					for i := 0; i < 2 && l.peek() >= '0' && l.peek() <= '7'; i++ {
						l.advance()
						octal = append(octal, l.current)
					}
					if val, err := strconv.ParseUint(string(octal), 8, 8); err == nil {
						buf.WriteByte(byte(val))
					}
				} else {
					buf.WriteByte(l.current)
				}
			}
		default:
			buf.WriteByte(ch)
		}
		l.advance()
	}

	return buf.String()
}

// readHexString reads <...> and returns the decoded bytes. Non-hex
// characters are ignored and an odd trailing digit is padded with zero.
func (l *Lexer) readHexString() string {
	var digits []byte

	l.advance() // opening angle bracket
	for l.hasNext && l.current != '>' {
		ch := l.current
		if (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F') {
			digits = append(digits, ch)
		}
		l.advance()
	}
	if l.hasNext {
		l.advance() // closing angle bracket
	}

	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	decoded := make([]byte, hex.DecodedLen(len(digits)))
	n, _ := hex.Decode(decoded, digits)
	return string(decoded[:n])
}

// SkipInlineImage consumes binary inline image data following an ID
// operator, up to and including the EI operator.
func (l *Lexer) SkipInlineImage() {
	// A single whitespace byte separates ID from the data.
	l.advance()
	var prev byte = ' '
	for l.hasNext {
		if isWhitespace(prev) && l.current == 'E' && l.peek() == 'I' {
			l.advance()
			l.advance()
			if !l.hasNext || isWhitespace(l.current) || isDelimiter(l.current) {
				return
			}
			prev = 'I'
			continue
		}
		prev = l.current
		l.advance()
	}
}
