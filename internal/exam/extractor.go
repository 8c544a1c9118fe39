package exam

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultMarker introduces every question in the source text.
	DefaultMarker = "QUESTION NO:"

	answerLabel      = "Answer:"
	explanationLabel = "Explanation:"
)

// Options configures an Extractor.
type Options struct {
	// Marker is the literal token preceding each question number.
	Marker string
	// AnswerPolicy handles answer letters beyond the extracted options.
	AnswerPolicy AnswerPolicy
}

// Extractor turns the flat text of an exam document into questions. It holds
// no mutable state and may be shared between goroutines.
type Extractor struct {
	marker string
	policy AnswerPolicy
}

// NewExtractor creates an extractor, filling unset options with defaults.
func NewExtractor(opts Options) *Extractor {
	if opts.Marker == "" {
		opts.Marker = DefaultMarker
	}
	if opts.AnswerPolicy == "" {
		opts.AnswerPolicy = PolicyPreserve
	}
	return &Extractor{marker: opts.Marker, policy: opts.AnswerPolicy}
}

var defaultExtractor = NewExtractor(Options{})

// Extract runs the default extractor over text.
func Extract(text string) []Question {
	return defaultExtractor.Extract(text)
}

// Extract returns the questions found in text, in document order.
func (e *Extractor) Extract(text string) []Question {
	questions, _ := e.ExtractWithReport(text)
	return questions
}

// ExtractWithReport is Extract plus a summary of dropped blocks and warnings.
func (e *Extractor) ExtractWithReport(text string) ([]Question, *Report) {
	report := &Report{}
	questions := []Question{}

	for _, seg := range e.segments(text) {
		report.Segments++
		if seg.idErr != nil {
			report.reject(0, ReasonInvalidID)
			continue
		}
		q, reason := e.parseBlock(seg.id, seg.body, report)
		if reason != "" {
			report.reject(seg.id, reason)
			continue
		}
		questions = append(questions, q)
	}

	report.Accepted = len(questions)
	return questions, report
}

type segment struct {
	id    int
	idErr error
	body  string
}

// segments splits text at each marker. Text before the first marker is
// dropped; each body runs up to the next marker or the end of input.
func (e *Extractor) segments(text string) []segment {
	var segs []segment

	_, digits, end, ok := e.nextMarker(text, 0)
	for ok {
		nextStart, nextDigits, nextEnd, nextOK := e.nextMarker(text, end)

		bodyEnd := len(text)
		if nextOK {
			bodyEnd = nextStart
		}

		id, err := strconv.Atoi(digits)
		segs = append(segs, segment{id: id, idErr: err, body: text[end:bodyEnd]})

		digits, end, ok = nextDigits, nextEnd, nextOK
	}

	return segs
}

// nextMarker finds the first marker at or after from: the marker token, any
// run of whitespace, then one or more ASCII digits. It reports the marker's
// start offset, the digits and the offset just past them.
func (e *Extractor) nextMarker(text string, from int) (int, string, int, bool) {
	for from <= len(text) {
		idx := strings.Index(text[from:], e.marker)
		if idx < 0 {
			return 0, "", 0, false
		}
		start := from + idx

		pos := skipSpace(text, start+len(e.marker))
		digitsEnd := pos
		for digitsEnd < len(text) && text[digitsEnd] >= '0' && text[digitsEnd] <= '9' {
			digitsEnd++
		}
		if digitsEnd > pos {
			return start, text[pos:digitsEnd], digitsEnd, true
		}

		from = start + 1
	}
	return 0, "", 0, false
}

func skipSpace(s string, pos int) int {
	for pos < len(s) {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if !unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

type lineKind int

const (
	linePlain lineKind = iota
	lineBlank
	lineOption
	lineAnswer
	lineExplanation
)

// classify sorts a line by its leading content. Leading whitespace is
// ignored for every labelled kind; only an empty line is blank, a line of
// spaces is plain text.
func classify(line string) (lineKind, string) {
	s := strings.TrimLeftFunc(line, unicode.IsSpace)
	switch {
	case line == "":
		return lineBlank, ""
	case s == "":
		return linePlain, s
	case len(s) >= 2 && s[0] >= 'A' && s[0] <= 'D' && s[1] == '.':
		return lineOption, s[2:]
	case strings.HasPrefix(s, answerLabel):
		return lineAnswer, s
	case strings.HasPrefix(s, explanationLabel):
		return lineExplanation, s
	default:
		return linePlain, s
	}
}

// parseBlock extracts one question from the text following a marker. A
// non-empty reason means the block was rejected.
func (e *Extractor) parseBlock(id int, body string, report *Report) (Question, RejectReason) {
	lines := strings.Split(body, "\n")
	kinds := make([]lineKind, len(lines))
	rests := make([]string, len(lines))
	for i, line := range lines {
		if i == 0 {
			// The remainder of the marker line always belongs to the prompt.
			kinds[i] = linePlain
			continue
		}
		kinds[i], rests[i] = classify(line)
	}

	first := -1
	for i, k := range kinds {
		if k == lineOption {
			first = i
			break
		}
	}
	if first < 0 {
		return Question{}, ReasonNoOptions
	}
	prompt := strings.TrimSpace(strings.Join(lines[:first], "\n"))

	options := collectOptions(lines, kinds, rests, first)
	if len(options) < 2 {
		return Question{}, ReasonTooFewOptions
	}

	letter, ok := findAnswer(body)
	if !ok {
		return Question{}, ReasonNoAnswer
	}

	index := int(letter - 'A')
	if index >= len(options) {
		switch e.policy {
		case PolicyReject:
			return Question{}, ReasonAnswerOutOfRange
		case PolicyClamp:
			report.warn(id, fmt.Sprintf("answer %c clamped to option %d of %d", letter, len(options), len(options)))
			index = len(options) - 1
		default:
			report.warn(id, fmt.Sprintf("answer %c is outside %d extracted options", letter, len(options)))
		}
	}

	// Both are kept as found, but Validate rejects them.
	if id == 0 {
		report.warn(id, "question id 0 will not pass validation")
	}
	if prompt == "" {
		report.warn(id, "empty prompt will not pass validation")
	}

	return Question{
		ID:          id,
		Type:        TypeSingle,
		Prompt:      prompt,
		Options:     options,
		Correct:     []int{index},
		Explanation: e.findExplanation(body),
	}, ""
}

// collectOptions gathers every option starting at line first. An option
// continues over plain and explanation lines and ends at an empty line, the
// next option marker or an answer line.
func collectOptions(lines []string, kinds []lineKind, rests []string, first int) []string {
	var options []string
	for i := first; i < len(lines); i++ {
		if kinds[i] != lineOption {
			continue
		}

		var b strings.Builder
		b.WriteString(rests[i])
		j := i + 1
		for ; j < len(lines) && continuesOption(kinds[j]); j++ {
			b.WriteByte('\n')
			b.WriteString(lines[j])
		}
		options = append(options, strings.TrimSpace(b.String()))
		i = j - 1
	}
	return options
}

func continuesOption(k lineKind) bool {
	return k == linePlain || k == lineExplanation
}

// findAnswer returns the letter of the first "Answer:" label followed by
// optional whitespace and A-D.
func findAnswer(body string) (byte, bool) {
	from := 0
	for {
		idx := strings.Index(body[from:], answerLabel)
		if idx < 0 {
			return 0, false
		}
		pos := skipSpace(body, from+idx+len(answerLabel))
		if pos < len(body) && body[pos] >= 'A' && body[pos] <= 'D' {
			return body[pos], true
		}
		from += idx + len(answerLabel)
	}
}

// findExplanation returns the collapsed text after the first "Explanation:"
// label, or nil when there is none.
func (e *Extractor) findExplanation(body string) *string {
	idx := strings.Index(body, explanationLabel)
	if idx < 0 {
		return nil
	}
	rest := body[idx+len(explanationLabel):]
	if end := strings.Index(rest, e.marker); end >= 0 {
		rest = rest[:end]
	}

	text := strings.Join(strings.Fields(rest), " ")
	if text == "" {
		return nil
	}
	return &text
}
