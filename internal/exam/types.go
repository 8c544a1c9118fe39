package exam

// QuestionType tags how many options a question expects to be selected.
type QuestionType string

const (
	// TypeSingle is the only type produced by the extractor.
	TypeSingle   QuestionType = "single"
	TypeMultiple QuestionType = "multiple"
	TypeText     QuestionType = "text"
)

// Question is one extracted exam question in the player's JSON layout.
type Question struct {
	ID          int          `json:"id" yaml:"id"`
	Type        QuestionType `json:"type" yaml:"type"`
	Prompt      string       `json:"question" yaml:"question"`
	Options     []string     `json:"options" yaml:"options"`
	Correct     []int        `json:"correct" yaml:"correct"`
	Explanation *string      `json:"explanation" yaml:"explanation"`
}

// Exam is the titled, ordered question set produced for one document.
type Exam struct {
	Title     string     `json:"title" yaml:"title"`
	Questions []Question `json:"questions" yaml:"questions"`
}

// New builds an Exam, substituting an empty slice for nil so that the
// serialized form always carries a questions array.
func New(title string, questions []Question) *Exam {
	if questions == nil {
		questions = []Question{}
	}
	return &Exam{Title: title, Questions: questions}
}

// AnswerPolicy decides what happens when the answer letter points past the
// last extracted option.
type AnswerPolicy string

const (
	// PolicyPreserve emits the raw letter offset and records a warning.
	PolicyPreserve AnswerPolicy = "preserve"
	// PolicyReject drops the block.
	PolicyReject AnswerPolicy = "reject"
	// PolicyClamp pins the index to the last option and records a warning.
	PolicyClamp AnswerPolicy = "clamp"
)

// ParseAnswerPolicy maps a config string onto a policy.
func ParseAnswerPolicy(s string) (AnswerPolicy, bool) {
	switch p := AnswerPolicy(s); p {
	case PolicyPreserve, PolicyReject, PolicyClamp:
		return p, true
	case "":
		return PolicyPreserve, true
	default:
		return "", false
	}
}

// RejectReason names the stage that dropped a block.
type RejectReason string

const (
	ReasonInvalidID        RejectReason = "invalid_id"
	ReasonNoOptions        RejectReason = "no_options"
	ReasonTooFewOptions    RejectReason = "too_few_options"
	ReasonNoAnswer         RejectReason = "no_answer"
	ReasonAnswerOutOfRange RejectReason = "answer_out_of_range"
)

// Rejection records a dropped block.
type Rejection struct {
	ID     int          `json:"id"`
	Reason RejectReason `json:"reason"`
}

// Warning records an emitted question that needed attention.
type Warning struct {
	ID      int    `json:"id"`
	Message string `json:"message"`
}

// Report summarizes one extraction pass. It is informational only; the
// extractor never fails.
type Report struct {
	Segments   int         `json:"segments"`
	Accepted   int         `json:"accepted"`
	Rejections []Rejection `json:"rejections,omitempty"`
	Warnings   []Warning   `json:"warnings,omitempty"`
}

// Rejected returns the number of dropped blocks.
func (r *Report) Rejected() int {
	return len(r.Rejections)
}

func (r *Report) reject(id int, reason RejectReason) {
	r.Rejections = append(r.Rejections, Rejection{ID: id, Reason: reason})
}

func (r *Report) warn(id int, msg string) {
	r.Warnings = append(r.Warnings, Warning{ID: id, Message: msg})
}
