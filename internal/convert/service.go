// Package convert turns PDF exam documents into question files.
package convert

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/pdf-exam-json/internal/exam"
	"github.com/a3tai/pdf-exam-json/internal/pdf/text"
)

// DefaultTitle is used when neither the request nor the options name the exam.
const DefaultTitle = "Exam"

// ErrNoQuestions is returned when a document yields no acceptable question.
var ErrNoQuestions = errors.New("no questions extracted")

// Options holds the defaults applied to every conversion.
type Options struct {
	DefaultTitle string
	OutputExt    string
	Format       string
	Shuffle      bool
	Seed         int64
	Workers      int

	// Pages restricts extraction to these page ranges. Nil reads every page.
	Pages []text.PageRange
}

// Request names one document to convert. Empty Output and Title fall back
// to the service defaults.
type Request struct {
	Input  string `json:"input"`
	Output string `json:"output,omitempty"`
	Title  string `json:"title,omitempty"`
}

// Result describes a finished conversion.
type Result struct {
	RunID    string       `json:"run_id"`
	Input    string       `json:"input,omitempty"`
	Output   string       `json:"output,omitempty"`
	Provider string       `json:"provider,omitempty"`
	Pages    int          `json:"pages"`
	Exam     *exam.Exam   `json:"exam"`
	Report   *exam.Report `json:"report"`
}

// Outcome pairs a batch request with its result or error.
type Outcome struct {
	Request Request
	Result  *Result
	Err     error
}

// Service runs conversions with a fixed provider and extractor.
type Service struct {
	logger    *zap.Logger
	provider  text.Provider
	validator *text.Validator
	extractor *exam.Extractor
	opts      Options
}

// NewService creates a conversion service. Zero option fields take the
// package defaults.
func NewService(logger *zap.Logger, provider text.Provider, validator *text.Validator,
	extractor *exam.Extractor, opts Options,
) *Service {
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = DefaultTitle
	}
	if opts.Format == "" {
		opts.Format = FormatJSON
	}
	if opts.OutputExt == "" {
		opts.OutputExt = ExtFor(opts.Format)
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}

	return &Service{
		logger:    logger,
		provider:  provider,
		validator: validator,
		extractor: extractor,
		opts:      opts,
	}
}

// Options returns the effective options.
func (s *Service) Options() Options {
	return s.opts
}

// Convert extracts the questions of one PDF and writes them to the
// request's output path. No file is written when the document yields no
// question.
func (s *Service) Convert(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	log := s.logger.With(zap.String("run_id", runID), zap.String("input", req.Input))

	if err := s.validator.ValidateFile(req.Input); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	log.Debug("Extracting text", zap.String("provider", s.provider.Name()))
	doc, err := s.provider.ExtractText(ctx, req.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from %s: %w", req.Input, err)
	}
	log.Debug("Text extracted",
		zap.Int("pages", doc.Pages),
		zap.Int("chars", len(doc.Text)))

	if len(s.opts.Pages) > 0 {
		if doc, err = doc.SelectPages(s.opts.Pages); err != nil {
			return nil, fmt.Errorf("failed to select pages of %s: %w", req.Input, err)
		}
		log.Debug("Pages selected", zap.Int("pages", doc.Pages))
	}

	result, err := s.build(log, runID, doc.Text, req.Title)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req.Input, err)
	}
	result.Input = req.Input
	result.Provider = doc.Provider
	result.Pages = doc.Pages

	output := req.Output
	if output == "" {
		output = DefaultOutputPath(req.Input, s.opts.OutputExt)
	}
	if err := WriteFile(output, result.Exam, s.opts.Format); err != nil {
		return nil, err
	}
	result.Output = output

	log.Info("Exam written",
		zap.String("output", output),
		zap.Int("questions", len(result.Exam.Questions)),
		zap.Int("rejected", result.Report.Rejected()),
		zap.Int("warnings", len(result.Report.Warnings)))

	return result, nil
}

// ConvertText extracts questions from already acquired text without
// touching the filesystem.
func (s *Service) ConvertText(raw, title string) (*Result, error) {
	runID := uuid.NewString()
	return s.build(s.logger.With(zap.String("run_id", runID)), runID, raw, title)
}

// ConvertAll converts independent documents concurrently, bounded by the
// configured worker count. Per-document failures are reported in the
// outcomes; the returned error is set only when ctx is cancelled.
func (s *Service) ConvertAll(ctx context.Context, reqs []Request) ([]Outcome, error) {
	outcomes := make([]Outcome, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, req := range reqs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				outcomes[i] = Outcome{Request: req, Err: err}
				return err
			}

			result, err := s.Convert(gctx, req)
			outcomes[i] = Outcome{Request: req, Result: result, Err: err}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("Conversion failed", zap.String("input", req.Input), zap.Error(err))
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (s *Service) build(log *zap.Logger, runID, raw, title string) (*Result, error) {
	questions, report := s.extractor.ExtractWithReport(raw)

	for _, r := range report.Rejections {
		log.Debug("Question rejected", zap.Int("id", r.ID), zap.String("reason", string(r.Reason)))
	}
	for _, w := range report.Warnings {
		log.Warn("Question accepted with warning", zap.Int("id", w.ID), zap.String("warning", w.Message))
	}

	if len(questions) == 0 {
		return nil, fmt.Errorf("%w (segments: %d, rejected: %d)",
			ErrNoQuestions, report.Segments, report.Rejected())
	}

	if title == "" {
		title = s.opts.DefaultTitle
	}
	result := &Result{
		RunID:  runID,
		Exam:   exam.New(title, questions),
		Report: report,
	}

	if s.opts.Shuffle {
		seed := s.opts.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		result.Exam = exam.Shuffle(result.Exam, rand.New(rand.NewSource(seed)))
	}

	return result, nil
}
