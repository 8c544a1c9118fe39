package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"go.uber.org/zap"

	"github.com/a3tai/pdf-exam-json/internal/config"
	"github.com/a3tai/pdf-exam-json/internal/convert"
	"github.com/a3tai/pdf-exam-json/internal/exam"
	"github.com/a3tai/pdf-exam-json/internal/logger"
	"github.com/a3tai/pdf-exam-json/internal/mcp"
	"github.com/a3tai/pdf-exam-json/internal/pdf/text"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// Check for version flag before parsing other flags
	if versionRequested(os.Args[1:]) {
		printVersion(os.Stdout)
		return
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if version != "dev" {
		cfg.Version = version
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Debug("Starting", zap.String("config", cfg.String()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Stdout); err != nil {
		log.Error("Conversion failed", zap.Error(err))
		stop()
		_ = log.Sync()
		os.Exit(1)
	}
}

// run executes the configured mode, writing user-facing output to stdout.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, stdout io.Writer) error {
	if cfg.Mode == config.ModeValidate {
		return runValidate(cfg, stdout)
	}

	service, err := newService(cfg, log)
	if err != nil {
		return err
	}

	switch {
	case cfg.IsStdioMode():
		server, err := mcp.NewServer(cfg, log, service)
		if err != nil {
			return fmt.Errorf("failed to create MCP server: %w", err)
		}
		return server.Run(ctx)
	case cfg.IsBatch():
		return runBatch(ctx, cfg, service, stdout)
	default:
		return runConvert(ctx, cfg, service, stdout)
	}
}

// newService wires the first available text provider, the extractor and
// the conversion defaults.
func newService(cfg *config.Config, log *zap.Logger) (*convert.Service, error) {
	selector, err := text.NewSelector(cfg.Backends)
	if err != nil {
		return nil, fmt.Errorf("invalid backend list: %w", err)
	}

	provider, err := selector.Select()
	if err != nil {
		return nil, err
	}
	log.Debug("Selected text provider", zap.String("provider", provider.Name()))

	policy, ok := exam.ParseAnswerPolicy(cfg.AnswerPolicy)
	if !ok {
		return nil, fmt.Errorf("invalid answer policy: %s", cfg.AnswerPolicy)
	}

	pages, err := text.ParsePageRanges(cfg.Pages)
	if err != nil {
		return nil, err
	}

	extractor := exam.NewExtractor(exam.Options{
		Marker:       cfg.Marker,
		AnswerPolicy: policy,
	})

	return convert.NewService(log, provider, text.NewValidator(cfg.MaxFileSize), extractor, convert.Options{
		Format:  cfg.Format,
		Shuffle: cfg.Shuffle,
		Seed:    cfg.Seed,
		Workers: cfg.Workers,
		Pages:   pages,
	}), nil
}

func runConvert(ctx context.Context, cfg *config.Config, service *convert.Service, stdout io.Writer) error {
	result, err := service.Convert(ctx, convert.Request{
		Input:  cfg.Input,
		Output: cfg.Output,
		Title:  cfg.Title,
	})
	if err != nil {
		return err
	}

	printResult(stdout, result)
	return nil
}

func runBatch(ctx context.Context, cfg *config.Config, service *convert.Service, stdout io.Writer) error {
	files, err := text.FindPDFs(cfg.Directory)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no PDF files found in %s", cfg.Directory)
	}

	reqs := make([]convert.Request, len(files))
	for i, file := range files {
		reqs[i] = convert.Request{Input: file, Title: cfg.Title}
	}

	outcomes, err := service.ConvertAll(ctx, reqs)
	if err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
			fmt.Fprintf(stdout, "FAILED %s: %v\n", o.Request.Input, o.Err)
			continue
		}
		printResult(stdout, o.Result)
	}

	fmt.Fprintf(stdout, "Converted %d of %d file(s)\n", len(outcomes)-failed, len(outcomes))
	if failed > 0 {
		return fmt.Errorf("%d of %d file(s) failed", failed, len(outcomes))
	}
	return nil
}

func runValidate(cfg *config.Config, stdout io.Writer) error {
	e, err := convert.LoadExam(cfg.Input)
	if err != nil {
		var verr *exam.ValidationError
		if errors.As(err, &verr) || errors.Is(err, exam.ErrInvalidJSON) {
			fmt.Fprintf(stdout, "INVALID %s: %v\n", cfg.Input, err)
		}
		return err
	}

	fmt.Fprintf(stdout, "OK %s: %q with %d question(s)\n", cfg.Input, e.Title, len(e.Questions))
	return nil
}

func printResult(w io.Writer, result *convert.Result) {
	fmt.Fprintf(w, "Converted %s -> %s (%d question(s)", result.Input, result.Output, len(result.Exam.Questions))
	if n := result.Report.Rejected(); n > 0 {
		fmt.Fprintf(w, ", %d rejected", n)
	}
	if n := len(result.Report.Warnings); n > 0 {
		fmt.Fprintf(w, ", %d warning(s)", n)
	}
	fmt.Fprintln(w, ")")
}

// versionRequested reports whether args ask for the version instead of a run.
func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "PDF Exam JSON\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
