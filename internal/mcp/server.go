package mcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/a3tai/pdf-exam-json/internal/config"
	"github.com/a3tai/pdf-exam-json/internal/convert"
	"github.com/a3tai/pdf-exam-json/internal/descriptions"
	"github.com/a3tai/pdf-exam-json/internal/exam"
	"github.com/a3tai/pdf-exam-json/internal/pdf/security"
	"github.com/a3tai/pdf-exam-json/internal/pdf/text"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	logger    *zap.Logger
	service   *convert.Service
	paths     *security.PathValidator
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, logger *zap.Logger, service *convert.Service) (*Server, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}

	paths, err := security.NewPathValidator(cfg.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false),
	)

	s := &Server{
		config:    cfg,
		logger:    logger,
		service:   service,
		paths:     paths,
		mcpServer: mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	convertFileTool := mcp.NewTool(
		"exam_convert_file",
		mcp.WithDescription(descriptions.ExamConvertFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file, absolute or relative to the server directory"),
		),
		mcp.WithString("output",
			mcp.Description("Output file path (defaults to the PDF path with its extension replaced)"),
		),
		mcp.WithString("title",
			mcp.Description("Exam title (defaults to the configured title)"),
		),
	)
	s.mcpServer.AddTool(convertFileTool, s.handleConvertFile)

	extractTextTool := mcp.NewTool(
		"exam_extract_text",
		mcp.WithDescription(descriptions.ExamExtractTextDescription),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Plain text of the exam, one question per QUESTION NO: marker"),
		),
		mcp.WithString("title",
			mcp.Description("Exam title (defaults to the configured title)"),
		),
	)
	s.mcpServer.AddTool(extractTextTool, s.handleExtractText)

	validateFileTool := mcp.NewTool(
		"exam_validate_file",
		mcp.WithDescription(descriptions.ExamValidateFileDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the JSON exam file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	listPDFsTool := mcp.NewTool(
		"exam_list_pdfs",
		mcp.WithDescription(descriptions.ExamListPDFsDescription),
		mcp.WithString("directory",
			mcp.Description("Directory to search (uses the server directory if empty)"),
		),
	)
	s.mcpServer.AddTool(listPDFsTool, s.handleListPDFs)
}

func (s *Server) handleConvertFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	args := request.GetArguments()

	input, err := s.paths.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := convert.Request{Input: input}
	if out, ok := args["output"].(string); ok && out != "" {
		if req.Output, err = s.paths.Resolve(out); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	} else {
		// The default output sits next to the input and must stay inside too.
		if _, err := s.paths.Resolve(convert.DefaultOutputPath(input, s.service.Options().OutputExt)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if title, ok := args["title"].(string); ok {
		req.Title = title
	}

	result, err := s.service.Convert(ctx, req)
	if err != nil {
		s.logger.Warn("Conversion failed", zap.String("input", input), zap.Error(err))
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatConvertResult(result)), nil
}

func (s *Server) handleExtractText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	title := ""
	if t, ok := request.GetArguments()["title"].(string); ok {
		title = t
	}

	result, err := s.service.ConvertText(raw, title)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := convert.Encode(&buf, result.Exam, convert.FormatJSON); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(buf.String()), nil
}

func (s *Server) handleValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	resolved, err := s.paths.Resolve(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	e, err := convert.LoadExam(resolved)
	if err != nil {
		var verr *exam.ValidationError
		if errors.As(err, &verr) || errors.Is(err, exam.ErrInvalidJSON) {
			return mcp.NewToolResultText(fmt.Sprintf("Exam validation failed for %s: %s", resolved, err)), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Exam file %s is valid: %q with %d question(s)",
		resolved, e.Title, len(e.Questions))), nil
}

func (s *Server) handleListPDFs(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	directory := s.paths.Root()
	if dir, ok := request.GetArguments()["directory"].(string); ok && dir != "" {
		resolved, err := s.paths.Resolve(dir)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		directory = resolved
	}

	files, err := text.FindPDFs(directory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(files) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No PDF files found in directory: %s", directory)), nil
	}

	responseText := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", len(files), directory)
	for i, file := range files {
		rel, err := filepath.Rel(directory, file)
		if err != nil {
			rel = file
		}
		responseText += fmt.Sprintf("%d. %s\n", i+1, rel)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) formatConvertResult(result *convert.Result) string {
	report := result.Report

	out := fmt.Sprintf("Converted %s\n", result.Input)
	out += fmt.Sprintf("Output: %s\n", result.Output)
	out += fmt.Sprintf("Title: %s\n", result.Exam.Title)
	out += fmt.Sprintf("Provider: %s (%d pages)\n", result.Provider, result.Pages)
	out += fmt.Sprintf("Questions: %d of %d segments\n", report.Accepted, report.Segments)

	if len(report.Rejections) > 0 {
		out += "\nRejected:\n"
		for _, r := range report.Rejections {
			out += fmt.Sprintf("  - question %d: %s\n", r.ID, r.Reason)
		}
	}
	if len(report.Warnings) > 0 {
		out += "\nWarnings:\n"
		for _, w := range report.Warnings {
			out += fmt.Sprintf("  - question %d: %s\n", w.ID, w.Message)
		}
	}

	return out
}

// Run serves MCP over stdio until the client disconnects
func (s *Server) Run(_ context.Context) error {
	s.logger.Info("Starting exam MCP server in stdio mode",
		zap.String("directory", s.paths.Root()),
		zap.String("version", s.config.Version))

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
