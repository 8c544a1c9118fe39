package mcp

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/a3tai/pdf-exam-json/internal/config"
	"github.com/a3tai/pdf-exam-json/internal/convert"
	"github.com/a3tai/pdf-exam-json/internal/exam"
	"github.com/a3tai/pdf-exam-json/internal/pdf/text"
	"github.com/a3tai/pdf-exam-json/internal/pdf/text/pdftest"
)

const sampleText = `QUESTION NO: 1
Which command lists files?
A. ls
B. cd
Answer: A
QUESTION NO: 2
Which command changes directory?
A. ls
B. cd
Answer: B
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Mode = config.ModeStdio
	cfg.Directory = dir
	cfg.Version = "1.0.0"

	service := convert.NewService(zap.NewNop(), text.NewPDFCPUProvider(), text.NewValidator(cfg.MaxFileSize),
		exam.NewExtractor(exam.Options{}), convert.Options{})

	server, err := NewServer(cfg, zap.NewNop(), service)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return server, dir
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

func TestNewServer(t *testing.T) {
	server, dir := newTestServer(t)

	if server.mcpServer == nil {
		t.Error("mcpServer should be initialized")
	}
	if server.paths.Root() != dir {
		t.Errorf("paths root = %s, want %s", server.paths.Root(), dir)
	}

	if _, err := NewServer(config.DefaultConfig(), zap.NewNop(), nil); err == nil {
		t.Error("expected error for nil service")
	}

	service := convert.NewService(zap.NewNop(), text.NewPDFCPUProvider(), text.NewValidator(1),
		exam.NewExtractor(exam.Options{}), convert.Options{})
	if _, err := NewServer(&config.Config{}, zap.NewNop(), service); err == nil {
		t.Error("expected error for empty directory")
	}
}

func TestServer_HandleConvertFile(t *testing.T) {
	server, dir := newTestServer(t)
	pdftest.Write(t, dir, "linux.pdf",
		[]string{"QUESTION NO: 1", "Which command lists files?", "A. ls", "B. cd", "Answer: A"},
		[]string{"QUESTION NO: 2", "Only one option", "A. yes", "Answer: A"},
	)

	result, err := server.handleConvertFile(context.Background(), callRequest(map[string]interface{}{
		"path":  "linux.pdf",
		"title": "Linux Basics",
	}))
	if err != nil {
		t.Fatalf("handleConvertFile() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleConvertFile() tool error: %s", extractTextFromResult(result))
	}

	out := extractTextFromResult(result)
	for _, want := range []string{
		"Output: " + filepath.Join(dir, "linux.json"),
		"Title: Linux Basics",
		"Questions: 1 of 2 segments",
		"question 2: too_few_options",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("result missing %q:\n%s", want, out)
		}
	}

	e, err := convert.LoadExam(filepath.Join(dir, "linux.json"))
	if err != nil {
		t.Fatalf("LoadExam() error = %v", err)
	}
	if e.Title != "Linux Basics" || len(e.Questions) != 1 {
		t.Errorf("written exam = %+v", e)
	}
}

func TestServer_HandleConvertFileErrors(t *testing.T) {
	server, dir := newTestServer(t)
	pdftest.Write(t, dir, "cover.pdf", []string{"Welcome to the exam"})

	tests := []struct {
		name string
		args map[string]interface{}
		want string
	}{
		{name: "missing path", args: map[string]interface{}{}, want: "path"},
		{name: "outside directory", args: map[string]interface{}{"path": "../other.pdf"}, want: "outside"},
		{name: "output outside", args: map[string]interface{}{"path": "cover.pdf", "output": "/etc/x.json"}, want: "outside"},
		{name: "missing file", args: map[string]interface{}{"path": "missing.pdf"}, want: "does not exist"},
		{name: "no questions", args: map[string]interface{}{"path": "cover.pdf"}, want: "no questions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleConvertFile(context.Background(), callRequest(tt.args))
			if err != nil {
				t.Fatalf("handleConvertFile() error = %v", err)
			}
			if !result.IsError {
				t.Fatalf("expected tool error, got: %s", extractTextFromResult(result))
			}
			if got := extractTextFromResult(result); !strings.Contains(got, tt.want) {
				t.Errorf("error = %q, want it to contain %q", got, tt.want)
			}
		})
	}

	if _, err := os.Stat(filepath.Join(dir, "cover.json")); !os.IsNotExist(err) {
		t.Error("no output should be written for a document without questions")
	}
}

func TestServer_HandleExtractText(t *testing.T) {
	server, _ := newTestServer(t)

	result, err := server.handleExtractText(context.Background(), callRequest(map[string]interface{}{
		"text":  sampleText,
		"title": "Shell",
	}))
	if err != nil {
		t.Fatalf("handleExtractText() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("handleExtractText() tool error: %s", extractTextFromResult(result))
	}

	e, err := exam.Decode(strings.NewReader(extractTextFromResult(result)))
	if err != nil {
		t.Fatalf("result is not a valid exam: %v", err)
	}
	if e.Title != "Shell" || len(e.Questions) != 2 {
		t.Errorf("exam = %+v", e)
	}
	if e.Questions[1].Correct[0] != 1 {
		t.Errorf("question 2 correct = %v, want [1]", e.Questions[1].Correct)
	}

	result, _ = server.handleExtractText(context.Background(), callRequest(map[string]interface{}{"text": "nothing"}))
	if !result.IsError {
		t.Error("expected tool error for text without questions")
	}
}

func TestServer_HandleValidateFile(t *testing.T) {
	server, dir := newTestServer(t)

	valid := filepath.Join(dir, "valid.json")
	if err := convert.WriteFile(valid, exam.New("T", []exam.Question{{
		ID: 1, Type: exam.TypeSingle, Prompt: "P", Options: []string{"a", "b"}, Correct: []int{0},
	}}), convert.FormatJSON); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notitle.json"), []byte(`{"questions":[]}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	tests := []struct {
		name      string
		path      string
		want      string
		wantError bool
	}{
		{name: "valid", path: "valid.json", want: "is valid"},
		{name: "invalid", path: "notitle.json", want: "validation failed"},
		{name: "missing", path: "missing.json", wantError: true},
		{name: "outside", path: "/etc/passwd", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := server.handleValidateFile(context.Background(), callRequest(map[string]interface{}{"path": tt.path}))
			if err != nil {
				t.Fatalf("handleValidateFile() error = %v", err)
			}
			if result.IsError != tt.wantError {
				t.Fatalf("IsError = %v, want %v: %s", result.IsError, tt.wantError, extractTextFromResult(result))
			}
			if tt.want != "" && !strings.Contains(extractTextFromResult(result), tt.want) {
				t.Errorf("result = %q, want it to contain %q", extractTextFromResult(result), tt.want)
			}
		})
	}
}

func TestServer_HandleListPDFs(t *testing.T) {
	server, dir := newTestServer(t)

	result, _ := server.handleListPDFs(context.Background(), callRequest(map[string]interface{}{}))
	if !strings.Contains(extractTextFromResult(result), "No PDF files found") {
		t.Errorf("unexpected result for empty directory: %s", extractTextFromResult(result))
	}

	pdftest.Write(t, dir, "a.pdf", []string{"x"})
	if err := os.MkdirAll(filepath.Join(dir, "sub"), 0o750); err != nil {
		t.Fatal(err)
	}
	pdftest.Write(t, filepath.Join(dir, "sub"), "b.pdf", []string{"y"})

	result, _ = server.handleListPDFs(context.Background(), callRequest(map[string]interface{}{}))
	out := extractTextFromResult(result)
	if !strings.Contains(out, "Found 2 PDF file(s)") || !strings.Contains(out, filepath.Join("sub", "b.pdf")) {
		t.Errorf("unexpected listing: %s", out)
	}

	result, _ = server.handleListPDFs(context.Background(), callRequest(map[string]interface{}{"directory": "sub"}))
	if !strings.Contains(extractTextFromResult(result), "Found 1 PDF file(s)") {
		t.Errorf("unexpected listing for sub: %s", extractTextFromResult(result))
	}

	result, _ = server.handleListPDFs(context.Background(), callRequest(map[string]interface{}{"directory": "/"}))
	if !result.IsError {
		t.Error("expected error for directory outside the root")
	}
}

// Helper function to extract text from a CallToolResult
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
