package text

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidator_ValidateFile(t *testing.T) {
	dir := t.TempDir()

	write := func(name string, size int) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, make([]byte, size), 0o644))
		return path
	}

	valid := write("exam.pdf", 10)
	upper := write("EXAM2.PDF", 10)
	empty := write("empty.pdf", 0)
	large := write("large.pdf", 200)
	notPDF := write("notes.txt", 10)

	v := NewValidator(100)

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "valid", path: valid},
		{name: "upper case extension", path: upper},
		{name: "empty path", path: "", wantErr: "path cannot be empty"},
		{name: "missing", path: filepath.Join(dir, "missing.pdf"), wantErr: "file does not exist"},
		{name: "directory", path: dir, wantErr: "is a directory"},
		{name: "not a pdf", path: notPDF, wantErr: "not a PDF"},
		{name: "empty file", path: empty, wantErr: "file is empty"},
		{name: "too large", path: large, wantErr: "file too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateFile(tt.path)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFindPDFs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b.pdf",
		"a.PDF",
		"notes.txt",
		filepath.Join("nested", "c.pdf"),
		filepath.Join(".hidden", "d.pdf"),
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	}

	files, err := FindPDFs(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PDF"),
		filepath.Join(dir, "b.pdf"),
		filepath.Join(dir, "nested", "c.pdf"),
	}, files)

	_, err = FindPDFs("")
	assert.Error(t, err)

	_, err = FindPDFs(filepath.Join(dir, "b.pdf"))
	assert.Error(t, err)

	_, err = FindPDFs(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
