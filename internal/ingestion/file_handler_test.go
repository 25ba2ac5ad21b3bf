package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileHandler(t *testing.T) {
	fh := NewFileHandler("test_uploads", 0, nil)
	require.NotNil(t, fh)

	assert.Equal(t, "test_uploads", fh.UploadsDir())
	assert.Equal(t, DefaultMaxFiles, fh.MaxFiles())
}

func TestSaveUploadedFile(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	fh := NewFileHandler(tmpDir, 0, nil)

	path, err := fh.SaveUploadedFile("test_cv.txt", strings.NewReader("Test CV content"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "test_cv.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Test CV content", string(data))
}

func TestSaveUploadedFile_StripsDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	fh := NewFileHandler(tmpDir, 0, nil)

	path, err := fh.SaveUploadedFile("../../escape.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "escape.txt"), path)

	_, err = fh.SaveUploadedFile("", strings.NewReader("x"))
	assert.Error(t, err)
}

func TestCheckCount(t *testing.T) {
	fh := NewFileHandler(t.TempDir(), 3, nil)

	assert.ErrorIs(t, fh.CheckCount(0), models.ErrNoResumes)
	assert.NoError(t, fh.CheckCount(3))
	assert.ErrorIs(t, fh.CheckCount(4), models.ErrTooManyFiles)
}

func TestLoadResumes(t *testing.T) {
	tmpDir := t.TempDir()
	good := filepath.Join(tmpDir, "a.txt")
	bad := filepath.Join(tmpDir, "b.pdf")
	missing := filepath.Join(tmpDir, "c.txt")
	require.NoError(t, os.WriteFile(good, []byte("  Python, 4 years of experience \n"), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("not really a pdf"), 0o644))

	fh := NewFileHandler(tmpDir, 0, nil)

	var seen []string
	inputs, err := fh.LoadResumes(context.Background(), []string{good, bad, missing}, func(done, total int, name string) {
		seen = append(seen, fmt.Sprintf("%d/%d %s", done, total, name))
	})
	require.NoError(t, err)
	require.Len(t, inputs, 3)

	assert.Equal(t, "Python, 4 years of experience", inputs[0].ResumeText)
	assert.Equal(t, "a.txt", inputs[0].Label)
	assert.Equal(t, good, inputs[0].SourcePath)
	assert.Equal(t, "[Error processing file: b.pdf]", inputs[1].ResumeText)
	assert.Equal(t, "[Error processing file: c.txt]", inputs[2].ResumeText)
	assert.Equal(t, []string{"1/3 a.txt", "2/3 b.pdf", "3/3 c.txt"}, seen)
}

func TestLoadResumes_Limits(t *testing.T) {
	fh := NewFileHandler(t.TempDir(), 2, nil)

	_, err := fh.LoadResumes(context.Background(), nil, nil)
	assert.True(t, errors.Is(err, models.ErrNoResumes))

	_, err = fh.LoadResumes(context.Background(), []string{"a", "b", "c"}, nil)
	assert.True(t, errors.Is(err, models.ErrTooManyFiles))
}

func TestLoadResumes_Cancelled(t *testing.T) {
	fh := NewFileHandler(t.TempDir(), 0, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fh.LoadResumes(ctx, []string{"a.txt"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestListUploads(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"b.pdf", "a.txt", "notes.md", "c.docx"} {
		require.NoError(t, os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(tmpDir, "dir.txt"), 0o755))

	paths, err := NewFileHandler(tmpDir, 0, nil).ListUploads()
	require.NoError(t, err)

	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.Equal(t, []string{"a.txt", "b.pdf", "c.docx"}, names)

	paths, err = NewFileHandler(filepath.Join(tmpDir, "missing"), 0, nil).ListUploads()
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestClearUploads(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "uploads")
	require.NoError(t, os.MkdirAll(tmpDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test.txt"), []byte("test"), 0o644))

	fh := NewFileHandler(tmpDir, 0, nil)
	require.NoError(t, fh.ClearUploads())

	entries, err := os.ReadDir(tmpDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
