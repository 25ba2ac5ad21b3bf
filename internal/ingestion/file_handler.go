package ingestion

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"go.uber.org/zap"
)

// DefaultMaxFiles is the largest number of resumes accepted in one batch
const DefaultMaxFiles = 15

// ProgressFunc is called after each file is read
type ProgressFunc func(done, total int, name string)

// Placeholder is the resume text substituted for a file that could not be read
func Placeholder(name string) string {
	return fmt.Sprintf("[Error processing file: %s]", name)
}

// FileHandler stores uploaded resumes and turns them into candidate inputs
type FileHandler struct {
	uploadsDir string
	maxFiles   int
	logger     *zap.Logger
}

// NewFileHandler creates a new file handler
func NewFileHandler(uploadsDir string, maxFiles int, log *zap.Logger) *FileHandler {
	if maxFiles <= 0 {
		maxFiles = DefaultMaxFiles
	}
	return &FileHandler{
		uploadsDir: uploadsDir,
		maxFiles:   maxFiles,
		logger:     logger.OrNop(log),
	}
}

// UploadsDir returns the directory uploads are saved to
func (fh *FileHandler) UploadsDir() string {
	return fh.uploadsDir
}

// MaxFiles returns the batch size limit
func (fh *FileHandler) MaxFiles() int {
	return fh.maxFiles
}

// CheckCount validates the number of files in a batch
func (fh *FileHandler) CheckCount(n int) error {
	if n == 0 {
		return models.ErrNoResumes
	}
	if n > fh.maxFiles {
		return fmt.Errorf("%w: %d files, at most %d allowed", models.ErrTooManyFiles, n, fh.maxFiles)
	}
	return nil
}

// SaveUploadedFile saves an uploaded file to the uploads directory. Only the
// base name of filename is used.
func (fh *FileHandler) SaveUploadedFile(filename string, content io.Reader) (string, error) {
	name := filepath.Base(filepath.Clean("/" + filename))
	if name == "/" || name == "." {
		return "", fmt.Errorf("invalid file name: %q", filename)
	}

	if err := os.MkdirAll(fh.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	filePath := filepath.Join(fh.uploadsDir, name)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, content); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return filePath, nil
}

// ListUploads returns the supported files in the uploads directory, sorted by name
func (fh *FileHandler) ListUploads() ([]string, error) {
	entries, err := os.ReadDir(fh.uploadsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read uploads directory: %w", err)
	}

	paths := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !IsSupported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(fh.uploadsDir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// LoadResumes reads the given files in order. A file that cannot be read
// becomes a placeholder resume so the rest of the batch is still scored.
func (fh *FileHandler) LoadResumes(ctx context.Context, paths []string, progress ProgressFunc) ([]models.CandidateInput, error) {
	if err := fh.CheckCount(len(paths)); err != nil {
		return nil, err
	}

	inputs := make([]models.CandidateInput, 0, len(paths))
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(path)
		text, err := ExtractText(path)
		if err != nil {
			fh.logger.Warn("failed to extract resume text",
				zap.String(logger.FieldFile, name),
				zap.Error(err),
			)
			text = Placeholder(name)
		}
		inputs = append(inputs, models.CandidateInput{
			Label:      name,
			ResumeText: strings.TrimSpace(text),
			SourcePath: path,
		})

		if progress != nil {
			progress(i+1, len(paths), name)
		}
	}

	return inputs, nil
}

// ClearUploads removes all files from the uploads directory
func (fh *FileHandler) ClearUploads() error {
	if err := os.RemoveAll(fh.uploadsDir); err != nil {
		return fmt.Errorf("failed to clear uploads directory: %w", err)
	}
	return os.MkdirAll(fh.uploadsDir, 0o755)
}
