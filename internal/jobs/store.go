// Package jobs persists job postings in a JSON file.
package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/logger"
	"github.com/ashimXtimila/Aqore-AI-Hackathon/internal/models"
	"go.uber.org/zap"
)

// Store is a JSON-file backed job list. It is safe for concurrent use within
// one process.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewStore creates a store backed by path. The file is created on first use.
func NewStore(path string, log *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.OrNop(log),
	}
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// List returns every job in file order
func (s *Store) List() ([]models.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Get returns the job with the given id
func (s *Store) Get(id int) (models.JobRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return models.JobRecord{}, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, nil
		}
	}
	return models.JobRecord{}, fmt.Errorf("%w: id %d", models.ErrJobNotFound, id)
}

// Add stores a new job and returns it with its assigned id, one more than
// the largest existing id.
func (s *Store) Add(rec models.JobRecord) (models.JobRecord, error) {
	if err := rec.Validate(); err != nil {
		return models.JobRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return models.JobRecord{}, err
	}

	maxID := 0
	for _, j := range jobs {
		if j.ID > maxID {
			maxID = j.ID
		}
	}
	rec.ID = maxID + 1
	jobs = append(jobs, rec)

	if err := s.save(jobs); err != nil {
		return models.JobRecord{}, err
	}
	s.logger.Info("job added", zap.Int(logger.FieldJobID, rec.ID))
	return rec, nil
}

// Update replaces the fields of the job with the given id
func (s *Store) Update(id int, rec models.JobRecord) (models.JobRecord, error) {
	if err := rec.Validate(); err != nil {
		return models.JobRecord{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return models.JobRecord{}, err
	}

	for i := range jobs {
		if jobs[i].ID != id {
			continue
		}
		rec.ID = id
		jobs[i] = rec
		if err := s.save(jobs); err != nil {
			return models.JobRecord{}, err
		}
		s.logger.Info("job updated", zap.Int(logger.FieldJobID, id))
		return rec, nil
	}

	return models.JobRecord{}, fmt.Errorf("%w: id %d", models.ErrJobNotFound, id)
}

// Delete removes the job with the given id. Deleting a missing job is not an error.
func (s *Store) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	jobs, err := s.load()
	if err != nil {
		return err
	}

	kept := jobs[:0]
	for _, j := range jobs {
		if j.ID != id {
			kept = append(kept, j)
		}
	}
	if err := s.save(kept); err != nil {
		return err
	}
	s.logger.Info("job deleted", zap.Int(logger.FieldJobID, id))
	return nil
}

// load must be called with mu held
func (s *Store) load() ([]models.JobRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.save([]models.JobRecord{}); err != nil {
				return nil, err
			}
			return []models.JobRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read jobs file: %w", err)
	}

	jobs := []models.JobRecord{}
	if err := json.Unmarshal(data, &jobs); err != nil {
		return nil, fmt.Errorf("failed to parse jobs file %s: %w", s.path, err)
	}
	return jobs, nil
}

// save writes through a temp file so a crash never leaves a truncated list
func (s *Store) save(jobs []models.JobRecord) error {
	data, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal jobs: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create jobs directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".jobs-*.json")
	if err != nil {
		return fmt.Errorf("failed to write jobs file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write jobs file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write jobs file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace jobs file: %w", err)
	}
	return nil
}
