package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Fixed storage keys. Each key maps to one JSON document on disk.
const (
	keyCriterios  = "pq2026_criterios"
	keyUnidades   = "pq2026_unidades"
	keyAvaliacoes = "pq2026_avaliacoes"
	keyNextAvalID = "pq2026_nextAvalId"
)

// Store abstracts persistence for the quality collections.
type Store interface {
	Criteria() ([]Criterion, error)
	SaveCriteria(criteria []Criterion) error
	Units() ([]Unit, error)
	SaveUnits(units []Unit) error
	Evaluations() ([]Evaluation, error)
	SaveEvaluations(evaluations []Evaluation) error
	NextEvaluationID() (int, error)
	SetNextEvaluationID(id int) error
}

// FileStore keeps each collection as a JSON file under a data directory.
// Access is single-process and synchronous.
type FileStore struct {
	dataDir string
}

// NewFileStore ensures the data directory exists and returns a handle.
func NewFileStore(dataDir string) (*FileStore, error) {
	if dataDir == "" {
		dataDir = "./data"
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileStore{dataDir: dataDir}, nil
}

// Criteria loads the criteria collection, empty when absent.
func (s *FileStore) Criteria() ([]Criterion, error) {
	var criteria []Criterion
	if err := s.read(keyCriterios, &criteria); err != nil {
		return nil, err
	}
	return criteria, nil
}

// SaveCriteria replaces the criteria collection.
func (s *FileStore) SaveCriteria(criteria []Criterion) error {
	return s.write(keyCriterios, criteria)
}

// Units loads the units collection, empty when absent.
func (s *FileStore) Units() ([]Unit, error) {
	var units []Unit
	if err := s.read(keyUnidades, &units); err != nil {
		return nil, err
	}
	return units, nil
}

// SaveUnits replaces the units collection.
func (s *FileStore) SaveUnits(units []Unit) error {
	return s.write(keyUnidades, units)
}

// Evaluations loads the evaluations collection, empty when absent.
func (s *FileStore) Evaluations() ([]Evaluation, error) {
	var evaluations []Evaluation
	if err := s.read(keyAvaliacoes, &evaluations); err != nil {
		return nil, err
	}
	return evaluations, nil
}

// SaveEvaluations replaces the evaluations collection.
func (s *FileStore) SaveEvaluations(evaluations []Evaluation) error {
	return s.write(keyAvaliacoes, evaluations)
}

// NextEvaluationID returns the next sequential evaluation id, starting at 1.
func (s *FileStore) NextEvaluationID() (int, error) {
	var next int
	if err := s.read(keyNextAvalID, &next); err != nil {
		return 0, err
	}
	if next <= 0 {
		next = 1
	}
	return next, nil
}

// SetNextEvaluationID persists the id counter.
func (s *FileStore) SetNextEvaluationID(id int) error {
	return s.write(keyNextAvalID, id)
}

func (s *FileStore) read(key string, out interface{}) error {
	data, err := os.ReadFile(s.resolve(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) write(key string, value interface{}) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := os.WriteFile(s.resolve(key), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (s *FileStore) resolve(key string) string {
	return filepath.Join(s.dataDir, key+".json")
}
