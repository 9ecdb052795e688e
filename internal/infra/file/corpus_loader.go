package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"banisa-service/internal/domain"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yaml", ".yml", ".json"}

// CorpusLoader reads corpora from {dir}/{corpusID}.yaml (or .yml / .json).
type CorpusLoader struct {
	dir string
}

func NewCorpusLoader(dir string) *CorpusLoader {
	return &CorpusLoader{dir: dir}
}

func (l *CorpusLoader) LoadCorpus(_ context.Context, corpusID string) ([]domain.ClueRecord, error) {
	if corpusID == "" || filepath.Base(corpusID) != corpusID {
		return nil, fmt.Errorf("%w: invalid id %q", domain.ErrCorpusNotFound, corpusID)
	}
	for _, ext := range extensions {
		records, err := ReadCorpusFile(filepath.Join(l.dir, corpusID+ext))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		return records, err
	}
	return nil, domain.ErrCorpusNotFound
}

// ReadCorpusFile parses a YAML or JSON list of clue records.
func ReadCorpusFile(path string) ([]domain.ClueRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var records []domain.ClueRecord
	if err := yaml.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", path, err)
	}
	return records, nil
}
