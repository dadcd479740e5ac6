// Package store loads and saves the YAML files backing transaction
// categorization: category keyword rules and learned payee mappings.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"fjacquet/ledger-sync/internal/logging"
)

const (
	categoriesFilename = "categories.yaml"
	payeesFilename     = "payees.yaml"
)

// CategoryRule maps a category name to the keywords that select it.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

type categoriesFile struct {
	Categories []CategoryRule `yaml:"categories"`
}

// CategoryStore manages loading and saving of categorization data.
type CategoryStore struct {
	dir string
	log logging.Logger
	mu  sync.Mutex
}

// NewCategoryStore creates a store rooted at dir. An empty dir searches
// the standard locations instead.
func NewCategoryStore(dir string, logger logging.Logger) *CategoryStore {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &CategoryStore{dir: dir, log: logger}
}

// findFile looks for a data file in the configured directory, then the
// working directory, then the user config directory.
func (s *CategoryStore) findFile(filename string) (string, error) {
	locations := []string{}
	if s.dir != "" {
		locations = append(locations, filepath.Join(s.dir, filename))
	}
	locations = append(locations, filename, filepath.Join("database", filename))
	if homeDir, err := os.UserHomeDir(); err == nil {
		locations = append(locations, filepath.Join(homeDir, ".config", "ledger-sync", filename))
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}
	return "", os.ErrNotExist
}

// LoadCategories loads category keyword rules. A missing file yields an
// empty rule set, not an error.
func (s *CategoryStore) LoadCategories() ([]CategoryRule, error) {
	filePath, err := s.findFile(categoriesFilename)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("categories file not found", logging.F("file", categoriesFilename))
			return []CategoryRule{}, nil
		}
		return nil, fmt.Errorf("error resolving categories file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading categories file: %w", err)
	}

	var parsed categoriesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("error parsing categories file: %w", err)
	}

	for i := range parsed.Categories {
		for j, kw := range parsed.Categories[i].Keywords {
			parsed.Categories[i].Keywords[j] = strings.ToLower(kw)
		}
	}

	s.log.Debug("loaded category rules",
		logging.F(logging.FieldCount, len(parsed.Categories)),
		logging.F("file", filePath))
	return parsed.Categories, nil
}

// LoadPayeeMappings loads learned payee-to-category mappings. A missing
// file yields an empty map.
func (s *CategoryStore) LoadPayeeMappings() (map[string]string, error) {
	filePath, err := s.findFile(payeesFilename)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.Debug("payee mappings file not found", logging.F("file", payeesFilename))
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("error resolving payee mappings file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading payee mappings file: %w", err)
	}

	var mappings map[string]string
	if err := yaml.Unmarshal(data, &mappings); err != nil {
		return nil, fmt.Errorf("error parsing payee mappings: %w", err)
	}
	if mappings == nil {
		mappings = map[string]string{}
	}

	s.log.Debug("loaded payee mappings",
		logging.F(logging.FieldCount, len(mappings)),
		logging.F("file", filePath))
	return mappings, nil
}

// SavePayeeMappings writes payee mappings back to disk so categories
// learned during a run survive it.
func (s *CategoryStore) SavePayeeMappings(mappings map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filePath, err := s.findFile(payeesFilename)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("error resolving payee mappings file: %w", err)
		}
		dir := s.dir
		if dir == "" {
			dir = "database"
		}
		filePath = filepath.Join(dir, payeesFilename)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0750); err != nil {
		return fmt.Errorf("error creating directory: %w", err)
	}

	data, err := yaml.Marshal(mappings)
	if err != nil {
		return fmt.Errorf("error marshaling payee mappings: %w", err)
	}
	if err := os.WriteFile(filePath, data, 0600); err != nil {
		return fmt.Errorf("error writing payee mappings: %w", err)
	}

	s.log.Debug("saved payee mappings",
		logging.F(logging.FieldCount, len(mappings)),
		logging.F("file", filePath))
	return nil
}
