package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnshNarg/bit-coin/internal/domain/models"
	"github.com/AnshNarg/bit-coin/internal/services/forecast"
)

// FileStore reads fitted scaler state and trainer metadata from the models
// directory. Layout mirrors the trainer's output:
//
//	{dir}/{SYMBOL_WITH_UNDERSCORES}/scaler.json
//	{dir}/{SYMBOL_WITH_UNDERSCORES}/metadata.json
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore { return &FileStore{dir: dir} }

// symbolDir maps "BTC-USD" to the trainer's "BTC_USD" directory name.
func (s *FileStore) symbolDir(symbol string) string {
	return filepath.Join(s.dir, strings.ReplaceAll(symbol, "-", "_"))
}

// HasModel reports whether fitted artifacts exist for the symbol.
func (s *FileStore) HasModel(symbol string) bool {
	_, err := os.Stat(filepath.Join(s.symbolDir(symbol), "scaler.json"))
	return err == nil
}

// LoadScaler restores the fitted normalizer for a symbol.
func (s *FileStore) LoadScaler(symbol string) (*forecast.MinMaxScaler, error) {
	path := filepath.Join(s.symbolDir(symbol), "scaler.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, models.ErrModelUnavailable)
	}
	sc, err := forecast.LoadScaler(b)
	if err != nil {
		return nil, fmt.Errorf("scaler %s: %w", symbol, err)
	}
	return sc, nil
}

// LoadMetadata reads trainer metadata for a symbol.
func (s *FileStore) LoadMetadata(symbol string) (models.ModelMetadata, error) {
	path := filepath.Join(s.symbolDir(symbol), "metadata.json")
	b, err := os.ReadFile(path)
	if err != nil {
		return models.ModelMetadata{}, fmt.Errorf("read %s: %w", path, models.ErrModelUnavailable)
	}
	var meta models.ModelMetadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return models.ModelMetadata{}, fmt.Errorf("parse metadata %s: %w", symbol, err)
	}
	return meta, nil
}
