package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/viant/nlsql/index"
)

const (
	currentFile   = "CURRENT"
	generationDir = "generations"
	manifestFile  = "manifest.json"
	indexFile     = "index.bin"
	mappingFile   = "mapping.json"
	recordsFile   = "records.db"
)

// Manifest describes a published generation.
type Manifest struct {
	Generation string     `json:"generation"`
	Kind       index.Kind `json:"kind"`
	Dimension  int        `json:"dimension"`
	Indexed    int        `json:"indexed"`
	Records    int        `json:"records"`
	CreatedAt  time.Time  `json:"created_at"`
}

func newGenerationName() string {
	return "gen-" + uuid.NewString()
}

func (s *Store) generationPath(name string, file ...string) string {
	return filepath.Join(append([]string{s.dir, generationDir, name}, file...)...)
}

// currentName returns the published generation, ErrIndexNotFound when none.
func (s *Store) currentName() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrIndexNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: read %s: %w", currentFile, err)
	}
	name := strings.TrimSpace(string(data))
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: invalid %s %q", ErrIndexNotFound, currentFile, name)
	}
	return name, nil
}

// publish atomically points CURRENT at name.
func (s *Store) publish(name string) error {
	tmp := filepath.Join(s.dir, currentFile+".tmp")
	if err := os.WriteFile(tmp, []byte(name+"\n"), 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, currentFile)); err != nil {
		return fmt.Errorf("store: publish %s: %w", name, err)
	}
	return nil
}

func (s *Store) unpublish() error {
	err := os.Remove(filepath.Join(s.dir, currentFile))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("store: unpublish: %w", err)
	}
	return nil
}

// prune removes every generation except keep.
func (s *Store) prune(keep ...string) {
	entries, err := os.ReadDir(filepath.Join(s.dir, generationDir))
	if err != nil {
		s.logger.Warn().Err(err).Msg("list generations")
		return
	}
	kept := make(map[string]bool, len(keep))
	for _, k := range keep {
		kept[k] = true
	}
	for _, e := range entries {
		if kept[e.Name()] {
			continue
		}
		if err := os.RemoveAll(s.generationPath(e.Name())); err != nil {
			s.logger.Warn().Err(err).Str("generation", e.Name()).Msg("remove stale generation")
			continue
		}
		s.logger.Debug().Str("generation", e.Name()).Msg("removed stale generation")
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s missing", ErrIndexNotFound, filepath.Base(path))
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("store: decode %s: %w", filepath.Base(path), err)
	}
	return nil
}
