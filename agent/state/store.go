package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var (
	ErrMalformedCollection = errors.New("collection is not a sequence of records")
	ErrEmptyPath           = errors.New("store path is empty")
)

// Store loads and rewrites a whole record collection. There is no partial
// update: every Save replaces what is stored, and concurrent writers race.
type Store[T any] interface {
	Load(ctx context.Context) ([]T, error)
	Save(ctx context.Context, records []T) error
	Name() string
}

// LoadOrDefault never fails. Any load error is logged and fallback is used
// instead; a nil fallback yields an empty collection.
func LoadOrDefault[T any](ctx context.Context, store Store[T], fallback func() []T) []T {
	records, err := store.Load(ctx)
	if err == nil {
		return records
	}

	log.Warn().Err(err).Str("store", store.Name()).Msg("failed to load collection, using fallback")
	if fallback == nil {
		return []T{}
	}
	return fallback()
}

type fileFormat int

const (
	formatJSON fileFormat = iota
	formatYAML
)

// FileStore keeps the collection in one flat file. The format follows the
// file extension: .yaml/.yml is YAML, anything else is indented JSON.
type FileStore[T any] struct {
	path   string
	format fileFormat
}

func NewFileStore[T any](path string) (*FileStore[T], error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, ErrEmptyPath
	}

	format := formatJSON
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		format = formatYAML
	}
	return &FileStore[T]{path: path, format: format}, nil
}

func (s *FileStore[T]) Name() string {
	return "file:" + s.path
}

func (s *FileStore[T]) Path() string {
	return s.path
}

func (s *FileStore[T]) Load(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	records, err := s.decode(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCollection, s.path, err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func (s *FileStore[T]) decode(raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.New("file is empty")
	}

	var records []T
	switch s.format {
	case formatYAML:
		if err := yaml.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
	default:
		if trimmed[0] != '[' {
			return nil, errors.New("top-level value is not an array")
		}
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
	}
	return records, nil
}

func (s *FileStore[T]) encode(records []T) ([]byte, error) {
	if records == nil {
		records = []T{}
	}
	switch s.format {
	case formatYAML:
		return yaml.Marshal(records)
	default:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}

// Save writes to a temp file in the same directory and renames it over the
// target, so a crash mid-write leaves the previous collection intact.
func (s *FileStore[T]) Save(ctx context.Context, records []T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := s.encode(records)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}
