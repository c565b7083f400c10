package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	errs "github.com/matzehuels/sptree/pkg/errors"
	sptreeio "github.com/matzehuels/sptree/pkg/io"
	"github.com/matzehuels/sptree/pkg/planar"
)

// recordExt is the file extension of stored graphs.
const recordExt = ".txt"

// FileStore keeps each graph as a text record file named <name>.txt.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a store in dir, creating the directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create graph dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the storage directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(name string) string {
	return filepath.Join(s.dir, name+recordExt)
}

// Save implements Store.
func (s *FileStore) Save(ctx context.Context, name string, records []planar.Record) error {
	if err := errs.ValidateGraphName(name); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := sptreeio.WriteRecords(&buf, records); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(s.path(name), buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write graph %s: %w", name, err)
	}
	return nil
}

// Load implements Store.
func (s *FileStore) Load(ctx context.Context, name string) ([]planar.Record, error) {
	if err := errs.ValidateGraphName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, errs.New(errs.ErrCodeNotFound, "graph %q not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("read graph %s: %w", name, err)
	}
	return sptreeio.ReadRecords(bytes.NewReader(data))
}

// List implements Store.
func (s *FileStore) List(ctx context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read graph dir: %w", err)
	}
	var out []Info
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), recordExt)
		if e.IsDir() || !ok || errs.ValidateGraphName(name) != nil {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		out = append(out, Info{
			Name:      name,
			Vertices:  countRecords(data),
			UpdatedAt: fi.ModTime(),
		})
	}
	slices.SortFunc(out, func(a, b Info) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

// Delete implements Store.
func (s *FileStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateGraphName(name); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove graph %s: %w", name, err)
	}
	return nil
}

// Close does nothing for file storage.
func (s *FileStore) Close() error { return nil }

// countRecords counts non-blank lines.
func countRecords(data []byte) int {
	n := 0
	for line := range bytes.Lines(data) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n
}

var _ Store = (*FileStore)(nil)
