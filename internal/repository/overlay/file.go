package overlay

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/emberos/emberctl/internal/config"
)

// Repository defines persistence operations for the custom package list.
type Repository interface {
	Load(ctx context.Context) ([]string, error)
	Save(ctx context.Context, names []string) error
	Drop(ctx context.Context) error
}

// FileRepository persists the custom package list as a plain text file, one
// package name per line. The file is the sole source of truth: it is read
// fresh and rewritten wholesale on every mutation.
type FileRepository struct {
	// path is the filesystem location of the package list.
	path string
	// mu protects concurrent access to the list file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes the list at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the package list from disk. A missing file is an empty list,
// not an error: no-overlay and empty-overlay are the same state. Blank
// lines are ignored; names keep their order and exact spelling.
func (r *FileRepository) Load(_ context.Context) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read package list: %w", err)
	}

	var names []string

	for _, line := range strings.Split(string(contents), "\n") {
		if line == "" {
			continue
		}

		names = append(names, line)
	}

	return names, nil
}

// Save rewrites the package list wholesale.
func (r *FileRepository) Save(_ context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}

	if err := os.WriteFile(r.path, []byte(sb.String()), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write package list: %w", err)
	}

	return nil
}

// Drop removes the list file entirely. Called when the package set becomes
// empty so no dangling empty-overlay artifact remains. Removing an already
// absent file is not an error.
func (r *FileRepository) Drop(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove package list: %w", err)
	}

	return nil
}
