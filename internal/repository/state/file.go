package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/emberos/emberctl/internal/config"
	"github.com/emberos/emberctl/internal/domain/release"
)

// Repository defines persistence operations for the release state document.
type Repository interface {
	Load(ctx context.Context) (*release.State, error)
	Save(ctx context.Context, state *release.State) error
}

// FileRepository persists the release state to a JSON document on disk.
// The document is also read by the background updater, so its shape is a
// compatibility contract (see the release.State field tags).
type FileRepository struct {
	// path is the filesystem location of the JSON state document.
	path string
	// mu protects concurrent access from within one process; cross-process
	// writers are serialized by the switch lock, not here.
	mu sync.Mutex
}

// ErrNotFound is returned when the state document does not exist yet.
// Absence is a distinct outcome, not a failure: it means the machine has
// never switched tracks and runs on bootstrap defaults.
var ErrNotFound = errors.New("release state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state document from disk.
func (r *FileRepository) Load(_ context.Context) (*release.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state document: %w", err)
	}

	var st release.State
	if err = json.Unmarshal(contents, &st); err != nil {
		return nil, fmt.Errorf("decode state document: %w", err)
	}

	return &st, nil
}

// Save replaces the state document wholesale. The write goes to a temporary
// file in the same directory followed by a rename, so a crash mid-write
// leaves the previous document intact rather than a truncated one.
func (r *FileRepository) Save(_ context.Context, state *release.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".release-*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary state document: %w", err)
	}

	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)

		return fmt.Errorf("write state document: %w", err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("close state document: %w", err)
	}

	if err = os.Chmod(tmpName, config.DefaultFilePermissions); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("set state document permissions: %w", err)
	}

	if err = os.Rename(tmpName, r.path); err != nil {
		_ = os.Remove(tmpName)

		return fmt.Errorf("replace state document: %w", err)
	}

	return nil
}
