package logfollow

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/emberos/emberctl/internal/config"
)

// Follower streams a log file to a writer as it grows, tail style. The file
// may not exist when following starts; it is picked up on creation. Rotation
// (the file shrinking or being replaced) restarts from the beginning of the
// new file.
type Follower struct {
	// path is the followed log file.
	path string
	// pollInterval is the fallback cadence for size checks.
	pollInterval time.Duration
}

// NewFollower creates a follower for the provided log path.
func NewFollower(path string, pollInterval time.Duration) *Follower {
	if pollInterval <= 0 {
		pollInterval = config.DefaultPollInterval
	}

	return &Follower{
		path:         filepath.Clean(path),
		pollInterval: pollInterval,
	}
}

// Follow copies appended bytes from the log file to out until the context is
// canceled. Following is advisory: I/O errors end the stream silently rather
// than failing the caller, and cancellation is the only exit path reported.
func (f *Follower) Follow(ctx context.Context, out io.Writer) {
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer func() {
			_ = watcher.Close()
		}()

		_ = watcher.Add(filepath.Dir(f.path))
	}

	ticker := time.NewTicker(f.pollInterval)
	defer ticker.Stop()

	var events chan fsnotify.Event
	if watcher != nil {
		events = watcher.Events
	}

	var offset int64

	// Start from the current end of an existing file so the operator sees
	// only output produced after the switch was triggered.
	if info, statErr := os.Stat(f.path); statErr == nil {
		offset = info.Size()
	}

	for {
		offset = f.drain(out, offset)

		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case <-ticker.C:
		}
	}
}

// drain copies bytes from the current offset to the end of the file and
// returns the new offset. A file smaller than the offset means rotation;
// draining restarts from zero.
func (f *Follower) drain(out io.Writer, offset int64) int64 {
	file, err := os.Open(f.path)
	if err != nil {
		return offset
	}

	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return offset
	}

	if info.Size() < offset {
		offset = 0
	}

	if _, err = file.Seek(offset, io.SeekStart); err != nil {
		return offset
	}

	// A short or failed copy just resumes from wherever it stopped on the
	// next pass.
	copied, _ := io.Copy(out, file)

	return offset + copied
}
