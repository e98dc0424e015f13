package overlay

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	repo "github.com/emberos/emberctl/internal/repository/overlay"
)

// TestService_AddThenRemove drives the reconciler against a real list file.
func TestService_AddThenRemove(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "packages")
	svc := NewService(repo.NewFileRepository(path))
	ctx := context.Background()

	merged, err := svc.Add(ctx, []string{"htop", "vim"})
	require.NoError(t, err)
	require.Equal(t, []string{"htop", "vim"}, merged)

	// Adding again is a no-op.
	merged, err = svc.Add(ctx, []string{"vim"})
	require.NoError(t, err)
	require.Equal(t, []string{"htop", "vim"}, merged)

	remaining, notInstalled, err := svc.Remove(ctx, []string{"vim", "zsh"})
	require.NoError(t, err)
	require.Equal(t, []string{"htop"}, remaining)
	require.Equal(t, []string{"zsh"}, notInstalled)
}

// TestService_Remove_DropsEmptyOverlay verifies no empty-list artifact remains.
func TestService_Remove_DropsEmptyOverlay(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "packages")
	svc := NewService(repo.NewFileRepository(path))
	ctx := context.Background()

	_, err := svc.Add(ctx, []string{"htop"})
	require.NoError(t, err)

	remaining, notInstalled, err := svc.Remove(ctx, []string{"htop"})
	require.NoError(t, err)
	require.Empty(t, remaining)
	require.Empty(t, notInstalled)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
