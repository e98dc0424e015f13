package switcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/emberos/emberctl/internal/catalog"
	"github.com/emberos/emberctl/internal/config"
	"github.com/emberos/emberctl/internal/domain/release"
	"github.com/emberos/emberctl/internal/lock"
	"github.com/emberos/emberctl/internal/repository/state"
	"github.com/emberos/emberctl/internal/track"
)

// fakeCatalog serves a fixed track list and records the server it was asked for.
type fakeCatalog struct {
	tracks []string
	err    error

	mu         sync.Mutex
	lastServer string
}

func (f *fakeCatalog) Tracks(_ context.Context, serverURL string) ([]string, error) {
	f.mu.Lock()
	f.lastServer = serverURL
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}

	return f.tracks, nil
}

// recordingTrigger persists the state like the production trigger and then
// plays the background updater's part by creating the sentinel.
type recordingTrigger struct {
	states       state.Repository
	sentinelPath string

	mu        sync.Mutex
	triggered []*release.State
}

func (r *recordingTrigger) TriggerSwitch(ctx context.Context, st *release.State) error {
	r.mu.Lock()
	r.triggered = append(r.triggered, st.Clone())
	r.mu.Unlock()

	if err := r.states.Save(ctx, st); err != nil {
		return err
	}

	return os.WriteFile(r.sentinelPath, nil, 0o644)
}

func (r *recordingTrigger) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.triggered)
}

// newTestConfig returns a config whose singleton paths all live in a temp dir.
func newTestConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		StateFile:         filepath.Join(dir, "release.json"),
		LockFile:          filepath.Join(dir, "track.lock"),
		SentinelFile:      filepath.Join(dir, "update-ready"),
		UpdaterLogFile:    filepath.Join(dir, "updated.log"),
		PackagesFile:      filepath.Join(dir, "packages"),
		PollInterval:      50 * time.Millisecond,
		MaxPromptAttempts: 3,
		Timeout:           time.Second,
	}

	return cfg
}

// newTestCoordinator wires a coordinator with fakes around the given config.
func newTestCoordinator(
	t *testing.T, cfg *config.Config, tracks []string, input string, out *bytes.Buffer, extra ...Option,
) (*Coordinator, *recordingTrigger) {
	t.Helper()

	trigger := &recordingTrigger{
		states:       state.NewFileRepository(cfg.StateFile),
		sentinelPath: cfg.SentinelFile,
	}

	opts := []Option{
		WithCatalogClient(&fakeCatalog{tracks: tracks}),
		WithTrigger(trigger),
		WithInput(strings.NewReader(input)),
		WithOutput(out),
	}
	opts = append(opts, extra...)

	return New(cfg, opts...), trigger
}

// TestCoordinator_Run_SwitchScenario walks the whole happy path: catalog
// [stable testing], current stable, empty input rejected as already active,
// then index 1 selects testing, persists it and waits for the sentinel.
func TestCoordinator_Run_SwitchScenario(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	repo := state.NewFileRepository(cfg.StateFile)
	require.NoError(t, repo.Save(context.Background(), &release.State{
		Server:  "https://images.example.org",
		Track:   "stable",
		Current: 5,
	}))

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg, []string{"stable", "testing"}, "\n1\n", &out)
	require.NoError(t, c.Run(context.Background()))

	// The empty answer resolved to the current track and was re-prompted.
	require.Contains(t, out.String(), "already active")
	require.Contains(t, out.String(), `Track "testing" is staged`)

	require.Equal(t, 1, trigger.count())

	persisted, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, &release.State{
		Server:  "https://images.example.org",
		Track:   "testing",
		Current: 0,
	}, persisted)
}

// TestCoordinator_Run_BootstrapDefaults verifies a machine without a state
// document uses the default server and has no current track.
func TestCoordinator_Run_BootstrapDefaults(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var out bytes.Buffer

	fake := &fakeCatalog{tracks: []string{"stable"}}
	trigger := &recordingTrigger{
		states:       state.NewFileRepository(cfg.StateFile),
		sentinelPath: cfg.SentinelFile,
	}

	c := New(cfg,
		WithCatalogClient(fake),
		WithTrigger(trigger),
		WithInput(strings.NewReader("\n")),
		WithOutput(&out),
	)
	require.NoError(t, c.Run(context.Background()))

	require.Equal(t, release.DefaultServer, fake.lastServer)

	persisted, err := state.NewFileRepository(cfg.StateFile).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, "stable", persisted.Track)
	require.Equal(t, release.DefaultServer, persisted.Server)
}

// TestCoordinator_Run_PendingUpdateAborts verifies an unconsumed staged
// update makes the invocation abort before selecting anything.
func TestCoordinator_Run_PendingUpdateAborts(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	require.NoError(t, os.WriteFile(cfg.SentinelFile, nil, 0o644))

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg, []string{"stable", "testing"}, "1\n", &out)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrPendingUpdate)
	require.Zero(t, trigger.count())
}

// TestCoordinator_Run_CatalogUnavailableIsFatal verifies catalog failures
// are not retried.
func TestCoordinator_Run_CatalogUnavailableIsFatal(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var out bytes.Buffer

	trigger := &recordingTrigger{
		states:       state.NewFileRepository(cfg.StateFile),
		sentinelPath: cfg.SentinelFile,
	}

	c := New(cfg,
		WithCatalogClient(&fakeCatalog{err: catalog.ErrUnavailable}),
		WithTrigger(trigger),
		WithInput(strings.NewReader("1\n")),
		WithOutput(&out),
	)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, catalog.ErrUnavailable)
	require.Zero(t, trigger.count())
}

// TestCoordinator_Run_ExhaustsAttempts verifies the bounded retry loop.
func TestCoordinator_Run_ExhaustsAttempts(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	require.NoError(t, state.NewFileRepository(cfg.StateFile).Save(context.Background(), &release.State{
		Server: "https://images.example.org",
		Track:  "stable",
	}))

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg,
		[]string{"stable", "testing"}, "stable\nbogus\nstable\n", &out)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrSelectionAborted)
	require.Zero(t, trigger.count())

	// The failed invocation must not have touched the persisted state.
	persisted, loadErr := state.NewFileRepository(cfg.StateFile).Load(context.Background())
	require.NoError(t, loadErr)
	require.Equal(t, "stable", persisted.Track)
}

// TestCoordinator_Run_OperatorCancelAborts verifies EOF on input aborts.
func TestCoordinator_Run_OperatorCancelAborts(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg, []string{"stable", "testing"}, "", &out)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, ErrSelectionAborted)
	require.Zero(t, trigger.count())
}

// TestCoordinator_Run_NonInteractiveRejectionIsFatal verifies the one-shot
// selection policy fails on first rejection instead of re-prompting.
func TestCoordinator_Run_NonInteractiveRejectionIsFatal(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)
	require.NoError(t, state.NewFileRepository(cfg.StateFile).Save(context.Background(), &release.State{
		Server: "https://images.example.org",
		Track:  "stable",
	}))

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg,
		[]string{"stable", "testing"}, "", &out, WithSelection("stable"))

	err := c.Run(context.Background())
	require.ErrorIs(t, err, track.ErrAlreadyActive)
	require.Zero(t, trigger.count())
}

// TestCoordinator_Run_NonInteractiveIndex verifies index selection without a prompt.
func TestCoordinator_Run_NonInteractiveIndex(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg,
		[]string{"stable", "testing"}, "", &out, WithSelection("1"))

	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, 1, trigger.count())
	require.NotContains(t, out.String(), "Available tracks")
}

// TestCoordinator_Run_EmptyCatalog verifies an empty listing aborts selection.
func TestCoordinator_Run_EmptyCatalog(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg, nil, "\n", &out)

	err := c.Run(context.Background())
	require.ErrorIs(t, err, track.ErrEmptyCatalog)
	require.Zero(t, trigger.count())
}

// TestCoordinator_Run_SecondInvocationBlocksThenAborts covers the
// concurrency property: a second switch blocks on the lock and, once the
// first has triggered an update, aborts on the pending check.
func TestCoordinator_Run_SecondInvocationBlocksThenAborts(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t)

	// The "first invocation" holds the lock across its critical section.
	releaseLock, err := lock.New(cfg.LockFile).Acquire(context.Background())
	require.NoError(t, err)

	var out bytes.Buffer

	c, trigger := newTestCoordinator(t, cfg, []string{"stable", "testing"}, "", &out, WithSelection("1"))

	result := make(chan error, 1)

	go func() {
		result <- c.Run(context.Background())
	}()

	// The second invocation must stay blocked while the lock is held.
	select {
	case err := <-result:
		t.Fatalf("second invocation finished while lock was held: %v", err)
	case <-time.After(400 * time.Millisecond):
	}

	// The first invocation triggers its update and releases the lock.
	require.NoError(t, os.WriteFile(cfg.SentinelFile, nil, 0o644))
	releaseLock()

	select {
	case err := <-result:
		require.ErrorIs(t, err, ErrPendingUpdate)
	case <-time.After(5 * time.Second):
		t.Fatal("second invocation never completed")
	}

	require.Zero(t, trigger.count())
}

// TestRun_RequiresRoot verifies the entry point rejects unprivileged callers.
func TestRun_RequiresRoot(t *testing.T) {
	prev := geteuid
	geteuid = func() int { return 1000 }

	t.Cleanup(func() {
		geteuid = prev
	})

	err := Run(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "settings.yaml")})
	require.ErrorIs(t, err, ErrPrivilege)
}
