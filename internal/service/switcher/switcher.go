package switcher

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mitchellh/go-ps"

	"github.com/emberos/emberctl/internal/catalog"
	"github.com/emberos/emberctl/internal/config"
	"github.com/emberos/emberctl/internal/domain/release"
	"github.com/emberos/emberctl/internal/lock"
	"github.com/emberos/emberctl/internal/logfollow"
	"github.com/emberos/emberctl/internal/logger"
	"github.com/emberos/emberctl/internal/repository/state"
	"github.com/emberos/emberctl/internal/sentinel"
	"github.com/emberos/emberctl/internal/track"
)

// UpdaterProcessName is the executable name of the background updater
// daemon. Its absence does not block a switch, it only costs the operator a
// warning: the daemon may be socket-activated or started by a timer.
const UpdaterProcessName = "ember-updated"

// geteuid is overridable in tests that exercise the full entry point.
var geteuid = os.Geteuid

// CatalogClient fetches the ordered track listing from an image server.
type CatalogClient interface {
	Tracks(ctx context.Context, serverURL string) ([]string, error)
}

// Options are inputs accepted by the switcher entry point.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// Track selects non-interactively when set (a name or zero-based
	// index). The first rejection is fatal instead of re-prompting.
	Track string
}

// Coordinator runs one track-switch attempt end to end: serialize against
// other invocations, resolve the operator's choice against the catalog,
// persist the new desired state, then watch the background updater finish.
type Coordinator struct {
	states   state.Repository
	catalogs CatalogClient
	lock     *lock.SwitchLock
	watcher  *sentinel.Watcher
	follower *logfollow.Follower
	trigger  Trigger

	// input supplies operator answers; output carries prompts and the
	// streamed updater log.
	input  io.Reader
	output io.Writer

	// selection, when non-empty, answers the prompt once without reading
	// input; rejection is then fatal (the non-interactive policy).
	selection string

	// maxAttempts bounds the interactive retry loop.
	maxAttempts int
}

// Option configures coordinator behaviour.
type Option func(*Coordinator)

// WithInput sets the reader operator answers come from.
func WithInput(r io.Reader) Option {
	return func(c *Coordinator) {
		if r != nil {
			c.input = r
		}
	}
}

// WithOutput sets the writer prompts and streamed logs go to.
func WithOutput(w io.Writer) Option {
	return func(c *Coordinator) {
		if w != nil {
			c.output = w
		}
	}
}

// WithTrigger replaces the hand-off to the background updater.
func WithTrigger(t Trigger) Option {
	return func(c *Coordinator) {
		if t != nil {
			c.trigger = t
		}
	}
}

// WithCatalogClient replaces the catalog client.
func WithCatalogClient(cc CatalogClient) Option {
	return func(c *Coordinator) {
		if cc != nil {
			c.catalogs = cc
		}
	}
}

// WithSelection supplies a one-shot non-interactive answer.
func WithSelection(selection string) Option {
	return func(c *Coordinator) {
		c.selection = strings.TrimSpace(selection)
	}
}

// WithMaxAttempts overrides the bound on the interactive retry loop.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// New creates a coordinator wired to the machine paths in cfg.
func New(cfg *config.Config, opts ...Option) *Coordinator {
	repo := state.NewFileRepository(cfg.StateFile)

	c := &Coordinator{
		states:      repo,
		catalogs:    catalog.NewClient(catalog.WithTimeout(cfg.Timeout)),
		lock:        lock.New(cfg.LockFile),
		watcher:     sentinel.NewWatcher(cfg.SentinelFile, cfg.PollInterval),
		follower:    logfollow.NewFollower(cfg.UpdaterLogFile, cfg.PollInterval),
		trigger:     &stateTrigger{states: repo},
		input:       os.Stdin,
		output:      os.Stdout,
		maxAttempts: cfg.MaxPromptAttempts,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run executes the switcher lifecycle and is the public entry point for the CLI.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "track-switch")

	if geteuid() != 0 {
		return ErrPrivilege
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	var coordinatorOpts []Option
	if opts.Track != "" {
		coordinatorOpts = append(coordinatorOpts, WithSelection(opts.Track))
	}

	return New(cfg, coordinatorOpts...).Run(ctx)
}

// Run performs one switch attempt: decide and persist under the lock, then
// wait for the background updater to stage the new track.
func (c *Coordinator) Run(ctx context.Context) error {
	newState, err := c.decideAndPersist(ctx)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Track switch triggered",
		"track", newState.Track, "server", newState.Server)

	return c.awaitCompletion(ctx, newState)
}

// decideAndPersist is the critical section: everything here happens while
// holding the switch lock, and nothing after it does. Keeping the lock off
// the completion wait lets a second invocation run (and abort on the
// pending-update check) while an update is still being applied.
func (c *Coordinator) decideAndPersist(ctx context.Context) (*release.State, error) {
	releaseLock, err := c.lock.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire switch lock: %w", err)
	}

	defer releaseLock()

	if c.watcher.Exists() {
		return nil, ErrPendingUpdate
	}

	current, err := c.states.Load(ctx)
	if err != nil {
		if !errors.Is(err, state.ErrNotFound) {
			return nil, fmt.Errorf("load release state: %w", err)
		}

		// First switch on this machine: assume the bootstrap defaults.
		current = release.Bootstrap()
	}

	tracks, err := c.catalogs.Tracks(ctx, current.Server)
	if err != nil {
		return nil, fmt.Errorf("fetch track catalog: %w", err)
	}

	chosen, err := c.selectTrack(ctx, tracks, current.Track)
	if err != nil {
		return nil, err
	}

	newState := &release.State{
		Server: current.Server,
		Track:  chosen,
	}

	// Persisting the document is the hand-off: the background updater picks
	// it up from here. Last action under the lock.
	if err = c.trigger.TriggerSwitch(ctx, newState); err != nil {
		return nil, err
	}

	return newState, nil
}

// selectTrack resolves the operator's choice against the catalog, asking
// again on recoverable rejections up to the attempt bound. A supplied
// non-interactive selection is resolved exactly once.
func (c *Coordinator) selectTrack(ctx context.Context, tracks []string, current string) (string, error) {
	if len(tracks) == 0 {
		return "", track.ErrEmptyCatalog
	}

	if c.selection != "" {
		chosen, err := track.Resolve(tracks, current, c.selection)
		if err != nil {
			return "", fmt.Errorf("select track %q: %w", c.selection, err)
		}

		return chosen, nil
	}

	c.printCatalog(tracks, current)

	reader := bufio.NewReader(c.input)

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		fmt.Fprintf(c.output, "Select a track (name, index or empty for %q): ", tracks[0])

		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			if errors.Is(err, io.EOF) {
				return "", ErrSelectionAborted
			}

			return "", fmt.Errorf("read selection: %w", err)
		}

		chosen, err := track.Resolve(tracks, current, line)
		if err == nil {
			return chosen, nil
		}

		switch {
		case errors.Is(err, track.ErrAlreadyActive):
			fmt.Fprintf(c.output, "Track %q is already active, pick another.\n", current)
		case errors.Is(err, track.ErrNoSuchTrack):
			fmt.Fprintf(c.output, "No track matches %q.\n", strings.TrimSpace(line))
		default:
			return "", err
		}

		logger.WarnKV(ctx, "Selection rejected", "attempt", attempt, "error", err)
	}

	return "", fmt.Errorf("%w: no valid selection after %d attempts", ErrSelectionAborted, c.maxAttempts)
}

// printCatalog shows the fetched tracks with their indices, marking the
// currently committed one.
func (c *Coordinator) printCatalog(tracks []string, current string) {
	fmt.Fprintln(c.output, "Available tracks:")

	for i, name := range tracks {
		marker := ""
		if name == current {
			marker = " (current)"
		}

		fmt.Fprintf(c.output, "  [%d] %s%s\n", i, name, marker)
	}
}

// awaitCompletion blocks until the background updater signals the staged
// update through the sentinel. The updater's log is streamed alongside for
// visibility, but only the sentinel gates completion. There is deliberately
// no timeout: a stuck updater is for the operator to resolve out-of-band.
func (c *Coordinator) awaitCompletion(ctx context.Context, newState *release.State) error {
	c.warnIfUpdaterAbsent(ctx)

	fmt.Fprintf(c.output, "Waiting for the update to %q to be staged...\n", newState.Track)

	followCtx, stopFollowing := context.WithCancel(ctx)
	defer stopFollowing()

	done := make(chan struct{})

	go func() {
		defer close(done)
		c.follower.Follow(followCtx, c.output)
	}()

	if err := c.watcher.Wait(ctx); err != nil {
		return fmt.Errorf("wait for staged update: %w", err)
	}

	stopFollowing()
	<-done

	fmt.Fprintf(c.output, "Track %q is staged. Reboot to apply it.\n", newState.Track)
	logger.InfoKV(ctx, "Update staged", "track", newState.Track)

	return nil
}

// warnIfUpdaterAbsent checks the process table for the background updater
// and warns when it is not running. Advisory only.
func (c *Coordinator) warnIfUpdaterAbsent(ctx context.Context) {
	processes, err := ps.Processes()
	if err != nil {
		logger.WarnKV(ctx, "Cannot inspect process table", "error", err)
		return
	}

	for _, process := range processes {
		if process.Executable() == UpdaterProcessName {
			return
		}
	}

	logger.WarnKV(ctx, "Background updater does not appear to be running",
		"process", UpdaterProcessName)
	fmt.Fprintf(c.output, "Warning: %s is not running; the wait may not complete until it starts.\n",
		UpdaterProcessName)
}
