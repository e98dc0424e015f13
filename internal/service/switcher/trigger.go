package switcher

import (
	"context"
	"fmt"

	"github.com/emberos/emberctl/internal/domain/release"
	"github.com/emberos/emberctl/internal/repository/state"
)

// Trigger hands the switch request over to the background updater. There is
// no RPC at this boundary: in production the persisted state document itself
// is the request the updater consumes. Tests substitute a fake that records
// the request and drives the sentinel.
type Trigger interface {
	TriggerSwitch(ctx context.Context, st *release.State) error
}

// stateTrigger implements Trigger by replacing the release state document.
type stateTrigger struct {
	// states persists the release state document.
	states state.Repository
}

// TriggerSwitch durably persists the new desired state. Must only be called
// while the switch lock is held.
func (t *stateTrigger) TriggerSwitch(ctx context.Context, st *release.State) error {
	if err := t.states.Save(ctx, st); err != nil {
		return fmt.Errorf("persist release state: %w", err)
	}

	return nil
}
