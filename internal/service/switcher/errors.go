package switcher

import "errors"

var (
	// ErrPrivilege is returned when the invocation lacks root privilege.
	// Switching tracks rewrites machine-wide state and must run as root.
	ErrPrivilege = errors.New("must run as root")

	// ErrPendingUpdate is returned when a previously triggered update is
	// staged and unconsumed. Starting another switch would race with it;
	// the operator has to reboot first.
	ErrPendingUpdate = errors.New("an update is already pending, reboot to apply it before switching tracks")

	// ErrSelectionAborted is returned when the operator cancels the
	// selection or exhausts the allowed attempts.
	ErrSelectionAborted = errors.New("track selection aborted")
)
