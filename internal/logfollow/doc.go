// Package logfollow streams the background updater's log to the operator.
//
// The stream is advisory visibility while a switch is waiting for
// completion; it never gates the wait itself.
package logfollow
