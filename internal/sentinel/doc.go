// Package sentinel observes the pending-update marker produced by the
// background updater.
//
// Presence of the marker path is the whole signal: a staged update is ready
// and a reboot must consume it before another switch may start.
package sentinel
