// Package release contains the core domain type for release tracking.
//
// It defines State (the persisted server/track/revision triple the background
// updater consumes) together with the bootstrap defaults for machines that
// have never switched tracks.
package release
