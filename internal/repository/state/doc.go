// Package state implements persistence for the release State document.
//
// The FileRepository stores and loads the document as JSON on disk, replacing
// it atomically on every save, and exposes a Repository interface that the
// switch coordinator depends on.
package state
