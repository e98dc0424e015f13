// Package track resolves operator input against the fetched track catalog.
//
// Resolve is a pure function so the interactive retry loop can call it
// repeatedly without retained state.
package track
