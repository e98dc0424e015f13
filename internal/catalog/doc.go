// Package catalog fetches the list of release tracks an image server
// publishes.
//
// The listing at {server}/track/list is authoritative for the duration of
// one selection session; it is never cached or persisted.
package catalog
