// Package overlay reconciles the custom package list layered on top of the
// base image.
//
// AddPackages and RemovePackages are pure set maintenance; Service wires
// them to the persisted list file and collapses the empty list to no file.
package overlay
