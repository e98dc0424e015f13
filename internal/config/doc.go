// Package config defines the machine-wide settings used by emberctl and
// provides helpers to load and save them in YAML format.
//
// The Config type carries the singleton paths (release state document, switch
// lock, pending-update sentinel, updater log, package list) plus tunables.
package config
