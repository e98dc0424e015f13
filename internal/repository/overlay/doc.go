// Package overlay implements persistence for the custom package list.
//
// The FileRepository stores the list as plain text, one package name per
// line, and drops the file when the list becomes empty.
package overlay
