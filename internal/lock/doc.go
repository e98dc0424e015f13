// Package lock provides the machine-wide switch lock.
//
// At most one process holds the lock at a time. Because it is an advisory
// file lock, a crashed holder cannot wedge it: the kernel drops the lock
// with the process.
package lock
