// Package switcher coordinates a release track switch.
//
// One invocation serializes against the rest of the machine through the
// switch lock, aborts if a staged update is waiting for a reboot, resolves
// the operator's choice against the fetched catalog, durably persists the
// new desired state, and then waits for the background updater's sentinel
// while streaming its log. The lock covers only the decide-and-persist
// critical section, never the wait.
package switcher
