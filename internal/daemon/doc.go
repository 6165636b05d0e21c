// Package daemon wraps the folder monitor in a single-instance process
// shell: a file lock so two daemons never watch the same root, a pid file
// for operators, and coordinated shutdown of the monitor and the journal.
package daemon
