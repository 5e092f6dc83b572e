// Package workflow runs the daemon processing loop: it polls the records
// store, claims the oldest pending submission, and drives it through the
// analysis stage with heartbeats and stale-record reclamation.
package workflow
