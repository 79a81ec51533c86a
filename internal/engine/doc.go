// Package engine implements the usage-reconciliation and break-scheduling
// core: turning unreliable cumulative platform counters into a monotonic
// per-day ledger, accumulating continuous use into forced breaks, running
// explicit countdown sessions, and deriving streaks.
package engine
