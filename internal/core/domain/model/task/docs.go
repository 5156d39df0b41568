// Package task models an asynchronous dispatch cycle execution.
//
// Status transitions:
//
//	Pending ──> Started ──> Success
//	   │           │
//	   └───────────┴──────> Failure
//
// Success and Failure are terminal. A task that cannot even be queued goes
// straight from Pending to Failure.
package task
