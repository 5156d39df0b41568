// Package route models the per-courier stop assignments produced by a dispatch cycle.
//
// A Stop is one (courier, order) row with its sequence position and cumulative ETA.
// Pending stops (not started, not in progress) are disposable: every dispatch cycle
// replaces them wholesale. Started or in-progress stops belong to the courier and
// are never modified by the dispatcher.
package route
