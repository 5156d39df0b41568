// Package errs provides the shared error types of the dispatch service.
//
// Every error type follows the same shape:
//   - a sentinel (ErrObjectNotFound, ErrValueIsInvalid, ...) usable with errors.Is
//   - a struct carrying the offending parameter and an optional cause
//   - constructors with and without a cause
//   - Unwrap returning the sentinel
//
// Domain and adapter code returns these so the HTTP layer and the dispatch
// orchestrator can classify failures without string matching.
package errs
