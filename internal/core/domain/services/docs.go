// Package services provides the pure domain services of a dispatch cycle.
//
// The package includes:
//   - PriorityScorer: explicit flag and wait time to a comparable rank, and the
//     ordering of candidates by urgency
//   - RouteRequestBuilder: ranked candidates and idle couriers to a VRP request
//   - AssignmentPlanner: an optimizer solution back to per-courier route stops
//
// None of them perform I/O; the application layer feeds them data loaded from
// the store and hands their output to the optimizer or the route writer.
package services
