// Package order models orders as the dispatcher sees them.
//
// The package includes:
//   - Status: the order lifecycle labels written by the kitchen and the couriers
//   - Candidate: a ready order awaiting a courier, with its address, pizza count
//     and, once geocoded, its coordinates
//
// The dispatcher never changes an order's status; it only reads orders whose
// status belongs to the ready set and decides which courier carries them.
package order
