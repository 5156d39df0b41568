// Package ports defines the contracts between the dispatch core and its adapters:
// the relational store, the geocoder, the route optimizer and the change feed.
// Adapters in internal/adapters implement them; tests substitute testify mocks.
package ports
