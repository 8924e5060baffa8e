// Package store declares the persistence interfaces the services depend on,
// the sentinel errors their implementations report, and a helper for running
// multi-statement writes in one transaction.
package store
