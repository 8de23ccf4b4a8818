// Package lifecycle holds the rules of the query ticket workflow: which
// status changes are allowed, how responses are appended, and the pure
// collection reducer that stores build on.
//
// Nothing in this package performs I/O. Stores serialise calls per ticket
// and persist the returned values; the functions themselves never mutate
// their inputs.
package lifecycle
