// Package memory holds map-backed repository implementations. They mirror
// the Postgres repositories' semantics (owner scoping, unique emails,
// single-shot publish, comments deleted with their article). They back the service and handler tests and the
// server's STORAGE=memory mode.
package memory
