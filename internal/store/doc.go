// Package store provides SQLite-backed storage for history blobs.
//
// Each project has at most one row in the histories table. Saving replaces
// the row (last write wins) and bumps its revision, which lets callers and
// tests tell writes apart without comparing blobs.
//
// The store implements persist.Store and returns persist.ErrNotFound for
// projects without saved history. It does not interpret blobs; decoding and
// checksum verification live in internal/persist.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - one open connection: SQLite has a single writer
package store
