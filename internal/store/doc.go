// Package store provides SQLite-backed run history for lcq.
//
// Every recorded run keeps the query definition it executed, its status,
// its rows in canonical JSON and content hashes of both. Replays re-run a
// stored query and record whether the new rows hash to the same value.
//
// # Ordering
//
// All ordering uses seq, a counter assigned by the store on insert, never
// timestamps. Reads order by seq ASC, id ASC COLLATE BINARY so listings
// are identical across machines.
//
// # Hashes
//
// Hashes are SHA-256 over a domain prefix, a zero byte and the canonical
// bytes, hex encoded. The domain prefix carries a version so the encoding
// can change without old and new hashes colliding.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON: replays must reference a stored run
package store
