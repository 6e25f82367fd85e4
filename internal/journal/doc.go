// Package journal keeps an audit trail of reconciliations in SQLite.
//
// Each Apply produces one row: the run id, the key and desired state, the
// target file, whether the file changed, the outcome kind and the reload
// exit code. The CLI "history" command reads it back with Recent.
//
// The database uses the pure-Go modernc.org/sqlite driver in WAL mode and
// carries a single schema version; a mismatch is reported instead of
// migrated.
package journal
