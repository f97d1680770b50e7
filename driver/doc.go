// Package driver opens the SQLite database files sheetdb reads and writes,
// and wraps the catalog queries (sqlite_master, PRAGMA table_info) and the
// SQLite limits the importer has to respect.
//
// The SQLite engine is modernc.org/sqlite, a cgo-free port, so the binary
// builds without a C toolchain.
package driver
