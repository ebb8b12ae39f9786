// Package runstore keeps a SQLite history of processing runs so past
// outcomes can be listed without re-reading logs.
//
// The schema is built from embedded, ordered migrations recorded in a
// schema_migrations table; opening an older database upgrades it in place.
package runstore
