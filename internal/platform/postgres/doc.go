// Package postgres contains the PostgreSQL implementations of the store
// interfaces. All implementations run on the store.DBTX abstraction so they
// work against either a connection pool or a transaction.
package postgres
