// Package store defines the persistence interfaces consumed by the study
// service, the shared DBTX abstraction, and the sentinel errors that
// implementations translate driver errors into.
package store
