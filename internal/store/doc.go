// Package store holds the persistence primitives shared by the task store
// implementations: the DBTX abstraction, transaction helper and the sentinel
// errors every backend maps its driver errors onto.
package store
