// Package database opens bun connections from configuration and binds a
// single transaction to a context for the rest of the module.
package database
