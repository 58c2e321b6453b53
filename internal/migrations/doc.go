// Package migrations holds the schema migrations of the back office. Each file
// registers itself with the global registry from init, so importing the
// package for side effects makes them available to the runner.
package migrations
