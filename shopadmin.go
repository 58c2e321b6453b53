package shopadmin

import (
	"github.com/pankajredekar/shopadmin/internal/runner"
)

// Migration interface that all schema migrations must implement
type Migration = runner.Migration

var globalRegistry *runner.Registry

func init() {
	globalRegistry = runner.NewRegistry()
}

// RegisterMigration registers a migration in the global registry
func RegisterMigration(m Migration) {
	if globalRegistry == nil {
		globalRegistry = runner.NewRegistry()
	}
	globalRegistry.RegisterMigration(m)
}

// GetGlobalRegistry returns the global registry
func GetGlobalRegistry() *runner.Registry {
	return globalRegistry
}

// SetGlobalRegistry sets the global registry (for testing)
func SetGlobalRegistry(reg *runner.Registry) {
	globalRegistry = reg
}
