package runner

import (
	"fmt"
	"sort"
	"time"

	"github.com/pankajredekar/shopadmin/internal/versioner"
	"gorm.io/gorm"
)

// Migration interface that all schema migrations must implement
type Migration interface {
	Version() string
	Name() string
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// Registry holds all registered migrations
type Registry struct {
	migrations map[string]Migration
}

// NewRegistry creates a new migration registry
func NewRegistry() *Registry {
	return &Registry{
		migrations: make(map[string]Migration),
	}
}

// RegisterMigration registers a migration
func (r *Registry) RegisterMigration(m Migration) {
	r.migrations[m.Version()] = m
}

// GetMigration returns a migration by version
func (r *Registry) GetMigration(version string) (Migration, bool) {
	m, ok := r.migrations[version]
	return m, ok
}

// GetAllMigrations returns all migrations sorted by version
func (r *Registry) GetAllMigrations() []Migration {
	migrations := make([]Migration, 0, len(r.migrations))
	for _, m := range r.migrations {
		migrations = append(migrations, m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version() < migrations[j].Version()
	})
	return migrations
}

// Status describes one registered migration and whether it has been applied
type Status struct {
	Version   string
	Name      string
	Applied   bool
	AppliedAt time.Time
}

// Runner executes migrations
type Runner struct {
	db        *gorm.DB
	registry  *Registry
	versioner *versioner.Versioner
}

// NewRunner creates a new migration runner
func NewRunner(db *gorm.DB, registry *Registry, versioner *versioner.Versioner) *Runner {
	return &Runner{
		db:        db,
		registry:  registry,
		versioner: versioner,
	}
}

// Migrate applies all pending migrations, each one in its own transaction
// together with its version record. It returns the number applied.
func (r *Runner) Migrate() (int, error) {
	pending, err := r.GetPendingMigrations()
	if err != nil {
		return 0, err
	}

	for i, m := range pending {
		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Up(tx); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", m.Version(), err)
			}
			if err := r.versioner.WithDB(tx).Record(m.Version(), m.Name()); err != nil {
				return fmt.Errorf("failed to record migration %s: %w", m.Version(), err)
			}
			return nil
		})
		if err != nil {
			return i, err
		}
	}

	return len(pending), nil
}

// Rollback rolls back the last N applied migrations, newest first
func (r *Runner) Rollback(n int) (int, error) {
	applied, err := r.versioner.AppliedVersions()
	if err != nil {
		return 0, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	if len(applied) == 0 {
		return 0, fmt.Errorf("no migrations to rollback")
	}

	if n > len(applied) {
		n = len(applied)
	}

	done := 0
	for i := len(applied) - 1; i >= len(applied)-n; i-- {
		version := applied[i]
		m, ok := r.registry.GetMigration(version)
		if !ok {
			return done, fmt.Errorf("migration %s not found in registry", version)
		}

		err := r.db.Transaction(func(tx *gorm.DB) error {
			if err := m.Down(tx); err != nil {
				return fmt.Errorf("failed to rollback migration %s: %w", version, err)
			}
			if err := r.versioner.WithDB(tx).Remove(version); err != nil {
				return fmt.Errorf("failed to remove migration record %s: %w", version, err)
			}
			return nil
		})
		if err != nil {
			return done, err
		}
		done++
	}

	return done, nil
}

// GetPendingMigrations returns migrations that haven't been applied
func (r *Runner) GetPendingMigrations() ([]Migration, error) {
	applied, err := r.appliedSet()
	if err != nil {
		return nil, err
	}

	var pending []Migration
	for _, m := range r.registry.GetAllMigrations() {
		if !applied[m.Version()] {
			pending = append(pending, m)
		}
	}

	return pending, nil
}

// GetAppliedMigrations returns migrations that have been applied
func (r *Runner) GetAppliedMigrations() ([]Migration, error) {
	applied, err := r.versioner.AppliedVersions()
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	var migrations []Migration
	for _, v := range applied {
		if m, ok := r.registry.GetMigration(v); ok {
			migrations = append(migrations, m)
		}
	}

	return migrations, nil
}

// Status lists every registered migration in version order
func (r *Runner) Status() ([]Status, error) {
	records, err := r.versioner.Applied()
	if err != nil {
		return nil, err
	}
	appliedAt := make(map[string]time.Time, len(records))
	for _, rec := range records {
		appliedAt[rec.Version] = rec.AppliedAt
	}

	all := r.registry.GetAllMigrations()
	statuses := make([]Status, 0, len(all))
	for _, m := range all {
		at, ok := appliedAt[m.Version()]
		statuses = append(statuses, Status{
			Version:   m.Version(),
			Name:      m.Name(),
			Applied:   ok,
			AppliedAt: at,
		})
	}
	return statuses, nil
}

func (r *Runner) appliedSet() (map[string]bool, error) {
	applied, err := r.versioner.AppliedVersions()
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	set := make(map[string]bool, len(applied))
	for _, v := range applied {
		set[v] = true
	}
	return set, nil
}
