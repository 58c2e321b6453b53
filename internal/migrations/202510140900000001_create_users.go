package migrations

import (
	"time"

	"github.com/pankajredekar/shopadmin"
	"gorm.io/gorm"
)

type CreateUsers struct{}

func (m CreateUsers) Version() string { return "202510140900000001" }

func (m CreateUsers) Name() string { return "create_users" }

func (m CreateUsers) Up(db *gorm.DB) error {
	type User struct {
		ID               uint   `gorm:"primaryKey;not null"`
		Name             string `gorm:"not null;size:255"`
		Email            string `gorm:"uniqueIndex;not null;size:255"`
		Password         string `gorm:"not null;size:255"`
		Role             string `gorm:"index;size:50"`
		IsBootstrapAdmin bool   `gorm:"not null;default:false"`
		CreatedAt        time.Time
		UpdatedAt        time.Time
	}
	if err := db.Table("users").AutoMigrate(&User{}); err != nil {
		return err
	}
	// only one row may ever carry the bootstrap flag
	return db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_users_bootstrap_admin ON users (is_bootstrap_admin) WHERE is_bootstrap_admin = true`).Error
}

func (m CreateUsers) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("users")
}

func init() {
	shopadmin.RegisterMigration(CreateUsers{})
}
