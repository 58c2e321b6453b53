package migrations

import (
	"time"

	"github.com/pankajredekar/shopadmin"
	"gorm.io/gorm"
)

type CreateAccessTokens struct{}

func (m CreateAccessTokens) Version() string { return "202510140900000002" }

func (m CreateAccessTokens) Name() string { return "create_access_tokens" }

func (m CreateAccessTokens) Up(db *gorm.DB) error {
	type AccessToken struct {
		ID         string `gorm:"primaryKey;size:36;not null"`
		UserID     uint   `gorm:"index;not null"`
		Name       string `gorm:"size:255"`
		ExpiresAt  time.Time
		LastUsedAt *time.Time
		CreatedAt  time.Time
	}
	return db.Table("access_tokens").AutoMigrate(&AccessToken{})
}

func (m CreateAccessTokens) Down(db *gorm.DB) error {
	return db.Migrator().DropTable("access_tokens")
}

func init() {
	shopadmin.RegisterMigration(CreateAccessTokens{})
}
