package migration

import (
	"github.com/agendly/agendly-backend/internal/domain"
	"gorm.io/gorm"
)

// Run creates the platform tables (tenants, subscriptions, payments).
// AutoMigrate is additive, so re-running is safe.
func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Tenant{},
		&domain.Subscription{},
		&domain.Payment{},
	)
}
