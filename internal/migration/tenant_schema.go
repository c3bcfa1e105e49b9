package migration

import (
	"time"

	"gorm.io/gorm"
)

// Tenant-store schema. These tables live inside each tenant's isolated
// database; the scheduling features that use them are served elsewhere.
// The provisioner applies this fixed set on every provision call.

// TenantSetting is a key/value row of tenant-local configuration
type TenantSetting struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string    `gorm:"column:setting_key;uniqueIndex;size:64"`
	Value     string    `gorm:"column:setting_value;type:text"`
}

func (TenantSetting) TableName() string { return "settings" }

// Staff is a bookable professional in the tenant's business
type Staff struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;index"`
	Active    bool      `gorm:"column:active;default:true"`
}

func (Staff) TableName() string { return "staff" }

// Service is a bookable offering with a duration and price
type Service struct {
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime"`
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name            string    `gorm:"column:name"`
	DurationMinutes int       `gorm:"column:duration_minutes;default:30"`
	Price           float64   `gorm:"column:price"`
	Active          bool      `gorm:"column:active;default:true"`
}

func (Service) TableName() string { return "services" }

// Client is a customer of the tenant's business
type Client struct {
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email;index"`
	Phone     string    `gorm:"column:phone"`
}

func (Client) TableName() string { return "clients" }

// Appointment is a booked slot binding client, staff and service
type Appointment struct {
	StartsAt  time.Time `gorm:"column:starts_at;index"`
	EndsAt    time.Time `gorm:"column:ends_at"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ClientID  int64     `gorm:"column:client_id;index"`
	StaffID   int64     `gorm:"column:staff_id;index"`
	ServiceID int64     `gorm:"column:service_id"`
	Status    string    `gorm:"column:status;default:scheduled"`
	Notes     string    `gorm:"column:notes;type:text"`
}

func (Appointment) TableName() string { return "appointments" }

// RunTenantSchema applies the fixed tenant-store migration set.
// AutoMigrate skips existing tables, so re-running is always safe.
func RunTenantSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&TenantSetting{},
		&Staff{},
		&Service{},
		&Client{},
		&Appointment{},
	)
}

// SeedTenantSchema loads baseline data. Only called on first creation;
// an existing settings row means the store was already seeded.
func SeedTenantSchema(db *gorm.DB, tenantName string) error {
	var count int64
	db.Model(&TenantSetting{}).Count(&count)
	if count > 0 {
		return nil
	}

	settings := []TenantSetting{
		{Key: "business_name", Value: tenantName},
		{Key: "timezone", Value: "America/Sao_Paulo"},
		{Key: "slot_interval_minutes", Value: "30"},
		{Key: "week_starts_on", Value: "monday"},
	}
	if err := db.Create(&settings).Error; err != nil {
		return err
	}

	defaultService := Service{Name: "Consulta padrão", DurationMinutes: 30, Price: 0, Active: true}
	return db.Create(&defaultService).Error
}
