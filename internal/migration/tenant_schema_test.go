package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func openTenantStore(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return db
}

func TestRunTenantSchema_Rerun(t *testing.T) {
	db := openTenantStore(t)

	require.NoError(t, RunTenantSchema(db))
	// Re-running against an existing store must be a no-op
	require.NoError(t, RunTenantSchema(db))

	for _, table := range []string{"settings", "staff", "services", "clients", "appointments"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestSeedTenantSchema(t *testing.T) {
	db := openTenantStore(t)
	require.NoError(t, RunTenantSchema(db))

	require.NoError(t, SeedTenantSchema(db, "Studio Bela"))

	var name TenantSetting
	require.NoError(t, db.Where("setting_key = ?", "business_name").First(&name).Error)
	assert.Equal(t, "Studio Bela", name.Value)

	var tz TenantSetting
	require.NoError(t, db.Where("setting_key = ?", "timezone").First(&tz).Error)
	assert.Equal(t, "America/Sao_Paulo", tz.Value)

	var services int64
	db.Model(&Service{}).Count(&services)
	assert.Equal(t, int64(1), services)
}

func TestSeedTenantSchema_AlreadySeeded(t *testing.T) {
	db := openTenantStore(t)
	require.NoError(t, RunTenantSchema(db))

	require.NoError(t, SeedTenantSchema(db, "First"))
	require.NoError(t, SeedTenantSchema(db, "Second"))

	var settings int64
	db.Model(&TenantSetting{}).Count(&settings)
	assert.Equal(t, int64(4), settings)

	var name TenantSetting
	require.NoError(t, db.Where("setting_key = ?", "business_name").First(&name).Error)
	assert.Equal(t, "First", name.Value)
}
