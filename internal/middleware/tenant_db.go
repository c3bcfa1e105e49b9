package middleware

import (
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"
)

// TenantDBResolver hands out database connections scoped to a tenant's
// isolated store. Every tenant gets its own database on the shared MySQL
// server; the resolver caches one session per database name.
type TenantDBResolver struct {
	defaultDB *gorm.DB
	tenantDbs sync.Map // map[string]*gorm.DB
}

// NewTenantDBResolver creates a new resolver
func NewTenantDBResolver(defaultDB *gorm.DB) *TenantDBResolver {
	return &TenantDBResolver{
		defaultDB: defaultDB,
	}
}

// DatabaseName derives the deterministic store name for a tenant ID.
// Hyphens are stripped because MySQL identifiers cannot contain them
// unquoted; the first 8 UUID chars keep the name short and stable.
func DatabaseName(tenantID string) string {
	compact := strings.ReplaceAll(tenantID, "-", "")
	if len(compact) > 8 {
		compact = compact[:8]
	}
	return "tenant_" + compact
}

// ResolveDB returns a session scoped to the tenant's database
func (r *TenantDBResolver) ResolveDB(databaseName string) *gorm.DB {
	if databaseName == "" {
		return r.defaultDB
	}

	if db, ok := r.tenantDbs.Load(databaseName); ok {
		if gormDB, assertOK := db.(*gorm.DB); assertOK {
			return gormDB
		}
	}

	db := r.defaultDB.Session(&gorm.Session{})
	if err := db.Exec(fmt.Sprintf("USE `%s`", databaseName)).Error; err != nil {
		return r.defaultDB
	}
	r.tenantDbs.Store(databaseName, db)
	return db
}

// CreateDatabase creates a tenant database if it does not already exist.
// "Already exists" is success, so concurrent duplicate invocations from a
// retried signup are harmless.
func (r *TenantDBResolver) CreateDatabase(databaseName string) error {
	sql := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s` CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", databaseName)
	return r.defaultDB.Exec(sql).Error
}

// DatabaseExists reports whether the tenant database has been created
func (r *TenantDBResolver) DatabaseExists(databaseName string) (bool, error) {
	var count int64
	err := r.defaultDB.
		Raw("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = ?", databaseName).
		Scan(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DropDatabase drops a tenant database. Only used by signup rollback.
func (r *TenantDBResolver) DropDatabase(databaseName string) error {
	sql := fmt.Sprintf("DROP DATABASE IF EXISTS `%s`", databaseName)
	r.tenantDbs.Delete(databaseName)
	return r.defaultDB.Exec(sql).Error
}
