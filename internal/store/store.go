// Package store opens the persisted store backing every collection the
// console manages. SQLite is the embedded default; Postgres is available
// for server deployments.
package store

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/scolaris/school-management/internal"
	auditDatamodel "github.com/scolaris/school-management/internal/core/datamodel/audit"
	financeDatamodel "github.com/scolaris/school-management/internal/core/datamodel/finance"
	libraryDatamodel "github.com/scolaris/school-management/internal/core/datamodel/library"
	schoolDatamodel "github.com/scolaris/school-management/internal/core/datamodel/school"
	classDatamodel "github.com/scolaris/school-management/internal/core/datamodel/schoolclass"
	staffDatamodel "github.com/scolaris/school-management/internal/core/datamodel/staff"
	studentDatamodel "github.com/scolaris/school-management/internal/core/datamodel/student"
	userDatamodel "github.com/scolaris/school-management/internal/core/datamodel/systemuser"
)

// Models lists every managed collection. Backup, restore and factory reset
// all iterate this set; adding a collection here is what makes it part of
// the store's contract.
var Models = []interface{}{
	&schoolDatamodel.School{},
	&userDatamodel.SystemUser{},
	&studentDatamodel.Student{},
	&staffDatamodel.Teacher{},
	&classDatamodel.SchoolClass{},
	&financeDatamodel.Transaction{},
	&libraryDatamodel.Book{},
	&auditDatamodel.LogEntry{},
}

func Open(cfg internal.DatabaseConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(cfg.GetDSN()), gormCfg)
	default:
		db, err = gorm.Open(sqlite.Open(cfg.GetDSN()), gormCfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access underlying connection: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	if cfg.ConnMaxIdleTime > 0 {
		sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping store: %w", err)
	}

	return db, nil
}

// AutoMigrate creates the schema for the embedded SQLite store. Postgres
// deployments run goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(Models...)
}

// WaitForReady pings the store until it responds or the deadline passes.
func WaitForReady(db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	deadline := time.Now().Add(timeout)
	for {
		if err = sqlDB.Ping(); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("store not ready after %s: %w", timeout, err)
		}
		time.Sleep(250 * time.Millisecond)
	}
}
