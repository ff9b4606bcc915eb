package testutil

import (
	"cinco/src/db"
	"cinco/src/models"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a private in-memory sqlite database with every table
// migrated and installs it as the shared db instance.
func NewTestDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	// A single connection keeps the in-memory database alive and serializes
	// transactions the way row locks do on postgres.
	sqlDB.SetMaxOpenConns(1)
	if err := gdb.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}
	db.NewDB(gdb)
	return gdb, nil
}
