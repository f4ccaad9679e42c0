package db

import (
	"fmt"
	"sync"

	"github.com/medlembra/medlembra/migrations"
	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func applyMigrations(database *gorm.DB, dialect string) error {
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("resolve sql handle: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Files)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
