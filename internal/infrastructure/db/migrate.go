package db

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"
)

// Migrate applies every registered goose migration. The migrations package
// must be imported for its side effects by the caller.
func Migrate(database *gorm.DB) error {
	sqlDB, err := database.DB()
	if err != nil {
		return fmt.Errorf("sql.DB alınamadı: %w", err)
	}

	goose.SetBaseFS(nil)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
