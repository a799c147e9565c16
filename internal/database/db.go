package database

import (
	"fmt"
	"log"

	"github.com/edworkspace8869-ctrl/personal-rules-base/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewConnection opens a GORM connection. A single-user deployment defaults
// to an embedded sqlite file; set driver to "postgres" with a DSN for a
// server database. TranslateError is on so unique-key violations surface as
// gorm.ErrDuplicatedKey across both drivers.
func NewConnection(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		if dsn == "" {
			dsn = "rulesbase.db"
		}
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&model.Rule{},
		&model.System{},
		&model.Sequence{},
	); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
