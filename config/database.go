package config

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/rescuelink/api-go/models"
)

// InitDB opens the Postgres connection and migrates the schema.
func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DB.DSN()), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.RefreshToken{},
		&models.Report{},
		&models.Feedback{},
	); err != nil {
		return nil, err
	}

	return db, nil
}
