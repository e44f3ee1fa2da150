package Models

import (
	"BaiXe/Config"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the database and migrates the schema. Migration order
// follows the dependency chain: people before their vehicles, sessions
// before their records.
func Connect(cfg *Config.AppConfig) (*gorm.DB, error) {
	connection, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(connection); err != nil {
		return nil, err
	}

	if err := SeedAdmin(connection, cfg); err != nil {
		return nil, err
	}

	DB = connection
	return connection, nil
}

// Migrate runs AutoMigrate for every model. Shared with the test setup.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Admin{},
		&Person{},
		&InventorySession{},
	); err != nil {
		return err
	}
	return db.AutoMigrate(
		&Vehicle{},
		&Transaction{},
		&InventoryRecord{},
	)
}
