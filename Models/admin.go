package Models

import (
	"BaiXe/Config"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const RoleAdmin = "admin"

// Admin is a panel account. Password is a bcrypt hash.
type Admin struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"default:admin" json:"role"`
}

// SeedAdmin creates or updates the bootstrap admin account from config.
// No-op when the credentials are not configured.
func SeedAdmin(db *gorm.DB, cfg *Config.AppConfig) error {
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var admin Admin
	err = db.Where("username = ?", cfg.AdminUsername).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		admin = Admin{Username: cfg.AdminUsername, Password: string(hash), Role: RoleAdmin}
		return db.Create(&admin).Error
	}
	if err != nil {
		return err
	}

	admin.Password = string(hash)
	admin.Role = RoleAdmin
	return db.Save(&admin).Error
}
