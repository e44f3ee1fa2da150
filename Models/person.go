package Models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

const (
	StatusParked    = "Đang gửi"
	StatusRetrieved = "Đã lấy"
)

// LastTransaction is the snapshot stamped on a vehicle by the
// check-in/check-out path. Kept alongside the independent transaction log.
type LastTransaction struct {
	Action    string     `json:"action,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Vehicle belongs to exactly one person; the plate is unique system-wide.
type Vehicle struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PersonID        uint            `gorm:"index" json:"-"`
	LicensePlate    string          `gorm:"uniqueIndex;not null" json:"licensePlate"`
	VehicleType     string          `json:"vehicleType"`
	Color           string          `json:"color"`
	Brand           string          `json:"brand"`
	Status          string          `gorm:"default:Đã lấy" json:"status"`
	LastTransaction LastTransaction `gorm:"embedded;embeddedPrefix:last_" json:"lastTransaction"`
}

// Person is one national-ID record. Vehicles live and die with it.
type Person struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	Cccd        string    `gorm:"uniqueIndex;not null" json:"cccd"`
	OldCmt      string    `json:"oldCmt"`
	FullName    string    `gorm:"not null" json:"fullName"`
	DateOfBirth string    `json:"dateOfBirth"` // dd/mm/yyyy display string
	Gender      string    `json:"gender"`      // Nam | Nữ | Khác
	Hometown    string    `json:"hometown"`
	IssueDate   string    `json:"issueDate"` // dd/mm/yyyy display string
	Vehicles    []Vehicle `gorm:"foreignKey:PersonID;constraint:OnDelete:CASCADE" json:"vehicles"`
}

// FindPersonByCccd loads a person with vehicles. Returns
// gorm.ErrRecordNotFound when the ID is unknown.
func FindPersonByCccd(db *gorm.DB, cccd string) (*Person, error) {
	var person Person
	if err := db.Preload("Vehicles").Where("cccd = ?", cccd).First(&person).Error; err != nil {
		return nil, err
	}
	return &person, nil
}

// PlateOwner returns the cccd of the person who owns plate, excluding
// excludeCccd. Empty string means the plate is free.
func PlateOwner(db *gorm.DB, plate, excludeCccd string) (string, error) {
	var owner struct{ Cccd string }
	err := db.Table("vehicles").
		Select("people.cccd").
		Joins("JOIN people ON people.id = vehicles.person_id").
		Where("vehicles.license_plate = ? AND people.cccd <> ?", plate, excludeCccd).
		Scan(&owner).Error
	if err != nil {
		return "", err
	}
	return owner.Cccd, nil
}

// CountParkedVehicles is the live parked count read from the registry,
// not derived from the transaction log.
func CountParkedVehicles(db *gorm.DB) (int64, error) {
	var count int64
	err := db.Model(&Vehicle{}).Where("status = ?", StatusParked).Count(&count).Error
	return count, err
}

// ParkedPlates lists every plate currently parked, in insertion order.
func ParkedPlates(db *gorm.DB) ([]string, error) {
	var plates []string
	err := db.Model(&Vehicle{}).
		Where("status = ?", StatusParked).
		Order("id").
		Pluck("license_plate", &plates).Error
	return plates, err
}

// FillVehicleTypes backfills the derived type on records registered
// before the type column existed. In-memory only, callers decide
// whether to persist.
func FillVehicleTypes(vehicles []Vehicle) {
	for i := range vehicles {
		if vehicles[i].VehicleType == "" {
			vehicles[i].VehicleType = VehicleTypeForPlate(vehicles[i].LicensePlate)
		}
	}
}

// IsNotFound wraps the gorm sentinel so controllers don't import gorm
// just for the comparison.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
