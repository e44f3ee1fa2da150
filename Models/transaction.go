package Models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ActionDeposit  = "Gửi"
	ActionRetrieve = "Lấy"
)

// Transaction is one check-in or check-out event. Append-only: rows are
// never updated or deleted, even when the person record later changes.
type Transaction struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Cccd         string    `gorm:"index;not null" json:"cccd"`
	LicensePlate string    `gorm:"index;not null" json:"licensePlate"`
	Action       string    `gorm:"not null" json:"action"` // Gửi | Lấy
	Status       string    `gorm:"not null" json:"status"` // post-action vehicle status
	Timestamp    time.Time `gorm:"index;not null" json:"timestamp"`
}

// BeforeCreate pins the stored timestamp to UTC. sqlite keeps time.Time
// as text with the value's own offset, so range comparisons only hold
// when every stored value and every query bound carry the same offset.
func (t *Transaction) BeforeCreate(*gorm.DB) error {
	t.Timestamp = t.Timestamp.UTC()
	return nil
}

// StatusForAction maps an action to the vehicle status it produces.
func StatusForAction(action string) string {
	if action == ActionDeposit {
		return StatusParked
	}
	return StatusRetrieved
}

// CountTransactions counts log entries for one action within [start, end].
// Bounds are converted to UTC to match the stored offset.
func CountTransactions(db *gorm.DB, action string, start, end time.Time) (int64, error) {
	var count int64
	err := db.Model(&Transaction{}).
		Where("action = ? AND timestamp BETWEEN ? AND ?", action, start.UTC(), end.UTC()).
		Count(&count).Error
	return count, err
}

// TransactionsInRange loads log entries within [start, end] in
// chronological order. Bounds are converted to UTC to match the stored
// offset.
func TransactionsInRange(db *gorm.DB, start, end time.Time) ([]Transaction, error) {
	var transactions []Transaction
	err := db.Where("timestamp BETWEEN ? AND ?", start.UTC(), end.UTC()).
		Order("timestamp").
		Find(&transactions).Error
	return transactions, err
}
