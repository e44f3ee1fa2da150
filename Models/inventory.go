package Models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	SessionActive    = "active"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

const (
	RecordChecked  = "checked"
	RecordNotFound = "not_found"
	RecordDamaged  = "damaged"
)

// InventorySession is one physical-count event. active -> completed via
// the end endpoint; active -> cancelled via the janitor. Both terminal.
type InventorySession struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	SessionName string     `gorm:"not null" json:"sessionName"`
	Description string     `json:"description"`
	StartedBy   string     `gorm:"not null" json:"startedBy"`
	EndedBy     string     `json:"endedBy,omitempty"`
	StartedAt   time.Time  `gorm:"index;not null" json:"startedAt"`
	EndedAt     *time.Time `json:"endedAt,omitempty"`
	Status      string     `gorm:"default:active" json:"status"`

	// Final reconciliation report, serialized at session end.
	Report datatypes.JSON `json:"report,omitempty"`
}

// InventoryRecord is one checked-off plate within a session. Rescanning
// the same plate overwrites the row, it never accumulates.
type InventoryRecord struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SessionID    uint      `gorm:"uniqueIndex:idx_session_plate;not null" json:"sessionId"`
	LicensePlate string    `gorm:"uniqueIndex:idx_session_plate;not null" json:"licensePlate"`
	Status       string    `gorm:"default:checked" json:"status"` // checked | not_found | damaged
	Notes        string    `json:"notes"`
	CheckedBy    string    `gorm:"not null" json:"checkedBy"`
	CheckedAt    time.Time `gorm:"not null" json:"checkedAt"`
}

// InventoryReport is the end-of-session discrepancy report. The parked
// set is snapshotted at end time, so vehicles checked out mid-session
// drop out of it. Plates scanned but no longer parked do not count
// against the discrepancy.
type InventoryReport struct {
	SessionID         uint              `json:"sessionId"`
	SessionName       string            `json:"sessionName"`
	TotalVehicles     int               `json:"totalVehicles"`
	CheckedVehicles   int               `json:"checkedVehicles"`
	UncheckedVehicles int               `json:"uncheckedVehicles"`
	UncheckedPlates   []string          `json:"uncheckedLicensePlates"`
	CheckedRecords    []InventoryRecord `json:"checkedRecords"`
	StartedAt         time.Time         `json:"startedAt"`
	EndedAt           time.Time         `json:"endedAt"`
}
