package models

import "time"

// LedgerChange records a balance drift found and repaired by the balance
// auditor: the stored customer aggregates disagreed with a recompute of
// the full transaction history.
type LedgerChange struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	CustomerID    uint      `gorm:"not null;index" json:"customer_id"`
	Field         string    `gorm:"type:varchar(50);not null" json:"field"`
	StoredValue   string    `gorm:"type:varchar(50);not null" json:"stored_value"`
	ComputedValue string    `gorm:"type:varchar(50);not null" json:"computed_value"`
	Repaired      bool      `gorm:"not null;default:false" json:"repaired"`
	DetectedAt    time.Time `gorm:"not null" json:"detected_at"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
}
