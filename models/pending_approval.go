package models

import "time"

// PendingApproval queues destructive actions requested by non-admin
// roles. Admins approve (the action runs) or reject.
type PendingApproval struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Action      string `gorm:"type:varchar(50);not null" json:"action"` // delete_transaction, delete_customer
	TargetTable string `gorm:"type:varchar(50);not null" json:"target_table"`
	TargetID    uint   `gorm:"not null" json:"target_id"`
	Reason      string `gorm:"type:text" json:"reason"`

	RequestedBy uint       `gorm:"not null" json:"requested_by"`
	ReviewedBy  *uint      `json:"reviewed_by,omitempty"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"` // pending, approved, rejected
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
