package models

import "time"

// Payment is a standalone payment captured against an existing
// transaction, outside the amount paid at the counter. It reduces the
// customer's financial balance when completed.
type Payment struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TransactionID uint        `gorm:"not null;index" json:"transaction_id"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	CustomerID    uint        `gorm:"not null;index" json:"customer_id"`
	Customer      Customer    `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`

	Amount        float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod string  `gorm:"type:varchar(20);not null" json:"payment_method"` // cash, mpesa, card, transfer
	Reference     string  `gorm:"type:varchar(100)" json:"reference"`
	ReceiptNumber string  `gorm:"type:varchar(50);uniqueIndex" json:"receipt_number"`
	Status        string  `gorm:"type:varchar(20);not null;default:'completed'" json:"status"` // pending, completed, failed, refunded
	Notes         string  `gorm:"type:text" json:"notes"`

	ProcessedBy uint      `gorm:"not null" json:"processed_by"`
	PaymentDate time.Time `gorm:"not null;index" json:"payment_date"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
