package models

import "time"

type Receipt struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TransactionID uint        `gorm:"not null;index" json:"transaction_id"`
	Transaction   Transaction `gorm:"foreignKey:TransactionID" json:"transaction,omitempty"`
	CustomerID    uint        `gorm:"not null;index" json:"customer_id"`

	ReceiptNumber string  `gorm:"type:varchar(50);uniqueIndex" json:"receipt_number"`
	TotalBill     float64 `gorm:"type:decimal(12,2);not null" json:"total_bill"`
	AmountPaid    float64 `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	Outstanding   float64 `gorm:"type:decimal(12,2);not null" json:"outstanding"`
	PaymentMethod string  `gorm:"type:varchar(50);not null" json:"payment_method"`

	ReceiptItems []ReceiptItem `gorm:"foreignKey:ReceiptID" json:"receipt_items"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// ReceiptItem is one billed line on a receipt: a refill, swap or outright
// leg for a single cylinder size.
type ReceiptItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	ReceiptID uint    `gorm:"not null" json:"receipt_id"`
	Receipt   Receipt `gorm:"-" json:"-"`

	Category  string  `gorm:"type:varchar(20);not null" json:"category"` // refill, swap, outright
	SizeKg    int     `gorm:"not null" json:"size_kg"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	Subtotal  float64 `gorm:"type:decimal(12,2);not null" json:"subtotal"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
