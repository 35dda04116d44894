package models

import "time"

// Customer carries running aggregate balances maintained transactionally
// by the transaction and payment controllers. The stored fields are the
// single source of truth; the balance auditor cross-checks them against a
// recompute of the full history.
type Customer struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"type:varchar(100);not null;index" json:"name"`
	Phone    string  `gorm:"type:varchar(20);not null;uniqueIndex" json:"phone"`
	Email    *string `gorm:"type:varchar(100)" json:"email,omitempty"`
	Address  string  `gorm:"type:text" json:"address"`
	Category string  `gorm:"type:varchar(20);not null;default:'regular'" json:"category"` // regular, vip, new

	FinancialBalance    float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"financial_balance"`
	CylinderBalance6kg  int     `gorm:"column:cylinder_balance_6kg;not null;default:0" json:"cylinder_balance_6kg"`
	CylinderBalance13kg int     `gorm:"column:cylinder_balance_13kg;not null;default:0" json:"cylinder_balance_13kg"`
	CylinderBalance50kg int     `gorm:"column:cylinder_balance_50kg;not null;default:0" json:"cylinder_balance_50kg"`
	CylinderBalance     int     `gorm:"not null;default:0" json:"cylinder_balance"`

	LastTransactionDate *time.Time `json:"last_transaction_date,omitempty"`
	CreatedAt           time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"not null" json:"updated_at"`

	Transactions []Transaction `gorm:"foreignKey:CustomerID" json:"transactions,omitempty"`
}
