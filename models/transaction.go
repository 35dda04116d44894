package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kmathenge/gasflow-app/ledger"
)

// LoadColumn, ReturnsColumn and OutrightColumn store raw breakdowns as
// JSON text so the server can always re-derive totals from first
// principles. MySQL JSON and sqlite TEXT both accept the string form.

type LoadColumn struct {
	ledger.SizeBreakdown
}

func (l LoadColumn) Value() (driver.Value, error) {
	return json.Marshal(l.SizeBreakdown)
}

func (l *LoadColumn) Scan(value interface{}) error {
	return scanJSON(value, &l.SizeBreakdown)
}

type ReturnsColumn struct {
	ledger.ReturnsBreakdown
}

func (r ReturnsColumn) Value() (driver.Value, error) {
	return json.Marshal(r.ReturnsBreakdown)
}

func (r *ReturnsColumn) Scan(value interface{}) error {
	return scanJSON(value, &r.ReturnsBreakdown)
}

type OutrightColumn struct {
	ledger.OutrightBreakdown
}

func (o OutrightColumn) Value() (driver.Value, error) {
	return json.Marshal(o.OutrightBreakdown)
}

func (o *OutrightColumn) Scan(value interface{}) error {
	return scanJSON(value, &o.OutrightBreakdown)
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dest)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T", value)
	}
}

// Transaction is one customer visit under the reconciled ledger model.
// The breakdown columns are the raw input; total_bill, financial_balance
// and the cylinder_balance columns are derived server-side on every write
// and are authoritative once stored.
type Transaction struct {
	ID         uint     `gorm:"primaryKey" json:"id"`
	CustomerID uint     `gorm:"not null;index" json:"customer_id"`
	Customer   Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	UserID     uint     `gorm:"not null;index" json:"user_id"`
	User       *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`

	TransactionNumber string    `gorm:"type:varchar(10);uniqueIndex" json:"transaction_number"`
	Date              time.Time `gorm:"not null;index" json:"date"`

	LoadBreakdown     LoadColumn     `gorm:"type:text" json:"load_breakdown"`
	ReturnsBreakdown  ReturnsColumn  `gorm:"type:text" json:"returns_breakdown"`
	OutrightBreakdown OutrightColumn `gorm:"type:text" json:"outright_breakdown"`
	TotalLoad         int            `gorm:"not null;default:0" json:"total_load"`
	TotalReturns      int            `gorm:"not null;default:0" json:"total_returns"`

	TotalBill        float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_bill"`
	AmountPaid       float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"amount_paid"`
	FinancialBalance float64 `gorm:"type:decimal(10,2);not null;default:0.00" json:"financial_balance"`

	CylinderBalance6kg  int `gorm:"column:cylinder_balance_6kg;not null;default:0" json:"cylinder_balance_6kg"`
	CylinderBalance13kg int `gorm:"column:cylinder_balance_13kg;not null;default:0" json:"cylinder_balance_13kg"`
	CylinderBalance50kg int `gorm:"column:cylinder_balance_50kg;not null;default:0" json:"cylinder_balance_50kg"`
	CylinderBalance     int `gorm:"not null;default:0" json:"cylinder_balance"`

	PaymentMethod string `gorm:"type:varchar(20);not null;default:'credit'" json:"payment_method"` // cash, mpesa, card, transfer, credit
	Notes         string `gorm:"type:text" json:"notes"`
	Status        string `gorm:"type:varchar(20);not null;default:'completed'" json:"status"` // completed, pending, cancelled

	// Raw legacy flat-field payload for rows created before the breakdown
	// model; emptied once the startup migration converts the row.
	LegacyPayload *string `gorm:"type:text" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Totals re-derives the ledger view of this transaction from its raw
// breakdowns.
func (t *Transaction) Totals() ledger.Totals {
	return ledger.ComputeTotals(
		t.LoadBreakdown.SizeBreakdown,
		t.ReturnsBreakdown.ReturnsBreakdown,
		t.OutrightBreakdown.OutrightBreakdown,
		t.AmountPaid,
	)
}

// ApplyTotals caches derived values onto the row.
func (t *Transaction) ApplyTotals(totals ledger.Totals) {
	t.TotalBill = totals.TotalBill
	t.AmountPaid = totals.AmountPaid
	t.FinancialBalance = totals.FinancialBalance
	t.CylinderBalance6kg = totals.CylinderDelta.Kg6
	t.CylinderBalance13kg = totals.CylinderDelta.Kg13
	t.CylinderBalance50kg = totals.CylinderDelta.Kg50
	t.CylinderBalance = totals.CylinderDeltaTotal()
	t.TotalLoad = t.LoadBreakdown.Total()
	t.TotalReturns = t.ReturnsBreakdown.Total()
}
