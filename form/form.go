// Package form implements the interactive transaction reconciliation
// form: live preview of totals while the operator types, the same-visit
// reconciliation check before submit, and the submit round-trip to the
// persistence gateway. All derived numbers shown here are previews; the
// server recomputes the authoritative ones from the raw breakdowns.
package form

import (
	"context"
	"errors"

	"github.com/kmathenge/gasflow-app/ledger"
)

type State int

const (
	StateEditing State = iota
	StateValidating
	StateRejected
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEditing:
		return "editing"
	case StateValidating:
		return "validating"
	case StateRejected:
		return "rejected"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	ErrNoCustomer     = errors.New("select a customer before saving")
	ErrSubmitInFlight = errors.New("submission already in progress")
)

// Form is the reconciliation form's state. Not safe for concurrent use;
// one form serves one operator.
type Form struct {
	gateway Gateway

	current   State
	lastError error

	customerID    uint
	editingID     *uint // non-nil in edit mode
	Load          ledger.SizeBreakdown
	Returns       ledger.ReturnsBreakdown
	Outright      ledger.OutrightBreakdown
	AmountPaid    float64
	PaymentMethod string
	Notes         string
}

func New(gateway Gateway) *Form {
	f := &Form{gateway: gateway}
	f.resetFields()
	return f
}

func (f *Form) resetFields() {
	f.customerID = 0
	f.editingID = nil
	f.Load = ledger.SizeBreakdown{}
	f.Returns = ledger.DefaultReturns()
	f.Outright = ledger.DefaultOutright()
	f.AmountPaid = 0
	f.PaymentMethod = "cash"
	f.Notes = ""
}

func (f *Form) State() State     { return f.current }
func (f *Form) LastError() error { return f.lastError }

// SetCustomer picks the customer this visit belongs to.
func (f *Form) SetCustomer(id uint) {
	f.customerID = id
	f.current = StateEditing
}

// SetLoadEntry coerces one typed load quantity; malformed input becomes 0.
func (f *Form) SetLoadEntry(sizeKg int, raw string) {
	n := ledger.ParseQuantity(raw)
	switch sizeKg {
	case ledger.WeightKg6:
		f.Load.Kg6 = n
	case ledger.WeightKg13:
		f.Load.Kg13 = n
	case ledger.WeightKg50:
		f.Load.Kg50 = n
	}
	f.current = StateEditing
}

// SetAmountPaidEntry coerces the typed amount; malformed input becomes 0.
func (f *Form) SetAmountPaidEntry(raw string) {
	f.AmountPaid = ledger.ParseAmount(raw)
	f.current = StateEditing
}

// Preview recomputes the running totals shown beside the form. Display
// only; never sent to the gateway.
func (f *Form) Preview() ledger.Totals {
	return ledger.ComputeTotals(f.Load, f.Returns, f.Outright, f.AmountPaid)
}

// Suggested is the load implied by returns plus outright purchases.
func (f *Form) Suggested() ledger.SizeBreakdown {
	return ledger.SuggestedLoad(f.Returns, f.Outright)
}

// LoadDiverges flags when the manually entered load differs from the
// suggestion. Informational only; it never blocks submission.
func (f *Form) LoadDiverges() bool {
	return f.Load != f.Suggested()
}

// AutoFillLoad copies the suggested values into the editable load fields.
func (f *Form) AutoFillLoad() {
	f.Load = f.Suggested()
	f.current = StateEditing
}

// QuickFillFull sets amount paid to the live total bill.
func (f *Form) QuickFillFull() {
	f.AmountPaid = f.Preview().TotalBill
}

// QuickFillHalf sets amount paid to exactly half the live total bill.
func (f *Form) QuickFillHalf() {
	f.AmountPaid = f.Preview().TotalBill / 2
}

// QuickFillNone clears the payment; the sale goes on credit.
func (f *Form) QuickFillNone() {
	f.AmountPaid = 0
}

// Prefill loads an existing transaction into the form for editing. Rows
// created before the breakdown model carry no breakdown data; those
// fields fall back to the form defaults.
func (f *Form) Prefill(record TransactionRecord) {
	f.resetFields()
	f.customerID = record.CustomerID
	id := record.ID
	f.editingID = &id

	if record.LoadBreakdown != nil {
		f.Load = *record.LoadBreakdown
	}
	if record.ReturnsBreakdown != nil {
		f.Returns = *record.ReturnsBreakdown
	}
	if record.OutrightBreakdown != nil {
		f.Outright = *record.OutrightBreakdown
	}
	f.AmountPaid = record.AmountPaid
	if record.PaymentMethod != "" {
		f.PaymentMethod = record.PaymentMethod
	}
	f.Notes = record.Notes
	f.current = StateEditing
}

// Submit validates and, if clean, sends the raw breakdowns to the
// gateway. The submit control stays disabled for the duration (a second
// call while in flight fails fast). On success every field resets; on
// rejection or gateway failure the operator's values are preserved so
// they can correct and retry.
func (f *Form) Submit(ctx context.Context) error {
	if f.current == StateSubmitting {
		return ErrSubmitInFlight
	}

	f.current = StateValidating
	f.lastError = nil

	if f.customerID == 0 {
		f.lastError = ErrNoCustomer
		f.current = StateRejected
		return ErrNoCustomer
	}
	if err := ledger.ValidateReconciliation(f.Load, f.Returns); err != nil {
		f.lastError = err
		f.current = StateRejected
		return err
	}

	req := TransactionRequest{
		CustomerID:        f.customerID,
		LoadBreakdown:     f.Load,
		ReturnsBreakdown:  f.Returns,
		OutrightBreakdown: f.Outright,
		TotalLoad:         f.Load.Total(),
		AmountPaid:        f.AmountPaid,
		PaymentMethod:     f.PaymentMethod,
		Notes:             f.Notes,
	}

	f.current = StateSubmitting
	var err error
	if f.editingID != nil {
		_, err = f.gateway.UpdateTransaction(ctx, *f.editingID, req)
	} else {
		_, err = f.gateway.CreateTransaction(ctx, req)
	}

	if err != nil {
		f.lastError = err
		f.current = StateFailed
		return err
	}

	f.resetFields()
	f.current = StateSucceeded
	return nil
}
