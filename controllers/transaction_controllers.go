package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/events"
	"github.com/kmathenge/gasflow-app/ledger"
	"github.com/kmathenge/gasflow-app/middlewares"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

type TransactionController struct {
	DB *gorm.DB
}

func NewTransactionController(db *gorm.DB) *TransactionController {
	return &TransactionController{DB: db}
}

// transactionRequest is the raw breakdown payload. Clients never send
// derived totals; the server recomputes everything from these fields.
type transactionRequest struct {
	CustomerID        uint                     `json:"customer_id" binding:"required"`
	Date              *time.Time               `json:"date"`
	LoadBreakdown     ledger.SizeBreakdown     `json:"load_breakdown"`
	ReturnsBreakdown  ledger.ReturnsBreakdown  `json:"returns_breakdown"`
	OutrightBreakdown ledger.OutrightBreakdown `json:"outright_breakdown"`
	AmountPaid        float64                  `json:"amount_paid"`
	PaymentMethod     string                   `json:"payment_method"`
	Notes             string                   `json:"notes"`
}

// CreateTransaction records a visit under the reconciled ledger model.
// The reconciliation invariant, total bill, balances and transaction
// number are all enforced/derived here, inside one DB transaction, so
// concurrent writes for the same customer cannot leave the stored
// aggregates inconsistent.
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ledger.ValidateReconciliation(req.LoadBreakdown, req.ReturnsBreakdown); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	userID := currentUserID(c)
	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	var txn models.Transaction
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		var customer models.Customer
		if err := tx.First(&customer, req.CustomerID).Error; err != nil {
			return errCustomerNotFound
		}

		totals := ledger.ComputeTotals(req.LoadBreakdown, req.ReturnsBreakdown, req.OutrightBreakdown, req.AmountPaid)

		number, err := nextTransactionNumber(tx)
		if err != nil {
			return err
		}

		txn = models.Transaction{
			CustomerID:        customer.ID,
			UserID:            userID,
			TransactionNumber: number,
			Date:              date,
			LoadBreakdown:     models.LoadColumn{SizeBreakdown: req.LoadBreakdown},
			ReturnsBreakdown:  models.ReturnsColumn{ReturnsBreakdown: req.ReturnsBreakdown},
			OutrightBreakdown: models.OutrightColumn{OutrightBreakdown: req.OutrightBreakdown},
			PaymentMethod:     normalizePaymentMethod(req.PaymentMethod, totals.AmountPaid),
			Notes:             req.Notes,
			Status:            "completed",
		}
		txn.ApplyTotals(totals)

		if err := tx.Create(&txn).Error; err != nil {
			return err
		}

		applyTotalsToCustomer(&customer, totals, +1)
		customer.LastTransactionDate = &date
		return tx.Save(&customer).Error
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Transaction %s created for customer %d (bill=%.2f, paid=%.2f)",
		txn.TransactionNumber, txn.CustomerID, txn.TotalBill, txn.AmountPaid)
	events.BroadcastTransactionUpdate(txn)

	utils.RespondJSON(c, http.StatusCreated, "Transaction created", txn)
}

// UpdateTransaction re-runs the same pipeline for an edit: the customer's
// aggregates first have the old transaction reversed out of them, then
// the recomputed one applied.
func (tc *TransactionController) UpdateTransaction(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("transaction_id"))

	var req transactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := ledger.ValidateReconciliation(req.LoadBreakdown, req.ReturnsBreakdown); err != nil {
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	var txn models.Transaction
	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&txn, id).Error; err != nil {
			return errTransactionNotFound
		}
		if req.CustomerID != txn.CustomerID {
			return errors.New("transaction cannot be moved to another customer")
		}

		var customer models.Customer
		if err := tx.First(&customer, txn.CustomerID).Error; err != nil {
			return errCustomerNotFound
		}

		applyTotalsToCustomer(&customer, txn.Totals(), -1)

		txn.LoadBreakdown = models.LoadColumn{SizeBreakdown: req.LoadBreakdown}
		txn.ReturnsBreakdown = models.ReturnsColumn{ReturnsBreakdown: req.ReturnsBreakdown}
		txn.OutrightBreakdown = models.OutrightColumn{OutrightBreakdown: req.OutrightBreakdown}
		txn.Notes = req.Notes
		if req.Date != nil {
			txn.Date = *req.Date
		}

		totals := ledger.ComputeTotals(req.LoadBreakdown, req.ReturnsBreakdown, req.OutrightBreakdown, req.AmountPaid)
		txn.ApplyTotals(totals)
		txn.PaymentMethod = normalizePaymentMethod(req.PaymentMethod, totals.AmountPaid)

		if err := tx.Save(&txn).Error; err != nil {
			return err
		}

		applyTotalsToCustomer(&customer, totals, +1)
		return tx.Save(&customer).Error
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	events.BroadcastTransactionUpdate(txn)
	utils.RespondJSON(c, http.StatusOK, "Transaction updated", txn)
}

// GetAllTransactions -> list with optional customer/date filters and
// pagination.
func (tc *TransactionController) GetAllTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := tc.DB.Model(&models.Transaction{})
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if start := c.Query("start_date"); start != "" {
		query = query.Where("date >= ?", start)
	}
	if end := c.Query("end_date"); end != "" {
		query = query.Where("date <= ?", end)
	}

	var count int64
	query.Count(&count)

	var transactions []models.Transaction
	if err := query.Order("date DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of transactions", gin.H{
		"transactions": transactions,
		"pagination": gin.H{
			"current_page": page,
			"total_items":  count,
			"total_pages":  (count + int64(limit) - 1) / int64(limit),
		},
	})
}

// GetTransactionByID -> detail of one transaction.
func (tc *TransactionController) GetTransactionByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("transaction_id"))

	var txn models.Transaction
	if err := tc.DB.Preload("Customer").First(&txn, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction detail", txn)
}

// DeleteTransaction removes a transaction and reverses it out of the
// customer's aggregates. Admins delete directly; other roles get a
// pending approval queued instead.
func (tc *TransactionController) DeleteTransaction(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("transaction_id"))

	if !middlewares.IsAdmin(c) {
		approval := models.PendingApproval{
			Action:      "delete_transaction",
			TargetTable: "transactions",
			TargetID:    uint(id),
			Reason:      c.Query("reason"),
			RequestedBy: currentUserID(c),
			Status:      "pending",
		}
		if err := tc.DB.Create(&approval).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusAccepted, "Deletion queued for approval", approval)
		return
	}

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		return deleteTransactionTx(tx, uint(id))
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction deleted", nil)
}

// deleteTransactionTx removes one transaction inside an open DB
// transaction, reversing its effect on the customer's stored aggregates.
// Shared with the approval controller.
func deleteTransactionTx(tx *gorm.DB, id uint) error {
	var txn models.Transaction
	if err := tx.First(&txn, id).Error; err != nil {
		return errTransactionNotFound
	}

	var customer models.Customer
	if err := tx.First(&customer, txn.CustomerID).Error; err != nil {
		return errCustomerNotFound
	}

	applyTotalsToCustomer(&customer, txn.Totals(), -1)

	if err := tx.Delete(&txn).Error; err != nil {
		return err
	}
	return tx.Save(&customer).Error
}

var (
	errCustomerNotFound    = errors.New("customer not found")
	errTransactionNotFound = errors.New("transaction not found")
)

func respondTransactionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errCustomerNotFound), errors.Is(err, errTransactionNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, ledger.ErrReconciliationMismatch):
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// normalizePaymentMethod forces "credit" when nothing was paid; an unpaid
// visit is a credit sale whatever the client claims.
func normalizePaymentMethod(method string, amountPaid float64) string {
	if amountPaid == 0 {
		return "credit"
	}
	switch method {
	case "cash", "mpesa", "card", "transfer", "credit":
		return method
	default:
		return "cash"
	}
}

// applyTotalsToCustomer folds one transaction's totals into the stored
// customer aggregates; sign -1 reverses a previously applied transaction.
func applyTotalsToCustomer(customer *models.Customer, totals ledger.Totals, sign int) {
	s := float64(sign)
	customer.FinancialBalance += s * totals.FinancialBalance
	customer.CylinderBalance6kg += sign * totals.CylinderDelta.Kg6
	customer.CylinderBalance13kg += sign * totals.CylinderDelta.Kg13
	customer.CylinderBalance50kg += sign * totals.CylinderDelta.Kg50
	customer.CylinderBalance += sign * totals.CylinderDeltaTotal()
}

// nextTransactionNumber issues sequential display numbers: A0001..A9999,
// then B0001 and so on. Runs inside the caller's DB transaction.
func nextTransactionNumber(tx *gorm.DB) (string, error) {
	var last models.Transaction
	err := tx.Where("transaction_number != ''").
		Order("transaction_number DESC").
		Limit(1).
		Find(&last).Error
	if err != nil {
		return "", err
	}

	if last.TransactionNumber == "" {
		return "A0001", nil
	}

	letter := last.TransactionNumber[0]
	seq, err := strconv.Atoi(last.TransactionNumber[1:])
	if err != nil {
		return "", fmt.Errorf("malformed transaction number %q", last.TransactionNumber)
	}

	seq++
	if seq > 9999 {
		letter++
		seq = 1
	}
	return fmt.Sprintf("%c%04d", letter, seq), nil
}

func currentUserID(c *gin.Context) uint {
	v, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	id, _ := v.(uint)
	return id
}
