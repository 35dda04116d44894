package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/events"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// CreatePayment captures a payment against an existing transaction's
// outstanding balance. The transaction's amount_paid and the customer's
// financial balance are adjusted in the same DB transaction, so the
// stored aggregates stay derivable from transaction history alone.
func (pc *PaymentController) CreatePayment(c *gin.Context) {
	type reqBody struct {
		TransactionID uint    `json:"transaction_id" binding:"required"`
		Amount        float64 `json:"amount" binding:"required,gt=0"`
		PaymentMethod string  `json:"payment_method" binding:"required"`
		Reference     string  `json:"reference"`
		Notes         string  `json:"notes"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	switch req.PaymentMethod {
	case "cash", "mpesa", "card", "transfer":
	default:
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid payment method"))
		return
	}

	reference := req.Reference
	if reference == "" {
		reference = uuid.New().String()
	}

	var payment models.Payment
	err := pc.DB.Transaction(func(tx *gorm.DB) error {
		var txn models.Transaction
		if err := tx.First(&txn, req.TransactionID).Error; err != nil {
			return errTransactionNotFound
		}

		var customer models.Customer
		if err := tx.First(&customer, txn.CustomerID).Error; err != nil {
			return errCustomerNotFound
		}

		receiptNumber, err := nextReceiptNumber(tx)
		if err != nil {
			return err
		}

		now := time.Now()
		payment = models.Payment{
			TransactionID: txn.ID,
			CustomerID:    customer.ID,
			Amount:        req.Amount,
			PaymentMethod: req.PaymentMethod,
			Reference:     reference,
			ReceiptNumber: receiptNumber,
			Status:        "completed",
			Notes:         req.Notes,
			ProcessedBy:   currentUserID(c),
			PaymentDate:   now,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		txn.AmountPaid += req.Amount
		txn.FinancialBalance = txn.TotalBill - txn.AmountPaid
		if err := tx.Save(&txn).Error; err != nil {
			return err
		}

		customer.FinancialBalance -= req.Amount
		return tx.Save(&customer).Error
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Payment %s captured: %.2f against transaction %d",
		payment.ReceiptNumber, payment.Amount, payment.TransactionID)
	events.BroadcastPaymentUpdate(payment)

	utils.RespondJSON(c, http.StatusCreated, "Payment recorded", payment)
}

// GetPayments -> list, filterable by customer or transaction.
func (pc *PaymentController) GetPayments(c *gin.Context) {
	query := pc.DB.Model(&models.Payment{})
	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}
	if transactionID := c.Query("transaction_id"); transactionID != "" {
		query = query.Where("transaction_id = ?", transactionID)
	}

	var payments []models.Payment
	if err := query.Order("payment_date DESC").Limit(100).Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of payments", payments)
}

// GetPaymentByID -> detail of one payment.
func (pc *PaymentController) GetPaymentByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("payment_id"))

	var payment models.Payment
	if err := pc.DB.Preload("Transaction").Preload("Customer").First(&payment, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Payment detail", payment)
}

// nextReceiptNumber issues RCP-YYYYMMDD-0001 style numbers, resetting the
// counter daily. Runs inside the caller's DB transaction.
func nextReceiptNumber(tx *gorm.DB) (string, error) {
	today := time.Now().Format("20060102")

	var count int64
	if err := tx.Model(&models.Payment{}).
		Where("receipt_number LIKE ?", "RCP-"+today+"-%").
		Count(&count).Error; err != nil {
		return "", err
	}

	return fmt.Sprintf("RCP-%s-%04d", today, count+1), nil
}
