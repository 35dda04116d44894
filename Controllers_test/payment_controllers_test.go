package Controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/controllers"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

func setupPaymentEnv(name string) (*gorm.DB, *gin.Engine) {
	utils.InitLogger()
	db := newTestDB(name, &models.Customer{}, &models.Transaction{}, &models.Payment{})
	db.Create(&models.Customer{Name: "Wanjiku Stores", Phone: "0712345678"})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	txnCtrl := controllers.NewTransactionController(db)
	payCtrl := controllers.NewPaymentController(db)
	router.POST("/transactions", withAuth(1, "admin"), txnCtrl.CreateTransaction)
	router.POST("/payments", withAuth(1, "admin"), payCtrl.CreatePayment)
	router.GET("/payments", withAuth(1, "admin"), payCtrl.GetPayments)
	router.GET("/payments/:payment_id", withAuth(1, "admin"), payCtrl.GetPaymentByID)
	return db, router
}

func TestCreatePaymentSettlesBalance(t *testing.T) {
	db, router := setupPaymentEnv("pay_create")

	// credit sale: 1620 outstanding
	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "POST", "/payments", map[string]interface{}{
		"transaction_id": 1,
		"amount":         1000,
		"payment_method": "mpesa",
		"reference":      "QX12AB34CD",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	today := time.Now().Format("20060102")
	assert.Equal(t, fmt.Sprintf("RCP-%s-0001", today), data["receipt_number"])
	assert.Equal(t, "QX12AB34CD", data["reference"])

	// the transaction and the customer both reflect the payment
	var txn models.Transaction
	require.NoError(t, db.First(&txn, 1).Error)
	assert.Equal(t, 1000.0, txn.AmountPaid)
	assert.Equal(t, 620.0, txn.FinancialBalance)

	var customer models.Customer
	require.NoError(t, db.First(&customer, 1).Error)
	assert.Equal(t, 620.0, customer.FinancialBalance)
}

func TestReceiptNumbersCountUpWithinTheDay(t *testing.T) {
	_, router := setupPaymentEnv("pay_numbers")

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	today := time.Now().Format("20060102")
	for i := 1; i <= 2; i++ {
		w = performJSON(router, "POST", "/payments", map[string]interface{}{
			"transaction_id": 1,
			"amount":         100,
			"payment_method": "cash",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		data := decodeEnvelope(t, w)["data"].(map[string]interface{})
		assert.Equal(t, fmt.Sprintf("RCP-%s-%04d", today, i), data["receipt_number"])
	}
}

func TestCreatePaymentRejectsBadMethod(t *testing.T) {
	_, router := setupPaymentEnv("pay_method")

	w := performJSON(router, "POST", "/payments", map[string]interface{}{
		"transaction_id": 1,
		"amount":         100,
		"payment_method": "goats",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeEnvelope(t, w)["message"], "invalid payment method")
}

func TestCreatePaymentGeneratesReferenceWhenOmitted(t *testing.T) {
	_, router := setupPaymentEnv("pay_ref")

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "POST", "/payments", map[string]interface{}{
		"transaction_id": 1,
		"amount":         50,
		"payment_method": "cash",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.NotEmpty(t, data["reference"])
}

func TestListPaymentsFiltersByTransaction(t *testing.T) {
	db, router := setupPaymentEnv("pay_list")
	db.Create(&models.Customer{Name: "Otieno Gas", Phone: "0798765432"})

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)
	other := refillVisit(0)
	other["customer_id"] = 2
	w = performJSON(router, "POST", "/transactions", other)
	require.Equal(t, http.StatusCreated, w.Code)

	for _, txnID := range []int{1, 2} {
		w = performJSON(router, "POST", "/payments", map[string]interface{}{
			"transaction_id": txnID,
			"amount":         100,
			"payment_method": "cash",
		})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w = performJSON(router, "GET", "/payments?transaction_id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	payments := decodeEnvelope(t, w)["data"].([]interface{})
	require.Len(t, payments, 1)
	assert.Equal(t, 2.0, payments[0].(map[string]interface{})["transaction_id"])
}
