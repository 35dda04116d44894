package Controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/controllers"
	"github.com/kmathenge/gasflow-app/database"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

// newTestDB opens a named in-memory database so each test gets its own
// isolated schema.
func newTestDB(name string, entities ...interface{}) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	if err := db.AutoMigrate(entities...); err != nil {
		panic(err)
	}
	return db
}

// withAuth injects the context keys the auth middleware would set.
func withAuth(userID uint, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", role)
		c.Next()
	}
}

func performJSON(router *gin.Engine, method, url string, payload interface{}) *httptest.ResponseRecorder {
	var body *bytes.Buffer
	if payload != nil {
		raw, _ := json.Marshal(payload)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func setupTransactionEnv(name, role string) (*gorm.DB, *gin.Engine) {
	utils.InitLogger()
	db := newTestDB(name, &models.Customer{}, &models.Transaction{}, &models.Payment{}, &models.PendingApproval{})
	db.Create(&models.Customer{Name: "Wanjiku Stores", Phone: "0712345678"})

	gin.SetMode(gin.TestMode)
	router := gin.New()
	txnCtrl := controllers.NewTransactionController(db)
	router.POST("/transactions", withAuth(1, role), txnCtrl.CreateTransaction)
	router.PUT("/transactions/:transaction_id", withAuth(1, role), txnCtrl.UpdateTransaction)
	router.GET("/transactions", withAuth(1, role), txnCtrl.GetAllTransactions)
	router.GET("/transactions/:transaction_id", withAuth(1, role), txnCtrl.GetTransactionByID)
	router.DELETE("/transactions/:transaction_id", withAuth(1, role), txnCtrl.DeleteTransaction)
	return db, router
}

// refillVisit is two 6kg refills at the standard rate, fully reconciled.
func refillVisit(amountPaid float64) map[string]interface{} {
	return map[string]interface{}{
		"customer_id": 1,
		"load_breakdown": map[string]interface{}{
			"kg6": 2,
		},
		"returns_breakdown": map[string]interface{}{
			"max_empty":   map[string]interface{}{"kg6": 2, "price6": 135},
			"swap_empty":  map[string]interface{}{},
			"return_full": map[string]interface{}{},
		},
		"outright_breakdown": map[string]interface{}{},
		"amount_paid":        amountPaid,
		"payment_method":     "cash",
	}
}

func TestCreateTransactionComputesTotals(t *testing.T) {
	db, router := setupTransactionEnv("txn_create", "admin")

	w := performJSON(router, "POST", "/transactions", refillVisit(1000))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	resp := decodeEnvelope(t, w)
	assert.Equal(t, "Transaction created", resp["message"])
	data := resp["data"].(map[string]interface{})

	// 2 cylinders x 135/kg x 6kg = 1620, all derived server-side
	assert.Equal(t, 1620.0, data["total_bill"])
	assert.Equal(t, 1000.0, data["amount_paid"])
	assert.Equal(t, 620.0, data["financial_balance"])
	assert.Equal(t, 0.0, data["cylinder_balance"])
	assert.Equal(t, "A0001", data["transaction_number"])
	assert.Equal(t, "cash", data["payment_method"])

	var customer models.Customer
	require.NoError(t, db.First(&customer, 1).Error)
	assert.Equal(t, 620.0, customer.FinancialBalance)
	assert.Equal(t, 0, customer.CylinderBalance)
	assert.NotNil(t, customer.LastTransactionDate)
}

func TestCreateTransactionIgnoresClientTotals(t *testing.T) {
	_, router := setupTransactionEnv("txn_tamper", "admin")

	payload := refillVisit(0)
	payload["total_bill"] = 1.0 // must be recomputed, not trusted

	w := performJSON(router, "POST", "/transactions", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 1620.0, data["total_bill"])
}

func TestCreateTransactionRejectsUnreconciledLoad(t *testing.T) {
	db, router := setupTransactionEnv("txn_mismatch", "admin")

	payload := map[string]interface{}{
		"customer_id":    1,
		"load_breakdown": map[string]interface{}{"kg13": 3},
		"returns_breakdown": map[string]interface{}{
			"max_empty": map[string]interface{}{},
		},
		"outright_breakdown": map[string]interface{}{},
	}

	w := performJSON(router, "POST", "/transactions", payload)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, decodeEnvelope(t, w)["message"], "cylinders OUT do not match")

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Zero(t, count, "rejected visit must not be stored")
}

func TestCreateTransactionUnknownCustomer(t *testing.T) {
	_, router := setupTransactionEnv("txn_nocust", "admin")

	payload := refillVisit(0)
	payload["customer_id"] = 99

	w := performJSON(router, "POST", "/transactions", payload)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUnpaidVisitBecomesCreditSale(t *testing.T) {
	_, router := setupTransactionEnv("txn_credit", "admin")

	payload := refillVisit(0)
	payload["payment_method"] = "mpesa" // overridden: nothing was paid

	w := performJSON(router, "POST", "/transactions", payload)
	require.Equal(t, http.StatusCreated, w.Code)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, "credit", data["payment_method"])
	assert.Equal(t, 1620.0, data["financial_balance"])
}

func TestTransactionNumbersAreSequential(t *testing.T) {
	_, router := setupTransactionEnv("txn_numbers", "admin")

	for i, want := range []string{"A0001", "A0002", "A0003"} {
		w := performJSON(router, "POST", "/transactions", refillVisit(0))
		require.Equal(t, http.StatusCreated, w.Code, "create %d", i)
		data := decodeEnvelope(t, w)["data"].(map[string]interface{})
		assert.Equal(t, want, data["transaction_number"])
	}
}

func TestUpdateTransactionReversesOldAggregates(t *testing.T) {
	db, router := setupTransactionEnv("txn_update", "admin")

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	var customer models.Customer
	db.First(&customer, 1)
	require.Equal(t, 1620.0, customer.FinancialBalance)

	// edit down to a single 6kg refill
	payload := refillVisit(0)
	payload["load_breakdown"] = map[string]interface{}{"kg6": 1}
	payload["returns_breakdown"] = map[string]interface{}{
		"max_empty": map[string]interface{}{"kg6": 1, "price6": 135},
	}

	w = performJSON(router, "PUT", "/transactions/1", payload)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	assert.Equal(t, 810.0, data["total_bill"])

	// customer carries only the edited transaction, not both versions
	db.First(&customer, 1)
	assert.Equal(t, 810.0, customer.FinancialBalance)
	assert.Equal(t, 0, customer.CylinderBalance)
}

func TestUpdateTransactionCannotChangeCustomer(t *testing.T) {
	db, router := setupTransactionEnv("txn_move", "admin")
	db.Create(&models.Customer{Name: "Otieno Gas", Phone: "0798765432"})

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	payload := refillVisit(0)
	payload["customer_id"] = 2

	w = performJSON(router, "PUT", "/transactions/1", payload)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, decodeEnvelope(t, w)["message"], "cannot be moved")
}

func TestAdminDeleteReversesAggregates(t *testing.T) {
	db, router := setupTransactionEnv("txn_delete", "admin")

	w := performJSON(router, "POST", "/transactions", refillVisit(500))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "DELETE", "/transactions/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	assert.Zero(t, count)

	var customer models.Customer
	db.First(&customer, 1)
	assert.Equal(t, 0.0, customer.FinancialBalance)
	assert.Equal(t, 0, customer.CylinderBalance)
}

// Deleting a converted first-generation row must reverse the amounts
// the row actually recorded. Conversion normalizes the per-cylinder
// refill prices to per kg, so the reversal recompute matches the stored
// bill instead of a weight-inflated figure.
func TestAdminDeleteReversesConvertedLegacyRow(t *testing.T) {
	db, router := setupTransactionEnv("txn_delete_legacy", "admin")

	// 2x13kg refill at 3500 per cylinder, billed 7000, 5000 paid
	payload := `{
		"totalCylinders13kg": 2,
		"return13kg": 1,
		"swipeReturn13kg": 1,
		"refillPrice13kg": 3500,
		"swipeRefillPrice13kg": 3500,
		"paid": 5000
	}`
	require.NoError(t, db.Create(&models.Transaction{
		CustomerID:    1,
		UserID:        1,
		Date:          time.Now(),
		TotalBill:     7000,
		AmountPaid:    5000,
		PaymentMethod: "cash",
		LegacyPayload: &payload,
	}).Error)
	require.NoError(t, database.RunMigrations(db))
	require.NoError(t, db.Model(&models.Customer{}).Where("id = 1").
		Update("financial_balance", 2000).Error)

	w := performJSON(router, "DELETE", "/transactions/1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var customer models.Customer
	db.First(&customer, 1)
	assert.InDelta(t, 0.0, customer.FinancialBalance, 0.01)
	assert.Equal(t, 0, customer.CylinderBalance)
}

// Editing a converted row reverses its recorded contribution before
// applying the new visit, so a fully settled legacy visit edited into a
// credit sale leaves the customer owing exactly the new bill.
func TestUpdateConvertedLegacyRowReversesRecordedAmounts(t *testing.T) {
	db, router := setupTransactionEnv("txn_update_legacy", "admin")

	// 2x13kg refill at 3500 per cylinder, billed 7000 and fully paid
	payload := `{
		"totalCylinders13kg": 2,
		"return13kg": 1,
		"swipeReturn13kg": 1,
		"refillPrice13kg": 3500,
		"swipeRefillPrice13kg": 3500,
		"paid": 7000
	}`
	require.NoError(t, db.Create(&models.Transaction{
		CustomerID:    1,
		UserID:        1,
		Date:          time.Now(),
		TotalBill:     7000,
		AmountPaid:    7000,
		PaymentMethod: "cash",
		LegacyPayload: &payload,
	}).Error)
	require.NoError(t, database.RunMigrations(db))

	w := performJSON(router, "PUT", "/transactions/1", refillVisit(0))
	require.Equal(t, http.StatusOK, w.Code)

	var customer models.Customer
	db.First(&customer, 1)
	assert.InDelta(t, 1620.0, customer.FinancialBalance, 0.01)
	assert.Equal(t, 0, customer.CylinderBalance)
}

func TestStaffDeleteQueuesApproval(t *testing.T) {
	db, router := setupTransactionEnv("txn_approval", "staff")

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "DELETE", "/transactions/1?reason=double+entry", nil)
	assert.Equal(t, http.StatusAccepted, w.Code)

	// transaction survives until an admin reviews the request
	var txnCount int64
	db.Model(&models.Transaction{}).Count(&txnCount)
	assert.Equal(t, int64(1), txnCount)

	var approval models.PendingApproval
	require.NoError(t, db.First(&approval).Error)
	assert.Equal(t, "delete_transaction", approval.Action)
	assert.Equal(t, "pending", approval.Status)
	assert.Equal(t, uint(1), approval.TargetID)
	assert.Equal(t, "double entry", approval.Reason)
}

func TestListTransactionsFiltersByCustomer(t *testing.T) {
	db, router := setupTransactionEnv("txn_list", "admin")
	db.Create(&models.Customer{Name: "Otieno Gas", Phone: "0798765432"})

	w := performJSON(router, "POST", "/transactions", refillVisit(0))
	require.Equal(t, http.StatusCreated, w.Code)

	other := refillVisit(0)
	other["customer_id"] = 2
	w = performJSON(router, "POST", "/transactions", other)
	require.Equal(t, http.StatusCreated, w.Code)

	w = performJSON(router, "GET", "/transactions?customer_id=2", nil)
	require.Equal(t, http.StatusOK, w.Code)

	data := decodeEnvelope(t, w)["data"].(map[string]interface{})
	transactions := data["transactions"].([]interface{})
	require.Len(t, transactions, 1)
	first := transactions[0].(map[string]interface{})
	assert.Equal(t, 2.0, first["customer_id"])
}
