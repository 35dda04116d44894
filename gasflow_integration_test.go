package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/router"
	"github.com/kmathenge/gasflow-app/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndIntegration walks the main business flow through the real
// router with a real JWT:
// 1. Login as the seeded admin -> token
// 2. Create a customer
// 3. Record a reconciled visit (credit sale)
// 4. Capture a payment against the outstanding balance
// 5. Generate a receipt
// 6. Pull the customer statement and check the books agree
func TestEndToEndIntegration(t *testing.T) {
	db := setupIntegrationDB()
	r := router.SetupRouter(db)

	token := loginTest(t, r)
	customerID := createCustomerTest(t, r, token)
	txnID := createTransactionTest(t, r, token, customerID)
	payTransactionTest(t, r, token, txnID)
	generateReceiptTest(t, r, token, txnID)
	checkStatementTest(t, r, token, customerID)
}

// The per-IP limiter is wired into the router ahead of the routes, so a
// burst past its per-second budget gets throttled on any endpoint.
func TestGlobalRateLimiterThrottlesBursts(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:ratelimit?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	r := router.SetupRouter(db)

	throttled := 0
	for i := 0; i < 55; i++ {
		req, _ := http.NewRequest("GET", "/ping", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if i == 0 {
			require.Equal(t, http.StatusOK, w.Code)
		}
		if w.Code == http.StatusTooManyRequests {
			throttled++
		}
	}
	assert.NotZero(t, throttled, "burst past the per-second budget must hit 429s")
}

func setupIntegrationDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:integration?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Customer{},
		&models.Transaction{},
		&models.Payment{},
		&models.Receipt{},
		&models.ReceiptItem{},
		&models.PendingApproval{},
		&models.LedgerChange{},
	)
	if err != nil {
		panic(err)
	}

	hashed, _ := bcrypt.GenerateFromPassword([]byte("admin-pass-123"), bcrypt.DefaultCost)
	db.Create(&models.User{
		Name:     "Admin",
		Email:    "admin@example.com",
		Password: string(hashed),
		Role:     "admin",
	})
	return db
}

func doJSON(t *testing.T, r *gin.Engine, method, url, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req, err := http.NewRequest(method, url, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, ok := resp["data"].(map[string]interface{})
	require.True(t, ok, "response has no data object: %s", w.Body.String())
	return data
}

func loginTest(t *testing.T, r *gin.Engine) string {
	w := doJSON(t, r, "POST", "/login", "", map[string]interface{}{
		"email":    "admin@example.com",
		"password": "admin-pass-123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	token, _ := dataOf(t, w)["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func createCustomerTest(t *testing.T, r *gin.Engine, token string) uint {
	w := doJSON(t, r, "POST", "/api/customers", token, map[string]interface{}{
		"name":     "Wanjiku Stores",
		"phone":    "0712345678",
		"location": "Nakuru Town",
		"county":   "Nakuru",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id, _ := dataOf(t, w)["id"].(float64)
	require.NotZero(t, id)
	return uint(id)
}

func createTransactionTest(t *testing.T, r *gin.Engine, token string, customerID uint) uint {
	w := doJSON(t, r, "POST", "/api/transactions", token, map[string]interface{}{
		"customer_id":    customerID,
		"load_breakdown": map[string]interface{}{"kg6": 2},
		"returns_breakdown": map[string]interface{}{
			"max_empty": map[string]interface{}{"kg6": 2, "price6": 135},
		},
		"outright_breakdown": map[string]interface{}{},
		"amount_paid":        0,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Equal(t, 1620.0, data["total_bill"])
	assert.Equal(t, "credit", data["payment_method"])
	assert.Equal(t, "A0001", data["transaction_number"])

	id, _ := data["id"].(float64)
	return uint(id)
}

func payTransactionTest(t *testing.T, r *gin.Engine, token string, txnID uint) {
	w := doJSON(t, r, "POST", "/api/payments", token, map[string]interface{}{
		"transaction_id": txnID,
		"amount":         1620,
		"payment_method": "mpesa",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, dataOf(t, w)["receipt_number"], "RCP-")
}

func generateReceiptTest(t *testing.T, r *gin.Engine, token string, txnID uint) {
	w := doJSON(t, r, "POST", "/api/transactions/1/receipt", token, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	data := dataOf(t, w)
	assert.Contains(t, data["receipt_number"], "RCT/")
	assert.Equal(t, 1620.0, data["total_bill"])
}

func checkStatementTest(t *testing.T, r *gin.Engine, token string, customerID uint) {
	w := doJSON(t, r, "GET", "/api/reports/customers/1/statement", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := dataOf(t, w)
	balance := data["balance"].(map[string]interface{})
	assert.Equal(t, 1620.0, balance["total_billed"])
	assert.Equal(t, 0.0, balance["financial_balance"])
	assert.Equal(t, true, data["balance_consistent"])
}
