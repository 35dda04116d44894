package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/events"
	"github.com/kmathenge/gasflow-app/ledger"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

type CustomerController struct {
	DB *gorm.DB
}

func NewCustomerController(db *gorm.DB) *CustomerController {
	return &CustomerController{DB: db}
}

var (
	errDuplicateName  = errors.New("a customer with this name already exists")
	errDuplicatePhone = errors.New("a customer with this phone number already exists")
)

// GetAllCustomers -> paginated list with optional name/phone/email search.
func (cc *CustomerController) GetAllCustomers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := cc.DB.Model(&models.Customer{})
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR phone LIKE ? OR email LIKE ?", like, like, like)
	}

	var count int64
	query.Count(&count)

	var customers []models.Customer
	if err := query.Order("name ASC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&customers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of customers", gin.H{
		"customers": customers,
		"pagination": gin.H{
			"current_page": page,
			"total_items":  count,
			"total_pages":  (count + int64(limit) - 1) / int64(limit),
		},
	})
}

// CreateCustomer -> new customer after pairwise duplicate checks. Address
// is derived from location and county when given.
func (cc *CustomerController) CreateCustomer(c *gin.Context) {
	type reqBody struct {
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Phone    string `json:"phone" binding:"required,min=10,max=20"`
		Email    string `json:"email"`
		Location string `json:"location"`
		County   string `json:"county"`
		Address  string `json:"address"`
		Category string `json:"category"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	// Distinct messages for the two duplicate cases.
	var existing models.Customer
	if err := cc.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errDuplicateName)
		return
	}
	if err := cc.DB.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errDuplicatePhone)
		return
	}

	address := req.Address
	if req.Location != "" || req.County != "" {
		address = strings.TrimSuffix(strings.TrimPrefix(fmt.Sprintf("%s, %s", req.Location, req.County), ", "), ", ")
	}

	category := req.Category
	switch category {
	case "regular", "vip", "new":
	default:
		category = "regular"
	}

	customer := models.Customer{
		Name:     req.Name,
		Phone:    req.Phone,
		Email:    normalizeEmail(req.Email),
		Address:  address,
		Category: category,
	}

	if err := cc.DB.Create(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New customer created: %s (ID=%d)", customer.Name, customer.ID)
	events.BroadcastCustomerUpdate(customer)

	utils.RespondJSON(c, http.StatusCreated, "Customer created", customer)
}

// GetCustomerByID -> stored customer record plus recomputed balances.
// The stored aggregates are authoritative; the recompute over the full
// history is returned alongside as a consistency check, never silently
// substituted.
func (cc *CustomerController) GetCustomerByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("customer_id"))

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var transactions []models.Transaction
	if err := cc.DB.Where("customer_id = ?", customer.ID).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	totals := make([]ledger.Totals, 0, len(transactions))
	for i := range transactions {
		totals = append(totals, transactions[i].Totals())
	}
	computed := ledger.Aggregate(totals)

	utils.RespondJSON(c, http.StatusOK, "Customer detail", gin.H{
		"customer":           customer,
		"transactions":       transactions,
		"computed_balance":   computed,
		"balance_consistent": balancesMatch(customer, computed),
	})
}

// UpdateCustomer -> edit form target; name and phone stay required.
func (cc *CustomerController) UpdateCustomer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("customer_id"))

	type reqBody struct {
		Name     string `json:"name" binding:"required,min=2,max=100"`
		Phone    string `json:"phone" binding:"required,min=10,max=20"`
		Email    string `json:"email"`
		Address  string `json:"address"`
		Category string `json:"category"`
	}

	var req reqBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var existing models.Customer
	if err := cc.DB.Where("name = ? AND id != ?", req.Name, customer.ID).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errDuplicateName)
		return
	}
	if err := cc.DB.Where("phone = ? AND id != ?", req.Phone, customer.ID).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errDuplicatePhone)
		return
	}

	customer.Name = req.Name
	customer.Phone = req.Phone
	customer.Email = normalizeEmail(req.Email)
	if req.Address != "" {
		customer.Address = req.Address
	}
	if req.Category != "" {
		customer.Category = req.Category
	}

	if err := cc.DB.Save(&customer).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	events.BroadcastCustomerUpdate(customer)
	utils.RespondJSON(c, http.StatusOK, "Customer updated", customer)
}

// DeleteCustomer cascades to the customer's transactions and payments,
// and only runs with ?force=true once transactions exist. The two-step
// type-the-name confirmation lives in the client; the force flag is the
// server-side half of that handshake.
func (cc *CustomerController) DeleteCustomer(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("customer_id"))

	var customer models.Customer
	if err := cc.DB.First(&customer, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	var txnCount int64
	cc.DB.Model(&models.Transaction{}).Where("customer_id = ?", customer.ID).Count(&txnCount)

	if txnCount > 0 && c.Query("force") != "true" {
		utils.RespondError(c, http.StatusConflict,
			fmt.Errorf("customer has %d transactions; pass force=true to delete them as well", txnCount))
		return
	}

	err := cc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.Payment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("customer_id = ?", customer.ID).Delete(&models.Transaction{}).Error; err != nil {
			return err
		}
		return tx.Delete(&customer).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Customer %d deleted with %d transactions", customer.ID, txnCount)
	utils.RespondJSON(c, http.StatusOK, "Customer deleted", gin.H{"deleted_transactions": txnCount})
}

func normalizeEmail(email string) *string {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil
	}
	return &email
}

func balancesMatch(customer models.Customer, computed ledger.CustomerBalance) bool {
	const epsilon = 0.01
	diff := customer.FinancialBalance - computed.FinancialBalance
	if diff < -epsilon || diff > epsilon {
		return false
	}
	return customer.CylinderBalance6kg == computed.CylinderBalance.Kg6 &&
		customer.CylinderBalance13kg == computed.CylinderBalance.Kg13 &&
		customer.CylinderBalance50kg == computed.CylinderBalance.Kg50
}
