package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/events"
	"github.com/kmathenge/gasflow-app/ledger"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

// BalanceAuditor periodically recomputes every customer's aggregates from
// their full transaction history and compares them with the stored
// columns. The stored columns are the source of truth for reads; the
// auditor exists so a bug that lets them drift is found and repaired
// instead of silently papered over by client-side recomputation.
type BalanceAuditor struct {
	DB       *gorm.DB
	StopChan chan struct{}
	Interval time.Duration

	// Repair controls whether drift is corrected or only recorded.
	Repair bool
}

func NewBalanceAuditor(db *gorm.DB) *BalanceAuditor {
	return &BalanceAuditor{
		DB:       db,
		StopChan: make(chan struct{}),
		Interval: 10 * time.Minute,
		Repair:   true,
	}
}

func (ba *BalanceAuditor) Start() {
	go func() {
		ticker := time.NewTicker(ba.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := ba.AuditAll(); err != nil {
					utils.ErrorLogger.Printf("balance audit failed: %v", err)
				}
			case <-ba.StopChan:
				return
			}
		}
	}()
}

func (ba *BalanceAuditor) Stop() {
	close(ba.StopChan)
}

// AuditAll checks every customer once. Exported so tests and the startup
// path can run a single pass synchronously.
func (ba *BalanceAuditor) AuditAll() error {
	var customers []models.Customer
	if err := ba.DB.Find(&customers).Error; err != nil {
		return err
	}

	drifts := 0
	for i := range customers {
		drifted, err := ba.auditCustomer(&customers[i])
		if err != nil {
			return err
		}
		if drifted {
			drifts++
		}
	}

	if drifts > 0 {
		utils.InfoLogger.Printf("balance audit: %d of %d customers had drift", drifts, len(customers))
	}
	return nil
}

func (ba *BalanceAuditor) auditCustomer(customer *models.Customer) (bool, error) {
	var transactions []models.Transaction
	if err := ba.DB.Where("customer_id = ?", customer.ID).Find(&transactions).Error; err != nil {
		return false, err
	}

	totals := make([]ledger.Totals, 0, len(transactions))
	for i := range transactions {
		totals = append(totals, transactions[i].Totals())
	}
	computed := ledger.Aggregate(totals)

	type drift struct {
		field    string
		stored   string
		computed string
	}
	var drifts []drift

	if diff := customer.FinancialBalance - computed.FinancialBalance; diff > 0.01 || diff < -0.01 {
		drifts = append(drifts, drift{
			field:    "financial_balance",
			stored:   fmt.Sprintf("%.2f", customer.FinancialBalance),
			computed: fmt.Sprintf("%.2f", computed.FinancialBalance),
		})
	}
	for _, check := range []struct {
		field    string
		stored   int
		computed int
	}{
		{"cylinder_balance_6kg", customer.CylinderBalance6kg, computed.CylinderBalance.Kg6},
		{"cylinder_balance_13kg", customer.CylinderBalance13kg, computed.CylinderBalance.Kg13},
		{"cylinder_balance_50kg", customer.CylinderBalance50kg, computed.CylinderBalance.Kg50},
		{"cylinder_balance", customer.CylinderBalance, computed.CylinderBalanceTotal()},
	} {
		if check.stored != check.computed {
			drifts = append(drifts, drift{
				field:    check.field,
				stored:   fmt.Sprintf("%d", check.stored),
				computed: fmt.Sprintf("%d", check.computed),
			})
		}
	}

	if len(drifts) == 0 {
		return false, nil
	}

	now := time.Now()
	for _, d := range drifts {
		change := models.LedgerChange{
			CustomerID:    customer.ID,
			Field:         d.field,
			StoredValue:   d.stored,
			ComputedValue: d.computed,
			Repaired:      ba.Repair,
			DetectedAt:    now,
		}
		if err := ba.DB.Create(&change).Error; err != nil {
			return true, err
		}
		utils.ErrorLogger.Printf("balance drift on customer %d: %s stored=%s computed=%s",
			customer.ID, d.field, d.stored, d.computed)
		events.BroadcastBalanceDrift(change)
	}

	if !ba.Repair {
		return true, nil
	}

	customer.FinancialBalance = computed.FinancialBalance
	customer.CylinderBalance6kg = computed.CylinderBalance.Kg6
	customer.CylinderBalance13kg = computed.CylinderBalance.Kg13
	customer.CylinderBalance50kg = computed.CylinderBalance.Kg50
	customer.CylinderBalance = computed.CylinderBalanceTotal()
	return true, ba.DB.Save(customer).Error
}
