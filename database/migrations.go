package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/ledger"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

// RunMigrations performs the one-time data fixes that AutoMigrate cannot:
// converting legacy flat-field rows to the breakdown model and
// backfilling display numbers on rows that predate numbering.
func RunMigrations(db *gorm.DB) error {
	if err := convertLegacyRows(db); err != nil {
		return err
	}
	return backfillTransactionNumbers(db)
}

// convertLegacyRows rewrites rows still carrying a legacy flat payload
// into breakdown form via the ledger adapter. The adapter normalizes the
// per-cylinder legacy refill prices to per kg, so recomputing a converted
// row through the standard formula agrees with the stored total_bill; the
// stored figure itself is kept as recorded.
func convertLegacyRows(db *gorm.DB) error {
	var rows []models.Transaction
	if err := db.Where("legacy_payload IS NOT NULL AND legacy_payload != ''").Find(&rows).Error; err != nil {
		return err
	}

	converted := 0
	for i := range rows {
		row := &rows[i]

		var legacy ledger.LegacyTransaction
		if err := json.Unmarshal([]byte(*row.LegacyPayload), &legacy); err != nil {
			utils.ErrorLogger.Printf("skipping unreadable legacy payload on transaction %d: %v", row.ID, err)
			continue
		}

		load, returns, outright := ledger.FromLegacy(legacy)
		row.LoadBreakdown = models.LoadColumn{SizeBreakdown: load}
		row.ReturnsBreakdown = models.ReturnsColumn{ReturnsBreakdown: returns}
		row.OutrightBreakdown = models.OutrightColumn{OutrightBreakdown: outright}
		row.TotalLoad = load.Total()
		row.TotalReturns = returns.Total()
		row.LegacyPayload = nil

		if err := db.Save(row).Error; err != nil {
			return err
		}
		converted++
	}

	if converted > 0 {
		utils.InfoLogger.Printf("converted %d legacy transactions to the breakdown model", converted)
	}
	return nil
}

// backfillTransactionNumbers assigns A0001-style numbers, in date order,
// to transactions that have none. New transactions get theirs at
// creation; this pass covers pre-numbering rows exactly once.
func backfillTransactionNumbers(db *gorm.DB) error {
	var unnumbered []models.Transaction
	if err := db.Where("transaction_number IS NULL OR transaction_number = ''").
		Order("date ASC").
		Find(&unnumbered).Error; err != nil {
		return err
	}
	if len(unnumbered) == 0 {
		return nil
	}

	// Continue after the highest number already issued.
	letter := byte('A')
	seq := 0
	var last models.Transaction
	if err := db.Where("transaction_number != ''").
		Order("transaction_number DESC").
		Limit(1).
		Find(&last).Error; err != nil {
		return err
	}
	if last.TransactionNumber != "" {
		letter = last.TransactionNumber[0]
		fmt.Sscanf(last.TransactionNumber[1:], "%d", &seq)
	}

	for i := range unnumbered {
		seq++
		if seq > 9999 {
			letter++
			seq = 1
		}
		unnumbered[i].TransactionNumber = fmt.Sprintf("%c%04d", letter, seq)
		if err := db.Save(&unnumbered[i]).Error; err != nil {
			return err
		}
	}

	utils.InfoLogger.Printf("backfilled transaction numbers for %d rows", len(unnumbered))
	return nil
}
