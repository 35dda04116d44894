package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pdf/fpdf"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/ledger"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

type ReceiptController struct {
	DB *gorm.DB
}

func NewReceiptController(db *gorm.DB) *ReceiptController {
	return &ReceiptController{DB: db}
}

// GenerateReceipt persists a receipt for a transaction, one billed line
// per non-zero refill/swap/outright leg. Amounts come from the stored
// authoritative fields, not a client-side recompute.
func (rc *ReceiptController) GenerateReceipt(c *gin.Context) {
	transactionID := c.Param("transaction_id")

	var txn models.Transaction
	if err := rc.DB.Preload("Customer").First(&txn, transactionID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	receiptNumber := fmt.Sprintf("RCT/%s/%06d", time.Now().Format("20060102"), txn.ID)

	receipt := models.Receipt{
		TransactionID: txn.ID,
		CustomerID:    txn.CustomerID,
		ReceiptNumber: receiptNumber,
		TotalBill:     txn.TotalBill,
		AmountPaid:    txn.AmountPaid,
		Outstanding:   txn.FinancialBalance,
		PaymentMethod: txn.PaymentMethod,
		ReceiptItems:  receiptLines(txn),
	}

	if err := rc.DB.Create(&receipt).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Receipt %s generated for transaction %s", receipt.ReceiptNumber, txn.TransactionNumber)
	utils.RespondJSON(c, http.StatusCreated, "Receipt generated", receipt)
}

// GetReceiptByID -> stored receipt with its lines.
func (rc *ReceiptController) GetReceiptByID(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("receipt_id"))

	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").Preload("Transaction").First(&receipt, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Receipt detail", receipt)
}

// DownloadReceiptPDF renders a stored receipt as PDF.
func (rc *ReceiptController) DownloadReceiptPDF(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("receipt_id"))

	var receipt models.Receipt
	if err := rc.DB.Preload("ReceiptItems").
		Preload("Transaction").
		Preload("Transaction.Customer").
		First(&receipt, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, "MaxGas Distribution", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, "Receipt "+receipt.ReceiptNumber, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, utils.FormatDate(receipt.CreatedAt), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Customer: "+receipt.Transaction.Customer.Name, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Transaction: "+receipt.Transaction.TransactionNumber, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(40, 6, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(15, 6, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(25, 6, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 6, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range receipt.ReceiptItems {
		pdf.CellFormat(40, 6, fmt.Sprintf("%s %dkg", item.Category, item.SizeKg), "", 0, "L", false, 0, "")
		pdf.CellFormat(15, 6, strconv.Itoa(item.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, utils.FormatCurrencyKES(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, utils.FormatCurrencyKES(item.Subtotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(80, 6, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, utils.FormatCurrencyKES(receipt.TotalBill), "T", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(80, 6, "Paid ("+receipt.PaymentMethod+")", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, utils.FormatCurrencyKES(receipt.AmountPaid), "", 1, "R", false, 0, "")
	pdf.CellFormat(80, 6, "Outstanding", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 6, utils.FormatCurrencyKES(receipt.Outstanding), "", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Thank you for your business", "", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", receipt.ReceiptNumber))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

// receiptLines expands a transaction's breakdowns into billed lines.
// return_full legs never appear: they carry no charge.
func receiptLines(txn models.Transaction) []models.ReceiptItem {
	var items []models.ReceiptItem

	add := func(category string, sizeKg, qty int, price, subtotal float64) {
		if qty == 0 {
			return
		}
		items = append(items, models.ReceiptItem{
			Category:  category,
			SizeKg:    sizeKg,
			Quantity:  qty,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
	}

	me := txn.ReturnsBreakdown.MaxEmpty
	add("refill", 6, me.Kg6, me.Price6, ledger.RefillLineTotal(me.Kg6, me.Price6, ledger.WeightKg6))
	add("refill", 13, me.Kg13, me.Price13, ledger.RefillLineTotal(me.Kg13, me.Price13, ledger.WeightKg13))
	add("refill", 50, me.Kg50, me.Price50, ledger.RefillLineTotal(me.Kg50, me.Price50, ledger.WeightKg50))

	se := txn.ReturnsBreakdown.SwapEmpty
	add("swap", 6, se.Kg6, se.Price6, ledger.RefillLineTotal(se.Kg6, se.Price6, ledger.WeightKg6))
	add("swap", 13, se.Kg13, se.Price13, ledger.RefillLineTotal(se.Kg13, se.Price13, ledger.WeightKg13))
	add("swap", 50, se.Kg50, se.Price50, ledger.RefillLineTotal(se.Kg50, se.Price50, ledger.WeightKg50))

	o := txn.OutrightBreakdown
	add("outright", 6, o.Kg6, o.Price6, ledger.OutrightLineTotal(o.Kg6, o.Price6))
	add("outright", 13, o.Kg13, o.Price13, ledger.OutrightLineTotal(o.Kg13, o.Price13))
	add("outright", 50, o.Kg50, o.Price50, ledger.OutrightLineTotal(o.Kg50, o.Price50))

	return items
}
