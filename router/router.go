package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/controllers"
	"github.com/kmathenge/gasflow-app/events"
	"github.com/kmathenge/gasflow-app/middlewares"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	// Per-IP rate limiter (50 requests per second). Registered before the
	// routes so it actually runs on every request.
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	userCtrl := controllers.NewUserController(db)
	customerCtrl := controllers.NewCustomerController(db)
	transactionCtrl := controllers.NewTransactionController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	receiptCtrl := controllers.NewReceiptController(db)
	reportCtrl := controllers.NewReportController(db)
	approvalCtrl := controllers.NewApprovalController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Dashboard event stream
	r.GET("/events/ws", events.Handler)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/api")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/profile", userCtrl.GetProfile)
	auth.POST("/logout", userCtrl.Logout)
	auth.GET("/users", middlewares.RequireRole("admin"), userCtrl.GetAllUsers)

	// CUSTOMERS
	auth.GET("/customers", customerCtrl.GetAllCustomers)
	auth.POST("/customers", customerCtrl.CreateCustomer)
	auth.GET("/customers/:customer_id", customerCtrl.GetCustomerByID)
	auth.PUT("/customers/:customer_id", customerCtrl.UpdateCustomer)
	auth.DELETE("/customers/:customer_id", middlewares.RequireRole("manager"), customerCtrl.DeleteCustomer)

	// TRANSACTIONS
	auth.GET("/transactions", transactionCtrl.GetAllTransactions)
	auth.POST("/transactions", transactionCtrl.CreateTransaction)
	auth.GET("/transactions/:transaction_id", transactionCtrl.GetTransactionByID)
	auth.PUT("/transactions/:transaction_id", transactionCtrl.UpdateTransaction)
	auth.DELETE("/transactions/:transaction_id", transactionCtrl.DeleteTransaction)

	// PAYMENTS
	auth.GET("/payments", paymentCtrl.GetPayments)
	auth.POST("/payments", paymentCtrl.CreatePayment)
	auth.GET("/payments/:payment_id", paymentCtrl.GetPaymentByID)

	// RECEIPTS (with audit logging)
	receiptGroup := auth.Group("/")
	receiptGroup.Use(middlewares.ReceiptLoggerMiddleware())
	{
		receiptGroup.POST("/transactions/:transaction_id/receipt", receiptCtrl.GenerateReceipt)
	}
	auth.GET("/receipts/:receipt_id", receiptCtrl.GetReceiptByID)
	auth.GET("/receipts/:receipt_id/pdf", receiptCtrl.DownloadReceiptPDF)

	// REPORTS
	auth.GET("/reports/customers/:customer_id/statement", reportCtrl.CustomerStatement)
	auth.GET("/reports/daily", reportCtrl.DailySummary)
	auth.GET("/reports/outstanding", reportCtrl.OutstandingBalances)

	// APPROVALS (admin)
	auth.GET("/approvals", middlewares.RequireRole("admin"), approvalCtrl.GetPendingApprovals)
	auth.POST("/approvals/:approval_id/approve", middlewares.RequireRole("admin"), approvalCtrl.ApproveRequest)
	auth.POST("/approvals/:approval_id/reject", middlewares.RequireRole("admin"), approvalCtrl.RejectRequest)

	return r
}
