package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/config"
	"github.com/kmathenge/gasflow-app/database"
	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/router"
	"github.com/kmathenge/gasflow-app/services"
	"github.com/kmathenge/gasflow-app/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InfoLogger = logrus.New()
	utils.ErrorLogger = logrus.New()

	utils.InfoLogger.SetOutput(os.Stdout)
	utils.ErrorLogger.SetOutput(os.Stderr)

	utils.InfoLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
	utils.ErrorLogger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		ForceColors:   true,
	})
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)

	auditor := services.NewBalanceAuditor(db)
	if mins, err := strconv.Atoi(os.Getenv("AUDIT_INTERVAL_MINUTES")); err == nil && mins > 0 {
		auditor.Interval = time.Duration(mins) * time.Minute
	}
	auditor.Start()
	defer auditor.Stop()

	r := router.SetupRouter(db)
	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
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
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	// Data migrations: legacy row conversion and number backfill.
	if err := database.RunMigrations(db); err != nil {
		utils.ErrorLogger.Printf("Error running data migrations: %v", err)
	}
}
