package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kmathenge/gasflow-app/utils"
)

// ReceiptLoggerMiddleware records every receipt generation attempt with
// the acting user, for the audit trail.
func ReceiptLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		userID, _ := c.Get("user_id")

		c.Next()

		utils.InfoLogger.Printf("receipt request by user=%v tx=%s status=%d took=%v",
			userID, c.Param("transaction_id"), c.Writer.Status(), time.Since(start))
	}
}
