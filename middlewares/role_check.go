package middlewares

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kmathenge/gasflow-app/utils"
)

// RequireRole gates a route on a minimum role. Admin passes everything;
// manager passes manager and staff gates.
func RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("role")
		if !exists {
			utils.RespondError(c, http.StatusUnauthorized, fmt.Errorf("unauthorized"))
			c.Abort()
			return
		}

		role, _ := userRole.(string)
		switch required {
		case "admin":
			if role != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("admin access required"))
				c.Abort()
				return
			}
		case "manager":
			if role != "manager" && role != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("manager access required"))
				c.Abort()
				return
			}
		case "staff":
			if role != "staff" && role != "manager" && role != "admin" {
				utils.RespondError(c, http.StatusForbidden, fmt.Errorf("staff access required"))
				c.Abort()
				return
			}
		}

		c.Next()
	}
}

// IsAdmin reports whether the current request runs with the admin role.
func IsAdmin(c *gin.Context) bool {
	role, _ := c.Get("role")
	r, _ := role.(string)
	return r == "admin"
}
