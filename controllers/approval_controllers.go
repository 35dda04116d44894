package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kmathenge/gasflow-app/models"
	"github.com/kmathenge/gasflow-app/utils"
)

type ApprovalController struct {
	DB *gorm.DB
}

func NewApprovalController(db *gorm.DB) *ApprovalController {
	return &ApprovalController{DB: db}
}

// GetPendingApprovals -> queue of destructive actions awaiting an admin.
func (ac *ApprovalController) GetPendingApprovals(c *gin.Context) {
	var approvals []models.PendingApproval
	if err := ac.DB.Where("status = ?", "pending").
		Order("created_at ASC").
		Find(&approvals).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Pending approvals", approvals)
}

// ApproveRequest executes the queued action and closes the request.
func (ac *ApprovalController) ApproveRequest(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("approval_id"))

	var approval models.PendingApproval
	if err := ac.DB.First(&approval, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if approval.Status != "pending" {
		utils.RespondError(c, http.StatusConflict, errors.New("request already reviewed"))
		return
	}

	reviewer := currentUserID(c)
	now := time.Now()

	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		switch approval.Action {
		case "delete_transaction":
			if err := deleteTransactionTx(tx, approval.TargetID); err != nil {
				return err
			}
		default:
			return errors.New("unknown approval action " + approval.Action)
		}

		approval.Status = "approved"
		approval.ReviewedBy = &reviewer
		approval.ReviewedAt = &now
		return tx.Save(&approval).Error
	})
	if err != nil {
		respondTransactionError(c, err)
		return
	}

	utils.InfoLogger.Printf("Approval %d (%s on %d) granted by user %d",
		approval.ID, approval.Action, approval.TargetID, reviewer)
	utils.RespondJSON(c, http.StatusOK, "Request approved", approval)
}

// RejectRequest closes the request without acting on it.
func (ac *ApprovalController) RejectRequest(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("approval_id"))

	var approval models.PendingApproval
	if err := ac.DB.First(&approval, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if approval.Status != "pending" {
		utils.RespondError(c, http.StatusConflict, errors.New("request already reviewed"))
		return
	}

	reviewer := currentUserID(c)
	now := time.Now()
	approval.Status = "rejected"
	approval.ReviewedBy = &reviewer
	approval.ReviewedAt = &now

	if err := ac.DB.Save(&approval).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Request rejected", approval)
}
