package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"mail-beacon-go/internal/model"
)

// GetUsers returns all users
func (h *Handlers) GetUsers(c *gin.Context) {
	var users []model.User
	if err := h.db.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to fetch users", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser creates a new user
func (h *Handlers) CreateUser(c *gin.Context) {
	var req model.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body", Code: http.StatusBadRequest})
		return
	}
	user := model.User{Email: req.Email, Name: req.Name}
	if err := h.db.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to create user", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUser returns a single user by ID
func (h *Handlers) GetUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid user ID", Code: http.StatusBadRequest})
		return
	}
	var user model.User
	if err := h.db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "User not found", Code: http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, user)
}

// DeleteUser deletes a user by ID
func (h *Handlers) DeleteUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid user ID", Code: http.StatusBadRequest})
		return
	}
	if err := h.db.Delete(&model.User{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to delete user", Code: http.StatusInternalServerError})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetVouchers returns all vouchers
func (h *Handlers) GetVouchers(c *gin.Context) {
	var vouchers []model.Voucher
	if err := h.db.Find(&vouchers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to fetch vouchers", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusOK, vouchers)
}

// CreateVoucher creates a new voucher with a generated code
func (h *Handlers) CreateVoucher(c *gin.Context) {
	var req model.VoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body", Code: http.StatusBadRequest})
		return
	}
	if _, ok := model.PlanQuotas[req.Plan]; !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Unknown plan", Code: http.StatusBadRequest})
		return
	}
	voucher := model.Voucher{Code: uuid.NewString(), Plan: req.Plan}
	if err := h.db.Create(&voucher).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to create voucher", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusCreated, voucher)
}

// RedeemVoucher binds an unredeemed voucher to a user.
func (h *Handlers) RedeemVoucher(c *gin.Context) {
	code := c.Param("code")

	var req model.RedeemVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body", Code: http.StatusBadRequest})
		return
	}

	now := time.Now()
	// The redeemed guard runs inside the UPDATE so a code cannot be
	// redeemed twice by concurrent requests.
	result := h.db.Model(&model.Voucher{}).
		Where("code = ? AND redeemed = ?", code, false).
		Updates(map[string]interface{}{
			"redeemed":    true,
			"redeemed_at": now,
			"user_id":     req.UserID,
		})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to redeem voucher", Code: http.StatusInternalServerError})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Voucher not found or already redeemed", Code: http.StatusNotFound})
		return
	}
	c.Status(http.StatusNoContent)
}
