package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/model"
)

// ServeAd selects and charges one sponsor placement for a footer slot.
func (h *Handlers) ServeAd(c *gin.Context) {
	placement, err := h.ads.Serve()
	if err != nil {
		logrus.Errorf("Failed to serve ad: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to serve ad",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, placement)
}

// GetAds returns all ads
func (h *Handlers) GetAds(c *gin.Context) {
	var ads []model.Ad
	if err := h.db.Find(&ads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to fetch ads",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusOK, ads)
}

// CreateAd registers a new sponsor creative. The plan quota table is
// consulted here and only here; an ad keeps the cap it was created
// with.
func (h *Handlers) CreateAd(c *gin.Context) {
	var req model.AdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	ad := model.Ad{
		ClientName: req.ClientName,
		ImageURL:   req.ImageURL,
		Plan:       req.Plan,
		Active:     active,
	}
	if !ad.IsFallback() {
		quota, ok := model.PlanQuotas[req.Plan]
		if !ok {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "Unknown plan",
				Code:    http.StatusBadRequest,
			})
			return
		}
		ad.MaxViews = quota
	}

	if err := h.db.Create(&ad).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to create ad",
			Code:    http.StatusInternalServerError,
		})
		return
	}
	c.JSON(http.StatusCreated, ad)
}

// GetAd returns a single ad by ID
func (h *Handlers) GetAd(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid ad ID", Code: http.StatusBadRequest})
		return
	}
	var ad model.Ad
	if err := h.db.First(&ad, id).Error; err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Ad not found", Code: http.StatusNotFound})
		return
	}
	c.JSON(http.StatusOK, ad)
}

// UpdateAd updates an existing ad
func (h *Handlers) UpdateAd(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid ad ID", Code: http.StatusBadRequest})
		return
	}
	var ad model.Ad
	if err := h.db.First(&ad, id).Error; err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Ad not found", Code: http.StatusNotFound})
		return
	}
	var req model.AdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "validation_error", Message: "Invalid request body", Code: http.StatusBadRequest})
		return
	}
	if req.ClientName != "" {
		ad.ClientName = req.ClientName
	}
	if req.ImageURL != "" {
		ad.ImageURL = req.ImageURL
	}
	if req.Active != nil {
		ad.Active = *req.Active
	}
	if err := h.db.Save(&ad).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to update ad", Code: http.StatusInternalServerError})
		return
	}
	c.JSON(http.StatusOK, ad)
}

// DeleteAd deletes an ad by ID
func (h *Handlers) DeleteAd(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid ad ID", Code: http.StatusBadRequest})
		return
	}
	if err := h.db.Delete(&model.Ad{}, id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to delete ad", Code: http.StatusInternalServerError})
		return
	}
	c.Status(http.StatusNoContent)
}

// EnableAd enables an ad by ID
func (h *Handlers) EnableAd(c *gin.Context) {
	h.setAdActive(c, true)
}

// DisableAd disables an ad by ID
func (h *Handlers) DisableAd(c *gin.Context) {
	h.setAdActive(c, false)
}

func (h *Handlers) setAdActive(c *gin.Context, active bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid ad ID", Code: http.StatusBadRequest})
		return
	}
	if err := h.db.Model(&model.Ad{}).Where("id = ?", id).Update("active", active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "database_error", Message: "Failed to update ad", Code: http.StatusInternalServerError})
		return
	}
	c.Status(http.StatusNoContent)
}

// ResetAdViews zeroes an ad's view counter so a capped ad becomes
// selectable again.
func (h *Handlers) ResetAdViews(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid_id", Message: "Invalid ad ID", Code: http.StatusBadRequest})
		return
	}
	if err := h.adsRepo.ResetViews(uint(id)); err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "not_found", Message: "Ad not found", Code: http.StatusNotFound})
		return
	}
	c.Status(http.StatusNoContent)
}
