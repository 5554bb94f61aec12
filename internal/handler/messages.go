package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"mail-beacon-go/internal/model"
)

// senderCookie is the trusted session marker set at registration and
// checked by the deduplicator to suppress the sender's own opens.
const senderCookie = "mb_sender"

// RegisterMessage registers an outbound message for tracking and
// returns its pixel URL.
func (h *Handlers) RegisterMessage(c *gin.Context) {
	var req model.RegisterMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
			Code:    http.StatusBadRequest,
		})
		return
	}

	id := req.ID
	if id == "" {
		id = uuid.NewString()
	} else {
		existing, err := h.messages.FindByID(id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "database_error",
				Message: "Failed to register message",
				Code:    http.StatusInternalServerError,
			})
			return
		}
		if existing != nil {
			c.JSON(http.StatusConflict, ErrorResponse{
				Error:   "duplicate_id",
				Message: "A message with this id is already tracked",
				Code:    http.StatusConflict,
			})
			return
		}
	}

	msg := model.TrackedMessage{
		ID:          id,
		Sender:      req.Sender,
		Subject:     req.Subject,
		Recipients:  model.RecipientList(req.Recipients),
		SenderToken: uuid.NewString(),
	}
	if req.ParentID != "" {
		parentID := req.ParentID
		msg.ParentID = &parentID
	}

	if err := h.messages.Create(&msg); err != nil {
		logrus.Errorf("Failed to register message: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to register message",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	// The registering client keeps the marker so its own pixel
	// fetches are not counted as opens.
	c.SetCookie(senderCookie, msg.SenderToken,
		int(h.tracking.SenderGrace/time.Second), "/", "", false, true)

	c.JSON(http.StatusCreated, model.RegisterMessageResponse{
		ID:       msg.ID,
		PixelURL: fmt.Sprintf("%s/p/%s", h.tracking.PublicBaseURL, msg.ID),
	})
}

// MessageStatus returns the consolidated read status for the thread
// containing the given message id and/or subject.
func (h *Handlers) MessageStatus(c *gin.Context) {
	id := c.Query("id")
	subject := c.Query("subject")

	if id == "" && subject == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Either id or subject is required",
			Code:    http.StatusBadRequest,
		})
		return
	}

	status, err := h.threads.Status(id, subject)
	if err != nil {
		logrus.Errorf("Failed to build thread status: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "database_error",
			Message: "Failed to build thread status",
			Code:    http.StatusInternalServerError,
		})
		return
	}

	c.JSON(http.StatusOK, status)
}
