package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
)

// AccessChatController returns the direct conversation between the caller and
// a peer, creating it on first contact (one controller per endpoint).
type AccessChatController struct {
	UC *usecase.AccessChatUseCase
}

func NewAccessChatController(uc *usecase.AccessChatUseCase) *AccessChatController {
	return &AccessChatController{UC: uc}
}

type accessChatRequest struct {
	UserID string `json:"user_id" binding:"required"`
	PeerID string `json:"peer_id" binding:"required"`
}

func (h *AccessChatController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req accessChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		ov, err := h.UC.Execute(ctx, usecase.AccessChatInput{UserID: req.UserID, PeerID: req.PeerID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, toWireChat(*ov, nil))
	}
}
