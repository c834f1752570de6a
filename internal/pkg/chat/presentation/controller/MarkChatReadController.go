package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
)

// MarkChatReadController clears the viewer's unread counter when a chat is
// opened (one controller per endpoint).
type MarkChatReadController struct {
	UC *usecase.MarkChatReadUseCase
}

func NewMarkChatReadController(uc *usecase.MarkChatReadUseCase) *MarkChatReadController {
	return &MarkChatReadController{UC: uc}
}

type markChatReadRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

func (h *MarkChatReadController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
			return
		}

		var req markChatReadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		err := h.UC.Execute(ctx, usecase.MarkChatReadInput{ConversationID: chatID, UserID: req.UserID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
