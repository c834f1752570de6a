package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
	userport "github.com/akashwav/ConnectGo/internal/repository/port"
	"github.com/akashwav/ConnectGo/pkg/wire"
)

// ListChatsController serves the viewer's chat list, most recent activity
// first, hydrated with member display names (one controller per endpoint).
type ListChatsController struct {
	UC    *usecase.ListChatsUseCase
	Users userport.UserDirectory // optional; nil leaves member_names empty
}

func NewListChatsController(uc *usecase.ListChatsUseCase, users userport.UserDirectory) *ListChatsController {
	return &ListChatsController{UC: uc, Users: users}
}

func (h *ListChatsController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.Query("user_id")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		overviews, err := h.UC.Execute(ctx, usecase.ListChatsInput{UserID: userID})
		if err != nil {
			status := http.StatusBadRequest
			if errors.Is(err, usecase.ErrPersistence) {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		names := h.memberNames(ctx, overviews)

		out := make([]wire.Chat, 0, len(overviews))
		for _, ov := range overviews {
			out = append(out, toWireChat(ov, names))
		}
		c.JSON(http.StatusOK, gin.H{"chats": out, "count": len(out)})
	}
}

// memberNames resolves display names for every member across the list in a
// single directory call. Names are cosmetic; a lookup failure degrades to
// bare ids instead of failing the request.
func (h *ListChatsController) memberNames(ctx context.Context, overviews []chat.Overview) map[string]string {
	if h.Users == nil || len(overviews) == 0 {
		return nil
	}
	ids := lo.Uniq(lo.FlatMap(overviews, func(ov chat.Overview, _ int) []string {
		return ov.MemberIDs
	}))
	users, err := h.Users.FindByIDs(ctx, ids)
	if err != nil {
		return nil
	}
	names := make(map[string]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}
	return names
}
