package controller

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	userport "github.com/akashwav/ConnectGo/internal/repository/port"
)

// SearchUsersController handles peer lookup for starting a new chat
// (one controller per endpoint).
type SearchUsersController struct {
	Users userport.UserDirectory
}

func NewSearchUsersController(users userport.UserDirectory) *SearchUsersController {
	return &SearchUsersController{Users: users}
}

func (h *SearchUsersController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("search")
		if query == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "search is required"})
			return
		}

		limit := 0 // directory default
		if v := c.Query("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		users, err := h.Users.Search(ctx, query, c.Query("user_id"), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "user search failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
	}
}
