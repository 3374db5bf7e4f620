package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projecthub/submission-backend/internal/auth"
)

// Me returns the caller's identity and role
func (h *Handler) Me(c *gin.Context) {
	id, ok := auth.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": id})
}
