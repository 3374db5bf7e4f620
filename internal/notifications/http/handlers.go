package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/projecthub/submission-backend/internal/auth"
	"github.com/projecthub/submission-backend/internal/logging"
	"github.com/projecthub/submission-backend/internal/notifications/domain"
)

func (h *Handler) list(c *gin.Context) {
	limit := domain.DefaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "limit must be a positive integer"})
			return
		}
		limit = n
	}

	items, err := h.svc.List(c.Request.Context(), auth.UserFirebaseUID(c), limit)
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("list_notifications", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "notifications": items})
}

func (h *Handler) markRead(c *gin.Context) {
	err := h.svc.MarkRead(c.Request.Context(), auth.UserFirebaseUID(c), c.Param("id"))
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": err.Error()})
		return
	}
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("mark_notification_read", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
