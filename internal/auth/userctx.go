package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projecthub/submission-backend/internal/users"
)

// UserStore upserts the authenticated caller.
type UserStore interface {
	EnsureUser(ctx context.Context, u users.UpsertUser) (*users.User, error)
}

// WithUser must run after BearerAuth. Callers whose verified email is listed
// in adminEmails are promoted to admin.
func WithUser(store UserStore, adminEmails []string) gin.HandlerFunc {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, e := range adminEmails {
		admins[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}

	return func(c *gin.Context) {
		fuid := UserFirebaseUID(c)
		if fuid == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"ok": false, "error": "user not authenticated"})
			c.Abort()
			return
		}

		email := c.GetString(CtxEmail)
		_, listed := admins[strings.ToLower(email)]
		promote := listed && c.GetBool(CtxEmailVerified)

		u, err := store.EnsureUser(c.Request.Context(), users.UpsertUser{
			FirebaseUID: fuid,
			Email:       email,
			DisplayName: c.GetString(CtxDisplayName),
			Promote:     promote && email != "",
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "ensure user: " + err.Error()})
			c.Abort()
			return
		}

		c.Set(CtxUserDBID, u.ID)
		c.Set(CtxRole, u.Role)
		if u.Email != "" {
			c.Set(CtxEmail, u.Email)
		}
		if u.DisplayName != "" {
			c.Set(CtxDisplayName, u.DisplayName)
		}
		c.Next()
	}
}

// RequireRole aborts with 403 unless the caller holds role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRole) != role {
			c.JSON(http.StatusForbidden, gin.H{"ok": false, "error": "forbidden"})
			c.Abort()
			return
		}
		c.Next()
	}
}
