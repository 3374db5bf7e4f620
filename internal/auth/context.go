package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	CtxFirebaseUID   = "firebase_uid"
	CtxEmail         = "email"
	CtxEmailVerified = "email_verified"
	CtxDisplayName   = "display_name"
	CtxUserDBID      = "user_db_id"
	CtxRole          = "role"
)

// Identity is the authenticated caller as seen by handlers.
type Identity struct {
	UserID      string `json:"user_id"`
	FirebaseUID string `json:"firebase_uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
}

// UserFirebaseUID extracts the Firebase UID from the Gin context.
// This is set by the bearer auth middleware.
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

func UserDBID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserDBID))
}

func IsAdmin(c *gin.Context) bool {
	return c.GetString(CtxRole) == "admin"
}

// CurrentIdentity returns the caller and whether one was resolved.
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	uid := UserFirebaseUID(c)
	if uid == "" {
		return Identity{}, false
	}
	return Identity{
		UserID:      UserDBID(c),
		FirebaseUID: uid,
		Email:       c.GetString(CtxEmail),
		DisplayName: c.GetString(CtxDisplayName),
		Role:        c.GetString(CtxRole),
	}, true
}
