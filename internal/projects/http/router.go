package http

import "github.com/gin-gonic/gin"

// Register attaches the user facing project routes. uploadGuards run in front
// of the creation endpoint only.
func (h *Handler) Register(rg *gin.RouterGroup, uploadGuards ...gin.HandlerFunc) {
	create := append(append([]gin.HandlerFunc{}, uploadGuards...), h.create)
	rg.POST("/create", create...)

	rg.GET("/notifications/status", h.statusReport)
	rg.GET("/notificationforstatus", h.statusReport)

	projects := rg.Group("/projects")
	projects.GET("", h.list)
	projects.GET("/:id", h.get)
	projects.GET("/:id/file", h.download)
}

// RegisterAdmin attaches review routes. The group must already enforce the admin role.
func (h *Handler) RegisterAdmin(rg *gin.RouterGroup) {
	rg.GET("/projects", h.adminList)
	rg.POST("/projects/:id/approve", h.approve)
	rg.POST("/projects/:id/reject", h.reject)
}
