package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projecthub/submission-backend/internal/auth"
	"github.com/projecthub/submission-backend/internal/logging"
	"github.com/projecthub/submission-backend/internal/projects/domain"
)

func (h *Handler) create(c *gin.Context) {
	maxSize := h.projects.MaxFileSize()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": domain.ErrFileTooLarge.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid multipart body"})
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "file is required"})
		return
	}
	if header.Size > maxSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": domain.ErrFileTooLarge.Error()})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "cannot read file"})
		return
	}
	defer f.Close()

	p, err := h.projects.Submit(c.Request.Context(), auth.UserFirebaseUID(c), domain.NewSubmission{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        f,
	})
	if err != nil {
		writeError(c, "create_project", err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"ok": true, "project": p})
}

func (h *Handler) statusReport(c *gin.Context) {
	report, err := h.status.Report(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		logging.NewLogger(c.Request.Context()).LogError("status_report", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "failed to load project status"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.projects.ListMine(c.Request.Context(), auth.UserFirebaseUID(c))
	if err != nil {
		writeError(c, "list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.projects.Get(c.Request.Context(), auth.UserFirebaseUID(c), auth.IsAdmin(c), c.Param("id"))
	if err != nil {
		writeError(c, "get_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func (h *Handler) download(c *gin.Context) {
	p, rc, err := h.projects.OpenFile(c.Request.Context(), auth.UserFirebaseUID(c), auth.IsAdmin(c), c.Param("id"))
	if err != nil {
		writeError(c, "download_project_file", err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, p.FileSize, p.ContentType, rc, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", p.FileName),
	})
}

func (h *Handler) adminList(c *gin.Context) {
	status, err := domain.ParseStatus(c.DefaultQuery("status", string(domain.StatusPending)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
		return
	}

	items, err := h.projects.ListByStatus(c.Request.Context(), status)
	if err != nil {
		writeError(c, "admin_list_projects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "projects": items})
}

func (h *Handler) approve(c *gin.Context) {
	h.review(c, domain.StatusApproved)
}

func (h *Handler) reject(c *gin.Context) {
	h.review(c, domain.StatusRejected)
}

func (h *Handler) review(c *gin.Context, decision domain.Status) {
	var req reviewReq
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid body"})
			return
		}
	}

	p, err := h.projects.Review(c.Request.Context(), c.Param("id"), decision, req.Note)
	if err != nil {
		writeError(c, "review_project", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "project": p})
}

func writeError(c *gin.Context, operation string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "project not found"})
	case errors.Is(err, domain.ErrAlreadyReviewed):
		c.JSON(http.StatusConflict, gin.H{"ok": false, "error": err.Error()})
	default:
		logging.NewLogger(c.Request.Context()).LogError(operation, err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": err.Error()})
	}
}

func isBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	if errors.As(err, &mbe) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}
