package http

import "github.com/projecthub/submission-backend/internal/projects/service"

// multipartOverhead is allowed on top of the file limit for the form fields and boundaries.
const multipartOverhead = 1 << 20

// Handler bundles the dependencies for projects HTTP endpoints.
type Handler struct {
	projects *service.ProjectService
	status   *service.StatusService
}

func New(projects *service.ProjectService, status *service.StatusService) *Handler {
	return &Handler{projects: projects, status: status}
}

type reviewReq struct {
	Note string `json:"note"`
}
