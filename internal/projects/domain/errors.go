package domain

import "errors"

var (
	ErrNotFound        = errors.New("project not found")
	ErrAlreadyReviewed = errors.New("project already reviewed")
	ErrInvalidStatus   = errors.New("invalid project status")
	ErrInvalidInput    = errors.New("invalid project submission")
	ErrFileTooLarge    = errors.New("file too large")
)
