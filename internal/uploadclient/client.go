package uploadclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/projecthub/submission-backend/internal/projects/domain"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8000"

	createPath = "/api/v1/create"
	statusPath = "/api/v1/notifications/status"
)

// Submission is what the form hands to the transport.
type Submission struct {
	Title       string
	Description string
	FileName    string
	File        io.Reader
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Client talks to the submission backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client. A nil httpClient gets a 5 minute timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Minute}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// CreateProject posts title, description and file as multipart/form-data.
// The response body is not inspected beyond the status code.
func (c *Client) CreateProject(ctx context.Context, token string, s Submission) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeSubmission(mw, s))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+createPath, pr)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pr.CloseWithError(err)
		return fmt.Errorf("create project: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

func writeSubmission(mw *multipart.Writer, s Submission) error {
	if err := mw.WriteField("title", s.Title); err != nil {
		return err
	}
	if err := mw.WriteField("description", s.Description); err != nil {
		return err
	}
	fw, err := mw.CreateFormFile("file", s.FileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, s.File); err != nil {
		return err
	}
	return mw.Close()
}

// Status fetches the caller's approved and rejected projects.
func (c *Client) Status(ctx context.Context, token string) (*domain.StatusReport, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statusPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{Code: resp.StatusCode}
	}

	var report domain.StatusReport
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, fmt.Errorf("decode status: %w", err)
	}
	return domain.NewStatusReport(report.Accepted, report.Rejected), nil
}
