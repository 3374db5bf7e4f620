package uploadclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	MsgNotLoggedIn  = "Error: You are not logged in. Please log in first."
	MsgSubmitFailed = "An error occurred while creating the project."
	LabelSubmit     = "Submit"
	LabelSubmitting = "Submitting..."
)

var (
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrIncompleteForm = errors.New("title, description and file are required")
	ErrSubmitFailed   = errors.New("project submission failed")
)

// State of the form's submit cycle.
type State int

const (
	StateIdle State = iota
	StateSubmitting
)

func (s State) String() string {
	if s == StateSubmitting {
		return "submitting"
	}
	return "idle"
}

// Submitter sends a submission to the backend. *Client implements it.
type Submitter interface {
	CreateProject(ctx context.Context, token string, s Submission) error
}

// FileSource is a user selected file.
type FileSource interface {
	Name() string
	Open() (io.ReadCloser, error)
}

type localFile struct {
	path string
}

// LocalFile selects a file on disk.
func LocalFile(path string) FileSource {
	return localFile{path: path}
}

func (f localFile) Name() string {
	return filepath.Base(f.path)
}

func (f localFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}

// FieldsView is the editable part of the form.
type FieldsView struct {
	Title       string
	Description string
	FileName    string
}

// View is what a front end renders. A blocked view has no fields.
type View struct {
	Blocked     bool
	Message     string
	Fields      *FieldsView
	SubmitLabel string
	Error       string
}

// Form collects a project submission. It is safe for concurrent use; there is
// no guard against submitting the same values twice.
type Form struct {
	session   Session
	submitter Submitter
	logger    *zap.Logger

	mu          sync.Mutex
	title       string
	description string
	file        FileSource
	errMsg      string
	inFlight    int
}

// NewForm builds a form bound to session. A nil logger uses the global zap logger.
func NewForm(session Session, submitter Submitter, logger *zap.Logger) *Form {
	if session == nil {
		session = Unauthenticated{}
	}
	if logger == nil {
		logger = zap.L()
	}
	return &Form{session: session, submitter: submitter, logger: logger}
}

func (f *Form) SetTitle(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.title = v
}

func (f *Form) SetDescription(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.description = v
}

func (f *Form) SetFile(file FileSource) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.file = file
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Form) stateLocked() State {
	if f.inFlight > 0 {
		return StateSubmitting
	}
	return StateIdle
}

func (f *Form) View() View {
	if _, ok := f.session.Token(); !ok {
		return View{Blocked: true, Message: MsgNotLoggedIn}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fields := &FieldsView{Title: f.title, Description: f.description}
	if f.file != nil {
		fields.FileName = f.file.Name()
	}
	label := LabelSubmit
	if f.stateLocked() == StateSubmitting {
		label = LabelSubmitting
	}
	return View{Fields: fields, SubmitLabel: label, Error: f.errMsg}
}

// Submit sends the current values. On success the fields and any previous
// error are cleared. On failure the fields are kept and the generic error
// message is set.
func (f *Form) Submit(ctx context.Context) error {
	token, ok := f.session.Token()
	if !ok {
		return ErrNotLoggedIn
	}

	f.mu.Lock()
	if strings.TrimSpace(f.title) == "" || strings.TrimSpace(f.description) == "" || f.file == nil {
		f.mu.Unlock()
		return ErrIncompleteForm
	}
	title, description, file := f.title, f.description, f.file
	f.inFlight++
	f.mu.Unlock()

	err := f.send(ctx, token, title, description, file)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--

	if err != nil {
		f.logger.Error("create project failed", zap.String("title", title), zap.Error(err))
		f.errMsg = MsgSubmitFailed
		return fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}

	f.title, f.description, f.file = "", "", nil
	f.errMsg = ""
	return nil
}

func (f *Form) send(ctx context.Context, token, title, description string, file FileSource) error {
	rc, err := file.Open()
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer rc.Close()

	return f.submitter.CreateProject(ctx, token, Submission{
		Title:       title,
		Description: description,
		FileName:    file.Name(),
		File:        rc,
	})
}
