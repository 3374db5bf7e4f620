package uploadclient

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type memFile struct {
	name string
	data []byte
}

func (m memFile) Name() string { return m.name }

func (m memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.data)), nil
}

type fakeSubmitter struct {
	mu    sync.Mutex
	calls []Submission
	token string
	err   error
	block chan struct{}
}

func (s *fakeSubmitter) CreateProject(_ context.Context, token string, sub Submission) error {
	if s.block != nil {
		<-s.block
	}
	data, _ := io.ReadAll(sub.File)
	sub.File = bytes.NewReader(data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, sub)
	s.token = token
	return s.err
}

func (s *fakeSubmitter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func filledForm(session Session, sub Submitter, logger *zap.Logger) *Form {
	f := NewForm(session, sub, logger)
	f.SetTitle("T")
	f.SetDescription("D")
	f.SetFile(memFile{name: "doc.pdf", data: []byte("%PDF-")})
	return f
}

func TestForm_NotLoggedIn(t *testing.T) {
	sub := &fakeSubmitter{}
	f := filledForm(NewSession(""), sub, zap.NewNop())

	v := f.View()
	assert.True(t, v.Blocked)
	assert.Equal(t, MsgNotLoggedIn, v.Message)
	assert.Nil(t, v.Fields)
	assert.Empty(t, v.SubmitLabel)

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrNotLoggedIn)
	assert.Zero(t, sub.count())
}

func TestForm_SubmitSuccessClearsFields(t *testing.T) {
	sub := &fakeSubmitter{err: errors.New("boom")}
	f := filledForm(NewSession("tok"), sub, zap.NewNop())

	require.Error(t, f.Submit(context.Background()))
	require.Equal(t, MsgSubmitFailed, f.View().Error)

	sub.err = nil
	require.NoError(t, f.Submit(context.Background()))

	v := f.View()
	assert.False(t, v.Blocked)
	assert.Equal(t, &FieldsView{}, v.Fields)
	assert.Empty(t, v.Error)
	assert.Equal(t, LabelSubmit, v.SubmitLabel)
	assert.Equal(t, StateIdle, f.State())

	require.Equal(t, 2, sub.count())
	last := sub.calls[1]
	assert.Equal(t, "tok", sub.token)
	assert.Equal(t, "T", last.Title)
	assert.Equal(t, "D", last.Description)
	assert.Equal(t, "doc.pdf", last.FileName)
}

func TestForm_SubmitFailureKeepsFields(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sub := &fakeSubmitter{err: &StatusError{Code: 500}}
	f := filledForm(NewSession("tok"), sub, zap.New(core))

	err := f.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmitFailed)

	v := f.View()
	assert.Equal(t, &FieldsView{Title: "T", Description: "D", FileName: "doc.pdf"}, v.Fields)
	assert.Equal(t, MsgSubmitFailed, v.Error)
	assert.Equal(t, StateIdle, f.State())
	assert.Equal(t, 1, logs.Len(), "underlying error is logged")
}

func TestForm_IncompleteForm(t *testing.T) {
	sub := &fakeSubmitter{}
	f := NewForm(NewSession("tok"), sub, zap.NewNop())
	f.SetTitle("T")
	f.SetDescription("   ")

	assert.ErrorIs(t, f.Submit(context.Background()), ErrIncompleteForm)
	assert.Zero(t, sub.count())
	assert.Empty(t, f.View().Error)
}

func TestForm_SubmittingLabel(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{})}
	f := filledForm(NewSession("tok"), sub, zap.NewNop())

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return f.State() == StateSubmitting }, time.Second, time.Millisecond)
	assert.Equal(t, LabelSubmitting, f.View().SubmitLabel)

	close(sub.block)
	require.NoError(t, <-done)
	assert.Equal(t, LabelSubmit, f.View().SubmitLabel)
}

func TestForm_ConcurrentSubmitsAreNotDeduplicated(t *testing.T) {
	sub := &fakeSubmitter{block: make(chan struct{})}
	f := filledForm(NewSession("tok"), sub, zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = f.Submit(context.Background())
		}()
	}

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.inFlight == 2
	}, time.Second, time.Millisecond)

	close(sub.block)
	wg.Wait()
	assert.Equal(t, 2, sub.count())
	assert.Equal(t, StateIdle, f.State())
}
