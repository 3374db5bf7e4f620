package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthub/submission-backend/internal/uploadclient"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := rootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSubmitCLI(t *testing.T) {
	dir := t.TempDir()
	creds := filepath.Join(dir, "credentials.yaml")
	doc := filepath.Join(dir, "doc.pdf")
	require.NoError(t, os.WriteFile(doc, []byte("%PDF-"), 0o600))

	var gotAuth, gotTitle string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		switch r.URL.Path {
		case "/api/v1/create":
			gotTitle = r.FormValue("title")
			if gotTitle == "fail" {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.WriteHeader(http.StatusCreated)
		case "/api/v1/notifications/status":
			_, _ = w.Write([]byte(`{"acceptedproject":[{"id":"p1","title":"Alpha"}],"rejectedproject":[{"id":"p2","title":"Beta"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	common := []string{"--server", srv.URL, "--credentials", creds}

	t.Run("create without login is blocked", func(t *testing.T) {
		out, err := execute(t, "", append([]string{"create", "--title", "T", "--description", "D", "--file", doc}, common...)...)
		assert.ErrorIs(t, err, uploadclient.ErrNotLoggedIn)
		assert.Contains(t, out, uploadclient.MsgNotLoggedIn)
		assert.Empty(t, gotTitle)
	})

	t.Run("login from stdin", func(t *testing.T) {
		out, err := execute(t, "tok-1\n", append([]string{"login"}, common...)...)
		require.NoError(t, err)
		assert.Contains(t, out, creds)
	})

	t.Run("create", func(t *testing.T) {
		out, err := execute(t, "", append([]string{"create", "--title", "T", "--description", "D", "--file", doc}, common...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "Project created.")
		assert.Equal(t, "Bearer tok-1", gotAuth)
		assert.Equal(t, "T", gotTitle)
	})

	t.Run("create failure shows generic message", func(t *testing.T) {
		out, err := execute(t, "", append([]string{"create", "--title", "fail", "--description", "D", "--file", doc}, common...)...)
		assert.ErrorIs(t, err, uploadclient.ErrSubmitFailed)
		assert.Contains(t, out, uploadclient.MsgSubmitFailed)
	})

	t.Run("status", func(t *testing.T) {
		out, err := execute(t, "", append([]string{"status"}, common...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "p1  Alpha")
		assert.Contains(t, out, "p2  Beta")
	})

	t.Run("logout", func(t *testing.T) {
		_, err := execute(t, "", append([]string{"logout"}, common...)...)
		require.NoError(t, err)

		_, err = execute(t, "", append([]string{"status"}, common...)...)
		assert.ErrorIs(t, err, uploadclient.ErrNotLoggedIn)
	})
}
