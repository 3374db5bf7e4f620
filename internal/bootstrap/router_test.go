package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projecthub/submission-backend/internal/auth"
	"github.com/projecthub/submission-backend/internal/storage/blob"
	"github.com/projecthub/submission-backend/internal/users"
)

type staticUsers struct{}

func (staticUsers) EnsureUser(_ context.Context, u users.UpsertUser) (*users.User, error) {
	role := users.RoleUser
	if u.Promote {
		role = users.RoleAdmin
	}
	return &users.User{ID: "db-" + u.FirebaseUID, FirebaseUID: u.FirebaseUID, Email: u.Email, Role: role}, nil
}

type routerEnv struct {
	router   *gin.Engine
	mock     sqlmock.Sqlmock
	verifier *auth.JWTVerifier
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	blobs, err := blob.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	verifier := auth.NewJWTVerifier("secret", "projecthub")
	r := BuildRouter(RouterDeps{
		ServiceName:         "projecthub-api",
		Version:             "test",
		AllowedOrigins:      []string{"http://localhost:3000"},
		SQL:                 db,
		Redis:               rdb,
		Blobs:               blobs,
		Verifier:            verifier,
		Users:               staticUsers{},
		AdminEmails:         []string{"admin@example.com"},
		StatusTTL:           time.Minute,
		UploadMaxBytes:      1 << 20,
		UploadRatePerMinute: 10,
		UploadBurst:         3,
	})
	return &routerEnv{router: r, mock: mock, verifier: verifier}
}

func (e *routerEnv) get(t *testing.T, path, uid, email string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if uid != "" {
		token, err := e.verifier.IssueToken(uid, email, "", time.Minute)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestBuildRouter(t *testing.T) {
	env := newRouterEnv(t)

	t.Run("health without database", func(t *testing.T) {
		w := env.get(t, "/health", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"db":"disabled"`)
		assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		w := env.get(t, "/metrics", "", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "projecthub_")
	})

	t.Run("api requires token", func(t *testing.T) {
		w := env.get(t, "/api/v1/notifications/status", "", "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("status report is cached", func(t *testing.T) {
		env.mock.ExpectQuery(`SELECT id, title`).
			WithArgs("U", "approved").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("p1", "Alpha"))
		env.mock.ExpectQuery(`SELECT id, title`).
			WithArgs("U", "rejected").
			WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow("p2", "Beta"))

		want := `{"acceptedproject":[{"id":"p1","title":"Alpha"}],"rejectedproject":[{"id":"p2","title":"Beta"}]}`

		w := env.get(t, "/api/v1/notifications/status", "U", "u@example.com")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, want, w.Body.String())

		w = env.get(t, "/api/v1/notifications/status", "U", "u@example.com")
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, want, w.Body.String())
		require.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("me", func(t *testing.T) {
		w := env.get(t, "/api/v1/me", "U", "u@example.com")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"user"`)
	})

	t.Run("admin routes need admin role", func(t *testing.T) {
		w := env.get(t, "/api/v1/admin/projects", "U", "u@example.com")
		assert.Equal(t, http.StatusForbidden, w.Code)

		env.mock.ExpectQuery(`WHERE status = \$1`).
			WithArgs("pending").
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "user_firebase_uid", "title", "description", "file_key", "file_name", "file_size",
				"content_type", "status", "reviewed_at", "created_at", "updated_at",
			}))

		w = env.get(t, "/api/v1/admin/projects", "A", "admin@example.com")
		assert.Equal(t, http.StatusOK, w.Code)
		require.NoError(t, env.mock.ExpectationsWereMet())
	})

	t.Run("cors preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/create", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
