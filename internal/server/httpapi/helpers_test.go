package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/credvault/internal/cryptox"
	"github.com/dmitrijs2005/credvault/internal/dbx"
	"github.com/dmitrijs2005/credvault/internal/logging"
	"github.com/dmitrijs2005/credvault/internal/server/audit"
	"github.com/dmitrijs2005/credvault/internal/server/auth"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/credvault/internal/server/repositories/sqlitetest"
	"github.com/dmitrijs2005/credvault/internal/server/services"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// newTestRouter serves a real engine over a private SQLite database.
func newTestRouter(t *testing.T) *echo.Echo {
	t.Helper()

	db := sqlitetest.Open(t)
	m := repomanager.NewSQLiteRepositoryManager()
	hasher, err := cryptox.NewArgon2Hasher(cryptox.Params{MemoryKiB: 8 * 1024, Time: 1, Threads: 1, KeyLength: 16})
	require.NoError(t, err)
	tokens, err := auth.NewTokenService([]byte("http-test-secret"), time.Hour, 24*time.Hour)
	require.NoError(t, err)

	logger := logging.NewNop()
	engine, err := services.NewAuthEngine(db, m, hasher, tokens, audit.NewLog(m.AuditLog(db), logger), logger)
	require.NoError(t, err)

	return NewRouter(engine, map[string]dbx.Pinger{"database": db}, logger)
}

// do sends a JSON request and returns the recorder.
func do(t *testing.T, e *echo.Echo, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("User-Agent", "http-test")
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func register(t *testing.T, e *echo.Echo, username, password string) {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/register", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func login(t *testing.T, e *echo.Echo, username, password string) (access, refresh string) {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/login", map[string]string{"username": username, "password": password}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decode(t, rec)
	return body["access_token"].(string), body["refresh_token"].(string)
}
