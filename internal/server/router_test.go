package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, method, path string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	b, _ := io.ReadAll(rec.Result().Body)
	return rec.Code, string(b)
}

func TestRouter_StatusAndHealth(t *testing.T) {
	healthy := true
	h := NewRouter(Routes{Health: func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("db down")
	}}, nil)

	code, body := get(t, h, http.MethodGet, "/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `"status":"running"`)

	code, _ = get(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, code)

	healthy = false
	code, body = get(t, h, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body, "db down")
}

func TestRouter_ServesInvoices(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "invoice_a.pdf"), []byte("%PDF-1.3"), 0o600))
	h := NewRouter(Routes{StaticDir: dir}, nil)

	code, body := get(t, h, http.MethodGet, "/static/invoice_a.pdf")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "%PDF-1.3", body)

	code, _ = get(t, h, http.MethodGet, "/static/")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = get(t, h, http.MethodGet, "/static/missing.pdf")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestRouter_Webhooks(t *testing.T) {
	var hits []string
	mk := func(name string) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			hits = append(hits, name)
			w.WriteHeader(http.StatusOK)
		})
	}
	h := NewRouter(Routes{Twilio: mk("twilio"), Telegram: mk("telegram"), TelegramPath: "/webhooks/telegram"}, nil)

	code, _ := get(t, h, http.MethodPost, "/webhooks/twilio")
	assert.Equal(t, http.StatusOK, code)
	code, _ = get(t, h, http.MethodPost, "/webhooks/telegram")
	assert.Equal(t, http.StatusOK, code)
	code, _ = get(t, h, http.MethodGet, "/webhooks/twilio")
	assert.Equal(t, http.StatusMethodNotAllowed, code)

	assert.Equal(t, []string{"twilio", "telegram"}, hits)
}

func TestConnectDB_Memory(t *testing.T) {
	s, err := ConnectDB(context.Background(), commonMemoryConfig(), discardLogger())
	require.NoError(t, err)
	assert.Nil(t, s.DB)
	assert.NoError(t, s.PingDB(context.Background(), 0, nil))
	s.CloseDB(nil)

	_, err = s.Users.Create(context.Background(), "a")
	assert.NoError(t, err)
}

func TestConnectDB_SQLite(t *testing.T) {
	cfg := commonMemoryConfig()
	cfg.Driver = "sqlite"
	cfg.DSN = "file:" + filepath.Join(t.TempDir(), "bot.db")
	s, err := ConnectDB(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	defer s.CloseDB(discardLogger())

	require.NotNil(t, s.DB)
	assert.NoError(t, s.PingDB(context.Background(), 0, discardLogger()))
	u, err := s.Users.Create(context.Background(), "whatsapp:+1")
	require.NoError(t, err)
	assert.Equal(t, "whatsapp:+1", u.Identity)
}
