package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical-ai/spherical/libs/ledger-engine/cmd/ledger-engine-api/handlers"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/app"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/ledger-engine/internal/storage/storagetest"
)

func newTestServer(t *testing.T, dbPath string) *httptest.Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.SQLite.Path = dbPath

	engine, err := app.New(cfg, observability.NopLogger())
	require.NoError(t, err)

	srv := httptest.NewServer(NewRouter(observability.NopLogger(), cfg, engine))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouter_Health(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing.db"))

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}

func TestRouter_ReadyReflectsStore(t *testing.T) {
	missing := newTestServer(t, filepath.Join(t.TempDir(), "missing.db"))
	resp, err := http.Get(missing.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	present := newTestServer(t, storagetest.NewFile(t, storagetest.Fixture{}))
	resp, err = http.Get(present.URL + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouter_Questions(t *testing.T) {
	db := storagetest.NewFile(t, storagetest.Fixture{
		Sales: []storagetest.Sale{
			{Date: "2023-10-05", Total: "1,000"},
			{Date: "2024-10-11", Total: "250.5"},
		},
	})
	srv := newTestServer(t, db)

	resp, err := http.Post(srv.URL+"/api/v1/questions", "application/json",
		strings.NewReader(`{"question":"what were sales in October"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body handlers.QuestionResponseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Handled)
	assert.Equal(t, "sales-by-month", body.Rule)
	assert.Equal(t, "October sales by year:\n- 2023: ₹1,000.00\n- 2024: ₹250.50", body.Answer)
}

func TestRouter_Rules(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing.db"))

	resp, err := http.Get(srv.URL + "/api/v1/rules")
	require.NoError(t, err)
	defer resp.Body.Close()

	var rules []struct {
		Name string `json:"name"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rules))
	require.NotEmpty(t, rules)
	assert.Equal(t, "aged-receivables", rules[0].Name)
	assert.Equal(t, "company-outstanding", rules[len(rules)-1].Name)
}

func TestRouter_CORSPreflight(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "missing.db"))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/v1/questions", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
