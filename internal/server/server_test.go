package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhirajnair/pspec/internal/review"
)

const snippet = "import os\n\ndef run(cmd):\n    try:\n        os.system(cmd)\n    except:\n        pass\n"

func testConfig() Config {
	opts := review.DefaultOptions()
	opts.MaxCodeLength = 1024
	return Config{
		Options:     opts,
		PEP8:        PEP8Info{URL: "https://peps.python.org/pep-0008/", Date: "2021-11-01", Revision: "r1"},
		CORSOrigins: []string{"http://localhost:5173"},
		Version:     "test",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func postCheck(t *testing.T, h http.Handler, body string) CheckResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func codeBody(t *testing.T, code string, extra map[string]any) string {
	t.Helper()
	m := map[string]any{"code": code}
	for k, v := range extra {
		m[k] = v
	}
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

func TestCheck_OK(t *testing.T) {
	h := New(testConfig()).Handler()
	resp := postCheck(t, h, codeBody(t, snippet, nil))

	require.True(t, resp.OK)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "2021-11-01", resp.PEP8Date)
	assert.Equal(t, "r1", resp.PEP8Revision)
	assert.NotEmpty(t, resp.Issues)
	assert.NotEmpty(t, resp.Advisories)

	var ids []string
	for _, f := range resp.Findings {
		ids = append(ids, f.RuleID)
	}
	assert.Contains(t, ids, "security.shell_exec")
}

func TestCheck_EngineFlags(t *testing.T) {
	h := New(testConfig()).Handler()
	resp := postCheck(t, h, codeBody(t, snippet, map[string]any{
		"pybp_enabled":    false,
		"enable_style":    false,
		"enable_security": false,
		"enable_errors":   "yes",
	}))

	require.True(t, resp.OK)
	assert.Empty(t, resp.Issues)
	assert.Empty(t, resp.Advisories)
	var domains []string
	for _, f := range resp.Findings {
		domains = append(domains, string(f.Domain))
	}
	assert.NotContains(t, domains, "security")
	assert.Contains(t, domains, "errors", "non-boolean flags keep the default")
}

func TestCheck_PybpNonBoolDisables(t *testing.T) {
	h := New(testConfig()).Handler()
	resp := postCheck(t, h, codeBody(t, snippet, map[string]any{"pybp_enabled": "true"}))
	require.True(t, resp.OK)
	assert.Empty(t, resp.Advisories)
}

func TestCheck_Failures(t *testing.T) {
	h := New(testConfig()).Handler()
	tests := []struct {
		name string
		body string
		want string
	}{
		{"invalid json", `{"code":`, "Invalid JSON"},
		{"empty body", ``, "Invalid JSON"},
		{"missing code", `{"pybp_enabled":true}`, "Missing or invalid 'code'"},
		{"null code", `{"code":null}`, "Missing or invalid 'code'"},
		{"numeric code", `{"code":12}`, "Missing or invalid 'code'"},
		{"array body", `["x = 1"]`, "Missing or invalid 'code'"},
		{"too long", codeBody(t, strings.Repeat("x", 1025), nil), "Code exceeds maximum length (1024 bytes)."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postCheck(t, h, tt.body)
			assert.False(t, resp.OK)
			require.NotNil(t, resp.Error)
			assert.Contains(t, *resp.Error, tt.want)
			assert.Equal(t, "https://peps.python.org/pep-0008/", resp.PEP8URL)
			assert.NotNil(t, resp.Issues)
			assert.Empty(t, resp.Issues)
			assert.NotNil(t, resp.Findings)
		})
	}
}

func TestCheck_EmptyCode(t *testing.T) {
	resp := postCheck(t, New(testConfig()).Handler(), `{"code":""}`)
	assert.True(t, resp.OK)
	assert.Empty(t, resp.Issues)
	assert.Empty(t, resp.Findings)
}

func TestCheck_WrongMethod(t *testing.T) {
	rec := httptest.NewRecorder()
	New(testConfig()).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/check", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestRootAndRules(t *testing.T) {
	h := New(testConfig()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"service":"pspec"`)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/rules", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var rules struct {
		Rules []struct {
			RuleID string `json:"rule_id"`
		} `json:"rules"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rules))
	require.NotEmpty(t, rules.Rules)
	for _, r := range rules.Rules {
		assert.True(t, strings.HasPrefix(r.RuleID, "pybp."), r.RuleID)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORS(t *testing.T) {
	h := New(testConfig()).Handler()

	t.Run("preflight allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/check", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Equal(t, "Content-Type", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	})

	t.Run("preflight rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/check", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/check", strings.NewReader(`{"code":"x = 1\n"}`))
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("wildcard", func(t *testing.T) {
		cfg := testConfig()
		cfg.CORSOrigins = []string{"*"}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", "http://anywhere.example")
		rec := httptest.NewRecorder()
		New(cfg).Handler().ServeHTTP(rec, req)
		assert.Equal(t, "http://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.Burst = 2
	h := New(cfg).Handler()

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimit_Disabled(t *testing.T) {
	h := New(testConfig()).Handler()
	for i := 0; i < 50; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
