package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mining-pnl/internal/data"

	"github.com/gin-gonic/gin"
)

const btcSheet = "model,hashrate (TH/s),power (W)\nS21,200,3500\nS19 XP,141,3010\n"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "btc.csv"), []byte(btcSheet), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}
	cache, err := data.NewTableCache(4)
	if err != nil {
		t.Fatal(err)
	}
	return NewRouter(Options{ReferenceDir: dir, Tables: cache})
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func projectionBody() map[string]any {
	return map[string]any{
		"start_month":      "2025-01",
		"end_month":        "2026-12",
		"operating_months": []int{1, 2, 3, 10, 11, 12},
		"sell_lag_months":  12,
		"fleets": []map[string]any{{
			"name":             "btc",
			"source_csv":       "btc.csv",
			"model_name":       "S21",
			"units":            10,
			"base_price_usd":   60000,
			"network_hashrate": "650 EH/s",
			"block_time_s":     600,
			"block_reward":     3.125,
			"pool_fee_pct":     0.02,
		}},
		"options": map[string]any{"include_monthly": true, "include_annual": true},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("bad JSON %q: %v", w.Body.String(), err)
	}
	return out
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	e, _ := decode(t, w)["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodGet, "/health", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRunProjection(t *testing.T) {
	w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/projections", projectionBody())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	out := decode(t, w)
	summary := out["summary"].(map[string]any)
	if summary["months"].(float64) != 24 || summary["operating_months"].(float64) != 12 {
		t.Fatalf("summary = %v", summary)
	}
	if monthly := out["monthly"].([]any); len(monthly) != 24 {
		t.Fatalf("monthly rows = %d", len(monthly))
	}
	if cash := out["annual_cash"].([]any); len(cash) != 3 {
		t.Fatalf("annual_cash years = %d, want 3", len(cash))
	}
	if accrual := out["annual_accrual"].([]any); len(accrual) != 2 {
		t.Fatalf("annual_accrual years = %d, want 2", len(accrual))
	}
}

func TestRunProjectionOmitsOptionalSections(t *testing.T) {
	body := projectionBody()
	delete(body, "options")
	out := decode(t, do(t, newTestRouter(t), http.MethodPost, "/api/v1/projections", body))
	for _, k := range []string{"monthly", "annual_accrual", "annual_cash"} {
		if _, ok := out[k]; ok {
			t.Errorf("%s should be omitted", k)
		}
	}
}

func TestRunProjectionErrors(t *testing.T) {
	cases := []struct {
		name   string
		edit   func(map[string]any)
		status int
		code   string
	}{
		{"missing lag", func(b map[string]any) { delete(b, "sell_lag_months") }, http.StatusBadRequest, "INVALID_CONFIG"},
		{"unknown model", func(b map[string]any) { fleet(b)["model_name"] = "S9" }, http.StatusNotFound, "SPEC_NOT_FOUND"},
		{"traversal", func(b map[string]any) { fleet(b)["source_csv"] = "../etc/passwd" }, http.StatusBadRequest, "INVALID_CONFIG"},
		{"absolute", func(b map[string]any) { fleet(b)["source_csv"] = "/etc/passwd" }, http.StatusBadRequest, "INVALID_CONFIG"},
		{"bad unit", func(b map[string]any) { fleet(b)["network_hashrate"] = "650 XH/s" }, http.StatusBadRequest, "INVALID_CONFIG"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body := projectionBody()
			tc.edit(body)
			w := do(t, newTestRouter(t), http.MethodPost, "/api/v1/projections", body)
			if w.Code != tc.status || errorCode(t, w) != tc.code {
				t.Fatalf("got %d %s, want %d %s: %s", w.Code, errorCode(t, w), tc.status, tc.code, w.Body.String())
			}
		})
	}
}

func TestRunProjectionSchemaError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "btc.csv"), []byte("model,speed,power (W)\nS21,200,3500\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewRouter(Options{ReferenceDir: dir})
	w := do(t, r, http.MethodPost, "/api/v1/projections", projectionBody())
	if w.Code != http.StatusUnprocessableEntity || errorCode(t, w) != "SCHEMA_ERROR" {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}

func fleet(b map[string]any) map[string]any {
	return b["fleets"].([]map[string]any)[0]
}

func TestListModels(t *testing.T) {
	r := newTestRouter(t)
	out := decode(t, do(t, r, http.MethodGet, "/api/v1/models?source=btc.csv", nil))
	if out["count"].(float64) != 2 {
		t.Fatalf("models = %v", out)
	}
	first := out["models"].([]any)[0].(map[string]any)
	if first["model"] != "S21" || first["display"] != "200 TH/s" {
		t.Fatalf("first model = %v", first)
	}

	out = decode(t, do(t, r, http.MethodGet, "/api/v1/models", nil))
	if out["count"].(float64) != 1 {
		t.Fatalf("sources = %v", out)
	}

	w := do(t, r, http.MethodGet, "/api/v1/models?source=../x.csv", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("traversal status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/projections", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("Allow-Origin = %q", got)
	}
}
