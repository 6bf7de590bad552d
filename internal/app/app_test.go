package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invoicehttp "github.com/odyssey-erp/odyssey-invoice/internal/invoice/http"
	"github.com/odyssey-erp/odyssey-invoice/internal/observability"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.AppAddr)
	assert.Equal(t, "₹", cfg.InvoiceCurrencySymbol)
	assert.Equal(t, "en-IN", cfg.InvoiceLocale)
	assert.Equal(t, 60, cfg.InvoiceRateLimit)
	assert.Equal(t, 10, cfg.InvoiceDocumentLimit)
	assert.Equal(t, 1000, cfg.InvoiceMaxSessions)
	assert.Equal(t, 30*time.Second, cfg.GotenbergTimeout)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("INVOICE_RATE_LIMIT", "5")
	t.Setenv("INVOICE_CURRENCY_SYMBOL", "Rs.")
	t.Setenv("GOTENBERG_URL", "http://gotenberg:3000")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 5, cfg.InvoiceRateLimit)
	assert.Equal(t, "Rs.", cfg.InvoiceCurrencySymbol)
	assert.Equal(t, "http://gotenberg:3000", cfg.GotenbergURL)
}

func TestLoadConfigRejectsInvalidLimits(t *testing.T) {
	t.Setenv("INVOICE_RATE_LIMIT", "0")
	_, err := LoadConfig()
	require.Error(t, err)

	t.Setenv("INVOICE_RATE_LIMIT", "10")
	t.Setenv("INVOICE_MAX_SESSIONS", "-1")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("INVOICE_MAX_SESSIONS", "many")
	_, err = LoadConfig()
	require.Error(t, err)

	t.Setenv("INVOICE_MAX_SESSIONS", "10")
	t.Setenv("INVOICE_DOCUMENT_RATE_LIMIT", "0")
	_, err = LoadConfig()
	require.Error(t, err)
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	t.Cleanup(RefreshTestMode)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	logger := NewLogger(cfg)
	metrics := observability.NewMetrics()
	handler := invoicehttp.NewHandler(invoicehttp.HandlerOptions{
		Logger:   logger,
		Registry: invoicehttp.NewRegistry(cfg.InvoiceMaxSessions, nil, metrics),
	})
	return NewRouter(RouterParams{Logger: logger, Config: cfg, InvoiceHandler: handler, Metrics: metrics})
}

func TestRouterHealthzAndSecurityHeaders(t *testing.T) {
	router := testRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rr.Header().Get("X-Ratelimit-Limit"))
}

func TestRouterMountsInvoicesAndMetrics(t *testing.T) {
	router := testRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/invoices/sessions", nil))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "blocked", body["state"])

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "odyssey_invoice_sessions_active 1"))
	assert.Contains(t, rr.Body.String(), `route="/invoices/sessions"`)
}

func TestInTestModeFollowsEnv(t *testing.T) {
	t.Setenv(testModeEnv, "1")
	RefreshTestMode()
	assert.True(t, InTestMode())

	t.Setenv(testModeEnv, "")
	RefreshTestMode()
	assert.False(t, InTestMode())
}

func TestLoggerHonoursFormatAndLevel(t *testing.T) {
	var buf strings.Builder
	logger := newLogger(&buf, &Config{LogFormat: "json", LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("invoice submission blocked", "invoice_no", "INV-1")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(out)), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, "INV-1", entry["invoice_no"])

	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelInfo, parseLevel("verbose"))
}
