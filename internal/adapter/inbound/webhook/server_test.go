package webhook_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/lockwatch/internal/adapter/inbound/webhook"
	"github.com/jonny/lockwatch/pkg/health"
)

func newTestServer(t *testing.T, cfg webhook.ServerConfig, cmd *fakeCommander) http.Handler {
	t.Helper()
	checker := health.NewChecker("test")
	checker.Require("sesame-credential", cmd.HasCredential, "device api key not configured")
	return webhook.NewServer(cfg, newInteractionService(cmd), checker, discardLogger()).SetupRoutes()
}

func TestServer_Routes(t *testing.T) {
	cmd := newFakeCommander()
	h := newTestServer(t, webhook.ServerConfig{Port: 8080}, cmd)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/healthz", "", http.StatusOK},
		{http.MethodGet, "/readyz", "", http.StatusOK},
		{http.MethodPost, "/interactions/discord", `{"type":1}`, http.StatusOK},
		{http.MethodGet, "/interactions/discord", "", http.StatusMethodNotAllowed},
		{http.MethodPost, "/unknown", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestServer_ReadinessWithoutCredential(t *testing.T) {
	cmd := newFakeCommander()
	cmd.credential = false
	h := newTestServer(t, webhook.ServerConfig{Port: 8080}, cmd)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "device api key not configured")
}

func TestServer_DiscordSignatureRequiredWhenKeyConfigured(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	cmd := newFakeCommander()
	h := newTestServer(t, webhook.ServerConfig{Port: 8080, DiscordPublicKey: pub}, cmd)

	body := `{"type":1}`
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	unsigned := httptest.NewRequest(http.MethodPost, "/interactions/discord", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, unsigned)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	signed := httptest.NewRequest(http.MethodPost, "/interactions/discord", strings.NewReader(body))
	signed.Header.Set("X-Signature-Ed25519", hex.EncodeToString(ed25519.Sign(priv, []byte(ts+body))))
	signed.Header.Set("X-Signature-Timestamp", ts)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, signed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":1}`, rec.Body.String())
}

func TestServer_SlackSignatureRequiredWhenSecretConfigured(t *testing.T) {
	cmd := newFakeCommander()
	h := newTestServer(t, webhook.ServerConfig{Port: 8080, SlackSigningSecret: "s3cret"}, cmd)

	req := httptest.NewRequest(http.MethodPost, "/interactions/slack", strings.NewReader("ssl_check=1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestServer_RateLimit(t *testing.T) {
	cmd := newFakeCommander()
	h := newTestServer(t, webhook.ServerConfig{Port: 8080, RateLimitPerMinute: 1}, cmd)

	first := httptest.NewRecorder()
	h.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	second := httptest.NewRecorder()
	h.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}

func TestServer_InteractionsAreNotRateLimited(t *testing.T) {
	cmd := newFakeCommander()
	h := newTestServer(t, webhook.ServerConfig{Port: 8080, RateLimitPerMinute: 1}, cmd)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/interactions/discord", strings.NewReader(componentPayload))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, "request %d", i)
		assert.Contains(t, rec.Body.String(), `"type":4`)
	}
	assert.Len(t, cmd.calls(), 5)
}
