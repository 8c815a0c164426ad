package sesame

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/pkg/apierror"
)

func newTestClient(t *testing.T, baseURL, apiKey string) *Client {
	t.Helper()
	return NewClient(Config{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 5 * time.Second,
	})
}

func TestStatus_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/dev-1" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("x-api-key") != "key-123" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"batteryPercentage":94,"batteryVoltage":5.87,"position":11,"CHSesame2Status":"unlocked","timestamp":1598523693}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, "key-123")
	status, err := client.Status(context.Background(), "dev-1")
	require.NoError(t, err)

	assert.Equal(t, "dev-1", status.DeviceID)
	assert.Equal(t, model.LockStateUnlocked, status.State)
	require.NotNil(t, status.BatteryPercent)
	assert.Equal(t, 94, *status.BatteryPercent)
	assert.True(t, status.NeedsNotification())
}

func TestStatus_MissingBattery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"CHSesame2Status":"locked"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(t, srv.URL, "k").Status(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Nil(t, status.BatteryPercent)
	assert.True(t, status.Locked())
}

func TestStatus_UnknownValueKeepsRaw(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"CHSesame2Status":"calibrating"}`))
	}))
	defer srv.Close()

	status, err := newTestClient(t, srv.URL, "k").Status(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, model.LockStateUnknown, status.State)
	assert.Equal(t, "calibrating", status.Raw)
}

func TestStatus_Failures(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		wantCode int
	}{
		{"not found", http.StatusNotFound, `{"message":"no such device"}`, http.StatusNotFound},
		{"server error", http.StatusInternalServerError, `oops`, http.StatusInternalServerError},
		{"rate limited", http.StatusTooManyRequests, ``, http.StatusTooManyRequests},
		{"invalid json", http.StatusOK, `{not json`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, "k").Status(context.Background(), "dev-1")
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apierror.StatusCode(err))
		})
	}
}

func TestStatus_MissingStateIsAnError(t *testing.T) {
	for _, body := range []string{`null`, `{}`, `{"batteryPercentage":50}`} {
		t.Run(body, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := newTestClient(t, srv.URL, "k").Status(context.Background(), "dev-1")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMissingStatus)
		})
	}
}

func TestStatus_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestClient(t, url, "k").Status(context.Background(), "dev-1")
	assert.Error(t, err)
}

func TestLock_SendsCommand(t *testing.T) {
	var got commandRequest
	var gotKey, gotPath, gotContentType string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-api-key")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "key-123", HistoryNote: "Locked from chat"})
	require.NoError(t, client.Lock(context.Background(), "device-7"))

	assert.Equal(t, "/device-7/cmd", gotPath)
	assert.Equal(t, "key-123", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, CmdLock, got.Cmd)

	note, err := base64.StdEncoding.DecodeString(got.History)
	require.NoError(t, err)
	assert.Equal(t, "Locked from chat", string(note))
}

func TestLock_DefaultHistoryNote(t *testing.T) {
	var got commandRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv.URL, "k").Lock(context.Background(), "d"))
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte(DefaultHistoryNote)), got.History)
}

func TestLock_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	err := newTestClient(t, srv.URL, "k").Lock(context.Background(), "d")
	require.Error(t, err)
	assert.Equal(t, http.StatusBadGateway, apierror.StatusCode(err))
	assert.Contains(t, err.Error(), "upstream down")
}

func TestLock_NoCredential(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, "")
	assert.False(t, client.HasCredential())
	assert.ErrorIs(t, client.Lock(context.Background(), "d"), ErrNoCredential)
	assert.Zero(t, calls.Load())
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(Config{APIKey: "k"})
	assert.Equal(t, DefaultBaseURL, c.config.BaseURL)
	assert.Equal(t, DefaultHistoryNote, c.config.HistoryNote)
	assert.Equal(t, DefaultBaseURL+"/abc", c.deviceURL("abc"))
}

func TestClient_SendsUserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(`{"CHSesame2Status":"locked"}`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL, APIKey: "k", UserAgent: "lockwatch/test"})
	_, err := client.Status(context.Background(), "dev-1")
	require.NoError(t, err)
	assert.Equal(t, "lockwatch/test", got)
}
