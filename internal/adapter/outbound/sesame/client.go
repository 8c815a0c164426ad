package sesame

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/jonny/lockwatch/internal/domain/model"
	"github.com/jonny/lockwatch/internal/domain/port/outbound"
	"github.com/jonny/lockwatch/pkg/apierror"
)

const (
	DefaultBaseURL     = "https://app.candyhouse.co/api/sesame2"
	DefaultHistoryNote = "Locked by lockwatch"

	// CmdLock is the vendor command code for locking.
	CmdLock = 82

	apiKeyHeader = "x-api-key"
	maxBodyBytes = 1 << 20
)

// ErrNoCredential is returned by Lock when the client has no API key.
var ErrNoCredential = errors.New("sesame api key not configured")

// ErrMissingStatus is returned by Status when a 200 reply carries no lock state.
var ErrMissingStatus = errors.New("sesame status response has no CHSesame2Status")

// Config holds configuration for the SESAME web API client.
type Config struct {
	BaseURL     string
	APIKey      string
	Timeout     time.Duration
	HistoryNote string
	UserAgent   string
}

// Client implements outbound.LockReader and outbound.LockCommander against
// the SESAME web API.
type Client struct {
	config     Config
	httpClient *http.Client
}

var (
	_ outbound.LockReader    = (*Client)(nil)
	_ outbound.LockCommander = (*Client)(nil)
)

// NewClient creates a Client, filling unset fields with defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.HistoryNote == "" {
		cfg.HistoryNote = DefaultHistoryNote
	}
	return &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// --- SESAME API types ---

type statusResponse struct {
	Status            string  `json:"CHSesame2Status"`
	BatteryPercentage *int    `json:"batteryPercentage"`
	BatteryVoltage    float64 `json:"batteryVoltage"`
	Position          int     `json:"position"`
	Timestamp         int64   `json:"timestamp"`
}

type commandRequest struct {
	Cmd     int    `json:"cmd"`
	History string `json:"history"`
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set(apiKeyHeader, c.config.APIKey)
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
}

// HasCredential reports whether an API key is configured.
func (c *Client) HasCredential() bool {
	return c.config.APIKey != ""
}

// Status fetches the current state of one device. Only a 200 reply with a
// JSON body is a success; everything else is returned as an error.
func (c *Client) Status(ctx context.Context, deviceID string) (model.DeviceStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.deviceURL(deviceID), nil)
	if err != nil {
		return model.DeviceStatus{}, errors.Wrap(err, "creating status request")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.DeviceStatus{}, errors.Wrap(err, "calling sesame status")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return model.DeviceStatus{}, errors.Wrap(err, "reading sesame status response")
	}

	if resp.StatusCode != http.StatusOK {
		return model.DeviceStatus{}, apierror.WithDetail(resp.StatusCode, "sesame status request failed", string(body))
	}

	var sr statusResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return model.DeviceStatus{}, errors.Wrap(err, "decoding sesame status response")
	}
	if sr.Status == "" {
		return model.DeviceStatus{}, errors.Wrapf(ErrMissingStatus, "device %s", deviceID)
	}

	return model.NewDeviceStatus(deviceID, sr.Status, sr.BatteryPercentage), nil
}

// Lock sends the lock command with the configured history note. The reply
// only confirms the command was accepted, not that the device has locked.
func (c *Client) Lock(ctx context.Context, deviceID string) error {
	if !c.HasCredential() {
		return ErrNoCredential
	}

	encoded, err := json.Marshal(commandRequest{
		Cmd:     CmdLock,
		History: base64.StdEncoding.EncodeToString([]byte(c.config.HistoryNote)),
	})
	if err != nil {
		return errors.Wrap(err, "encoding lock command")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.deviceURL(deviceID)+"/cmd", bytes.NewReader(encoded))
	if err != nil {
		return errors.Wrap(err, "creating lock request")
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "calling sesame command")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		return apierror.WithDetail(resp.StatusCode, "sesame lock command failed", string(body))
	}
	return nil
}

func (c *Client) deviceURL(deviceID string) string {
	return c.config.BaseURL + "/" + url.PathEscape(deviceID)
}
