package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/exp/slog"

	"possync/internal/app/client/config"
	"possync/internal/domain/sync"
)

type apiClient struct {
	client    *http.Client
	log       *slog.Logger
	baseURL   string
	token     string
	userAgent string
}

func NewAPIClient(cfg *config.Config, log *slog.Logger) *apiClient {
	client := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
			MaxIdleConnsPerHost: 10,
		},
	}

	scheme := "http://"
	if cfg.EnableTLS {
		scheme = "https://"
	}

	return &apiClient{
		client:    client,
		log:       log,
		baseURL:   scheme + cfg.ServerAddress,
		userAgent: "possync-agent/1.0",
	}
}

// SetToken installs the bearer token attached to protected calls.
func (c *apiClient) SetToken(token string) {
	c.token = token
}

// HealthCheck probes server reachability. Doubles as the connectivity probe.
func (c *apiClient) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return &sync.NetworkError{Op: "health", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &sync.NetworkError{Op: "health", Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return nil
}

// RegisterDevice announces a device identity. Public, no credential needed.
func (c *apiClient) RegisterDevice(ctx context.Context, deviceID, deviceName string) (*sync.APIResult, error) {
	body := struct {
		DeviceID   string `json:"device_id"`
		DeviceName string `json:"device_name"`
	}{deviceID, deviceName}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/devices/register", body, false)
	if err != nil {
		return nil, err
	}

	var result sync.APIResult
	if err := c.parseResponse(resp, "register", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Authenticate exchanges the API key for a time-limited access credential.
func (c *apiClient) Authenticate(ctx context.Context, deviceID, apiKey string) (*sync.AuthenticationResponse, error) {
	body := struct {
		DeviceID string `json:"device_id"`
		APIKey   string `json:"api_key"`
	}{deviceID, apiKey}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/devices/authenticate", body, false)
	if err != nil {
		return nil, err
	}

	var result sync.AuthenticationResponse
	if err := c.parseResponse(resp, "authenticate", &result); err != nil {
		return nil, err
	}

	c.SetToken(result.AccessToken)
	return &result, nil
}

// UploadChanges ships the local batch. Protected call.
func (c *apiClient) UploadChanges(ctx context.Context, req sync.UploadRequest) (*sync.APIResult, error) {
	if c.token == "" {
		return nil, &sync.AuthError{StatusCode: http.StatusUnauthorized, Message: "no credential"}
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/api/v1/sync/upload", req, true)
	if err != nil {
		return nil, err
	}

	var result sync.APIResult
	if err := c.parseResponse(resp, "upload", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DownloadChanges fetches remote changes since the cursor. Protected call.
func (c *apiClient) DownloadChanges(ctx context.Context, deviceID string, since time.Time) (*sync.DownloadResponse, error) {
	if c.token == "" {
		return nil, &sync.AuthError{StatusCode: http.StatusUnauthorized, Message: "no credential"}
	}

	path := fmt.Sprintf("/api/v1/sync/download?device_id=%s&since=%s",
		deviceID, since.UTC().Format(time.RFC3339Nano))

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil, true)
	if err != nil {
		return nil, err
	}

	var result sync.DownloadResponse
	if err := c.parseResponse(resp, "download", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *apiClient) doRequest(ctx context.Context, method, path string, body interface{}, authed bool) (*http.Response, error) {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, &sync.ValidationError{Op: "marshal request", Err: err}
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if authed && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.log.Debug("sending request", "method", method, "url", req.URL.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &sync.NetworkError{Op: method + " " + path, Err: err}
	}
	return resp, nil
}

// parseResponse maps the status convention onto the error taxonomy: 2xx is
// success, 401-class is AuthError, other 4xx is ValidationError, everything
// else is a retryable NetworkError.
func (c *apiClient) parseResponse(resp *http.Response, op string, result interface{}) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &sync.NetworkError{Op: op, Err: err}
	}

	c.log.Debug("received response", "op", op, "status", resp.StatusCode)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &sync.AuthError{StatusCode: resp.StatusCode, Message: serverMessage(body)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &sync.ValidationError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, serverMessage(body))}
	default:
		return &sync.NetworkError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return &sync.ValidationError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
		}
	}
	return nil
}

func serverMessage(body []byte) string {
	var errResp struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil {
		if errResp.Message != "" {
			return errResp.Message
		}
		return errResp.Error
	}
	return ""
}
