package device

import "time"

type registerInput struct {
	Body RegisterRequest
}

type registerOutput struct {
	Body RegisterResponse
}

type RegisterRequest struct {
	DeviceID   string `json:"device_id" example:"till-042" doc:"Stable device identifier"`
	DeviceName string `json:"device_name,omitempty" example:"Front till"`
}

type RegisterResponse struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message,omitempty"`
	DeviceID   string `json:"device_id"`
}

type authenticateInput struct {
	Body AuthenticateRequest
}

type authenticateOutput struct {
	Body AuthenticateResponse
}

type AuthenticateRequest struct {
	DeviceID string `json:"device_id"`
	APIKey   string `json:"api_key"`
}

type AuthenticateResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	DeviceID     string    `json:"device_id"`
}
