package device

import "errors"

var (
	ErrNotRegistered  = errors.New("device not registered")
	ErrInvalidAPIKey  = errors.New("invalid api key")
	ErrInvalidToken   = errors.New("invalid or expired token")
	ErrEmptyDeviceID  = errors.New("device id must not be empty")
	ErrEmptyDeviceKey = errors.New("api key must not be empty")
)
