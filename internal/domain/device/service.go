package device

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/exp/slog"
)

const tokenTTL = 24 * time.Hour

// Servicer is the device authentication surface consumed by the HTTP layer.
type Servicer interface {
	Register(ctx context.Context, deviceID, name string) (*Device, error)
	Authenticate(ctx context.Context, deviceID, apiKey string) (*Credential, error)
	Validate(ctx context.Context, token string) (string, error)
}

type Service struct {
	repo       Repository
	log        *slog.Logger
	apiKeyHash []byte
}

// NewService builds the device service. apiKey is the fleet provisioning key
// every till presents on authenticate; only its bcrypt hash is kept in memory.
func NewService(repo Repository, log *slog.Logger, apiKey string) (*Service, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash api key: %w", err)
	}

	return &Service{
		repo:       repo,
		log:        log,
		apiKeyHash: hash,
	}, nil
}

// Register creates or refreshes a device identity. Always public and
// idempotent: re-registering updates the name and last-seen time only.
func (s *Service) Register(ctx context.Context, deviceID, name string) (*Device, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}

	now := time.Now().UTC()
	dev := &Device{
		ID:           deviceID,
		Name:         name,
		RegisteredAt: now,
		LastSeenAt:   now,
	}

	if existing, err := s.repo.Find(ctx, deviceID); err == nil {
		dev.RegisteredAt = existing.RegisteredAt
		dev.LastSyncAt = existing.LastSyncAt
	} else if !errors.Is(err, ErrNotRegistered) {
		return nil, fmt.Errorf("find device: %w", err)
	}

	if err := s.repo.Upsert(ctx, dev); err != nil {
		return nil, fmt.Errorf("register device: %w", err)
	}

	s.log.Info("device registered", "device_id", deviceID, "name", name)
	return dev, nil
}

// Authenticate checks the API key for a registered device and issues a
// time-limited access credential.
func (s *Service) Authenticate(ctx context.Context, deviceID, apiKey string) (*Credential, error) {
	if deviceID == "" {
		return nil, ErrEmptyDeviceID
	}
	if apiKey == "" {
		return nil, ErrEmptyDeviceKey
	}

	if _, err := s.repo.Find(ctx, deviceID); err != nil {
		if errors.Is(err, ErrNotRegistered) {
			return nil, ErrNotRegistered
		}
		return nil, fmt.Errorf("find device: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(s.apiKeyHash, []byte(apiKey)); err != nil {
		s.log.Warn("authentication rejected", "device_id", deviceID)
		return nil, ErrInvalidAPIKey
	}

	access, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	refresh, err := newToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	expiresAt := time.Now().UTC().Add(tokenTTL)
	if err := s.repo.SaveSession(ctx, deviceID, hashToken(access), expiresAt); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	return &Credential{
		DeviceID:     deviceID,
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    expiresAt,
	}, nil
}

// Validate resolves a bearer token to a device ID.
func (s *Service) Validate(ctx context.Context, token string) (string, error) {
	deviceID, err := s.repo.LookupSession(ctx, hashToken(token))
	if err != nil {
		return "", err
	}
	return deviceID, nil
}

func newToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(raw), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
