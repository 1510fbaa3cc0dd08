package delhivery

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// TokenStore persists the Delhivery token across restarts. Implementations
// must tolerate a missing token by returning an empty string.
type TokenStore interface {
	LoadToken(ctx context.Context, carrierName string) (string, error)
	SaveToken(ctx context.Context, carrierName string, token string) error
}

// memoryTokenStore is the fallback store when no persistence is wired.
type memoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *memoryTokenStore) LoadToken(ctx context.Context, carrierName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *memoryTokenStore) SaveToken(ctx context.Context, carrierName string, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

// TokenManager holds the current Delhivery JWT behind a mutex. Current
// returns the cached token, loading the persisted one on first use;
// Refresh exchanges credentials for a fresh token and persists it.
type TokenManager struct {
	mu        sync.Mutex
	token     string
	loaded    bool
	apiClient APIClient
	store     TokenStore
	logger    *otelzap.Logger
	onRefresh func(outcome string)
}

// NewTokenManager creates a token manager. A nil store falls back to an
// in-memory store.
func NewTokenManager(apiClient APIClient, store TokenStore, logger *otelzap.Logger) *TokenManager {
	if store == nil {
		store = &memoryTokenStore{}
	}
	return &TokenManager{
		apiClient: apiClient,
		store:     store,
		logger:    logger,
	}
}

// Current returns the cached token, loading the persisted token on first
// use and refreshing when none exists yet.
func (m *TokenManager) Current(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		token, err := m.store.LoadToken(ctx, carrierName)
		if err != nil {
			return "", fmt.Errorf("failed to load token: %w", err)
		}
		m.token = token
		m.loaded = true
	}

	if m.token == "" {
		return m.refreshLocked(ctx)
	}
	return m.token, nil
}

// OnRefresh registers a hook invoked after every refresh attempt with the
// outcome "success" or "failure". Used to feed the token refresh metric.
func (m *TokenManager) OnRefresh(fn func(outcome string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRefresh = fn
}

// Refresh exchanges credentials for a fresh token, caches and persists it.
func (m *TokenManager) Refresh(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.refreshLocked(ctx)
}

func (m *TokenManager) refreshLocked(ctx context.Context) (string, error) {
	m.logger.Info("Refreshing Delhivery token")

	resp, err := m.apiClient.GenerateToken(ctx)
	if err != nil {
		m.logger.Error("Delhivery token refresh failed", zap.Error(err))
		m.observe("failure")
		return "", err
	}
	m.observe("success")

	m.token = resp.JWT
	m.loaded = true
	if err := m.store.SaveToken(ctx, carrierName, resp.JWT); err != nil {
		// The fresh token still works for this process; persistence catches
		// up on the next refresh.
		m.logger.Warn("Failed to persist Delhivery token", zap.Error(err))
	}
	return m.token, nil
}

func (m *TokenManager) observe(outcome string) {
	if m.onRefresh != nil {
		m.onRefresh(outcome)
	}
}
