package token

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/merchlab/ordersync/internal/clock"
	"github.com/merchlab/ordersync/internal/config"
	"github.com/merchlab/ordersync/internal/erp/domain"
	"github.com/merchlab/ordersync/internal/lock"
	"github.com/merchlab/ordersync/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// Tokens are treated as expired this long before their reported
	// lifetime ends, so an in-flight request never carries a token that
	// lapses mid-call.
	expirySafetyMargin = 300 * time.Second

	defaultTokenLifetime = time.Hour

	refreshLockKey = "ordersync:token_refresh"
	refreshLockTTL = 30 * time.Second
)

type tokenResponse struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	ExpiresIn             int64  `json:"expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// Manager acquires and caches the upstream bearer token. The refresh token
// rotates on use: the durable row is the source of truth, the in-memory
// copy only a fallback.
type Manager struct {
	db         *gorm.DB
	log        *zap.Logger
	cfg        config.UpstreamConfig
	store      Store
	clock      clock.Clock
	locker     *lock.Locker
	httpClient *http.Client

	mu          sync.Mutex
	accessToken string
	expiresAt   time.Time
	memRefresh  string
}

func NewManager(db *gorm.DB, log *zap.Logger, cfg config.Config, store Store, clk clock.Clock, locker *lock.Locker) *Manager {
	return &Manager{
		db:         db,
		log:        log.Named("token.manager"),
		cfg:        cfg.Upstream,
		store:      store,
		clock:      clk,
		locker:     locker,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// AccessToken returns a bearer token valid for at least the safety margin.
// A cache hit performs no I/O.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.accessToken != "" && m.clock.Now().Before(m.expiresAt) {
		return m.accessToken, nil
	}

	if m.cfg.ClientID == "" || m.cfg.ClientSecret == "" {
		return "", domain.ErrMissingCredentials
	}

	lockToken, err := m.acquireRefreshLock(ctx)
	if err != nil {
		return "", err
	}
	defer func() {
		if releaseErr := m.locker.Release(ctx, refreshLockKey, lockToken); releaseErr != nil {
			m.log.Warn("failed to release refresh lock", zap.Error(releaseErr))
		}
	}()

	refresh, err := m.resolveRefreshToken(ctx)
	if err != nil {
		return "", err
	}

	resp, err := m.exchange(ctx, refresh)
	if err != nil {
		return "", err
	}

	// Upstream invalidates the old refresh token the instant it issues a
	// new one. The rotated value must hit durable storage before any
	// caller sees the access token, or a crash here strands the system
	// with no valid credential.
	if resp.RefreshToken != "" && resp.RefreshToken != refresh {
		var expiresAt *time.Time
		if resp.RefreshTokenExpiresIn > 0 {
			t := m.clock.Now().Add(time.Duration(resp.RefreshTokenExpiresIn) * time.Second)
			expiresAt = &t
		}
		if err := m.store.Save(ctx, m.db, resp.RefreshToken, expiresAt, m.clock.Now()); err != nil {
			m.memRefresh = resp.RefreshToken
			return "", fmt.Errorf("persist rotated refresh token: %w", err)
		}
		m.memRefresh = resp.RefreshToken
		m.log.Info("refresh token rotated")
	} else {
		m.memRefresh = refresh
	}

	lifetime := defaultTokenLifetime
	if resp.ExpiresIn > 0 {
		lifetime = time.Duration(resp.ExpiresIn) * time.Second
	}
	m.accessToken = resp.AccessToken
	m.expiresAt = m.clock.Now().Add(lifetime - expirySafetyMargin)

	return m.accessToken, nil
}

func (m *Manager) acquireRefreshLock(ctx context.Context) (string, error) {
	for {
		token, ok, err := m.locker.TryLock(ctx, refreshLockKey, refreshLockTTL)
		if err != nil {
			return "", fmt.Errorf("acquire refresh lock: %w", err)
		}
		if ok {
			return token, nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(250 * time.Millisecond):
		}
	}
}

// resolveRefreshToken prefers the durable row over the in-memory copy over
// the environment bootstrap value, in that order.
func (m *Manager) resolveRefreshToken(ctx context.Context) (string, error) {
	row, err := m.store.Load(ctx, m.db)
	if err != nil {
		m.log.Warn("failed to load refresh token from store", zap.Error(err))
	}
	if row != nil && row.Token != "" {
		return row.Token, nil
	}
	if m.memRefresh != "" {
		return m.memRefresh, nil
	}
	if m.cfg.RefreshToken != "" {
		return m.cfg.RefreshToken, nil
	}
	return "", domain.ErrMissingRefreshToken
}

func (m *Manager) exchange(ctx context.Context, refresh string) (*tokenResponse, error) {
	values := url.Values{}
	values.Set("grant_type", "refresh_token")
	values.Set("client_id", m.cfg.ClientID)
	values.Set("client_secret", m.cfg.ClientSecret)
	values.Set("refresh_token", refresh)
	values.Set("scope", m.cfg.Scope)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.TokenURL, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		// An expired or revoked grant cannot succeed on retry; clear the
		// cache and tell the operator to rotate the credential.
		m.accessToken = ""
		m.memRefresh = ""
		metrics.TokenRefreshesTotal.WithLabelValues("rejected").Inc()
		body, _ := io.ReadAll(resp.Body)
		m.log.Error("refresh token rejected by upstream",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return nil, fmt.Errorf("upstream rejected the refresh token, rotate UPSTREAM_REFRESH_TOKEN and restart: %w", domain.ErrRefreshRejected)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TokenRefreshesTotal.WithLabelValues("error").Inc()
		body, _ := io.ReadAll(resp.Body)
		return nil, &domain.UpstreamError{Status: resp.StatusCode, Body: string(body)}
	}

	var out tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode token response: %w", err)
	}
	if out.AccessToken == "" {
		return nil, fmt.Errorf("token response missing access_token: %w", domain.ErrRefreshRejected)
	}
	metrics.TokenRefreshesTotal.WithLabelValues("success").Inc()
	return &out, nil
}
