package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kraterm/internal/creds"
	"kraterm/internal/errs"
	"kraterm/internal/metrics"
	"kraterm/logger"
)

const tokenPath = "/0/private/GetWebSocketsToken"

// State names a point in the token lifecycle.
type State string

const (
	StateUnavailable  State = "unavailable"
	StateValid        State = "valid"
	StateExpiringSoon State = "expiring_soon"
	StateRefreshing   State = "refreshing"
)

// Snapshot is an immutable view of the token lifecycle at a point in
// time, published to the bus whenever the state changes.
type Snapshot struct {
	State     State
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager owns the current auth token and drives its lifecycle:
// Unavailable -> Valid -> ExpiringSoon -> Refreshing -> Valid, with hard
// expiry forcing a return to Unavailable if a refresh never lands.
type Manager struct {
	restBaseURL string
	creds       *creds.Handle
	nonces      *NonceSource
	client      *http.Client
	limiter     *rate.Limiter

	warningAfter time.Duration
	refreshAfter time.Duration
	hardExpiry   time.Duration

	log *logger.Entry

	mu       sync.RWMutex
	snapshot Snapshot

	onChange      func(Snapshot)
	notifyExpired func()
}

// NewManager builds a token Manager. onChange, if non-nil, is invoked
// (from whichever goroutine drives the lifecycle) every time the
// snapshot changes, so the caller can publish it onto the event bus.
// notifyExpired, if non-nil, is invoked right before Run refreshes the
// token at the refresh boundary, so the caller can force the private
// session closed with cause TokenExpired instead of leaving it running
// against a token about to go stale.
func NewManager(restBaseURL string, credHandle *creds.Handle, warningAfter, refreshAfter, hardExpiry time.Duration, onChange func(Snapshot), notifyExpired func()) *Manager {
	return &Manager{
		restBaseURL:   strings.TrimRight(restBaseURL, "/"),
		creds:         credHandle,
		nonces:        NewNonceSource(time.Now().UnixMilli()),
		client:        &http.Client{Timeout: 10 * time.Second},
		limiter:       rate.NewLimiter(rate.Every(time.Second), 1),
		warningAfter:  warningAfter,
		refreshAfter:  refreshAfter,
		hardExpiry:    hardExpiry,
		log:           logger.GetLogger().WithComponent("auth"),
		snapshot:      Snapshot{State: StateUnavailable},
		onChange:      onChange,
		notifyExpired: notifyExpired,
	}
}

// Snapshot returns the current lifecycle snapshot.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Run drives the lifecycle until ctx is cancelled: it fetches an initial
// token, then wakes on the warning/refresh/hard-expiry boundaries to
// transition state and refresh proactively.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.refresh(ctx); err != nil {
		m.log.WithError(err).Error("initial token fetch failed")
	}

	for {
		snap := m.Snapshot()
		if snap.State == StateUnavailable {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
			}
			if err := m.refresh(ctx); err != nil {
				m.log.WithError(err).Error("token retry failed")
			}
			continue
		}

		warnAt := snap.IssuedAt.Add(m.warningAfter)
		refreshAt := snap.IssuedAt.Add(m.refreshAfter)
		hardAt := snap.IssuedAt.Add(m.hardExpiry)

		var next time.Time
		switch {
		case time.Now().Before(warnAt):
			next = warnAt
		case time.Now().Before(refreshAt):
			next = refreshAt
		default:
			next = hardAt
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(next)):
		}

		now := time.Now()
		switch {
		case !now.Before(hardAt):
			m.transition(State(StateUnavailable), "")
		case !now.Before(refreshAt):
			m.transition(StateRefreshing, snap.Token)
			if m.notifyExpired != nil {
				m.notifyExpired()
			}
			if err := m.refresh(ctx); err != nil {
				logger.IncrementTokenFailure()
				metrics.IncrementTokenFailure()
				m.log.WithError(err).Warn("token refresh failed, will retry at next tick")
			}
		case !now.Before(warnAt):
			m.transition(StateExpiringSoon, snap.Token)
		}
	}
}

func (m *Manager) transition(state State, token string) {
	m.mu.Lock()
	snap := m.snapshot
	snap.State = state
	if token != "" {
		snap.Token = token
	}
	m.snapshot = snap
	m.mu.Unlock()

	if m.onChange != nil {
		m.onChange(snap)
	}
}

// refresh fetches a fresh token and moves the lifecycle to Valid.
func (m *Manager) refresh(ctx context.Context) error {
	token, err := m.fetchToken(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	snap := Snapshot{
		State:     StateValid,
		Token:     token,
		IssuedAt:  now,
		ExpiresAt: now.Add(m.hardExpiry),
	}

	m.mu.Lock()
	m.snapshot = snap
	m.mu.Unlock()

	logger.IncrementTokenRefresh()
	metrics.IncrementTokenRefresh()
	m.log.Info("obtained websocket authentication token")

	if m.onChange != nil {
		m.onChange(snap)
	}
	return nil
}

type tokenResponse struct {
	Error  []string `json:"error"`
	Result struct {
		Token string `json:"token"`
	} `json:"result"`
}

func (m *Manager) fetchToken(ctx context.Context) (string, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return "", errs.New(errs.Transient, "auth.fetchToken", err)
	}

	c := m.creds.Get()
	if c.APIKey == "" || c.APISecret == "" {
		return "", errs.New(errs.Config, "auth.fetchToken", fmt.Errorf("no API credentials configured"))
	}

	nonce := m.nonces.Next(time.Now().UnixMilli())
	postData := fmt.Sprintf("nonce=%d", nonce)

	signature, err := sign(c.APISecret, tokenPath, fmt.Sprintf("%d%s", nonce, postData))
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.restBaseURL+tokenPath, strings.NewReader(postData))
	if err != nil {
		return "", errs.New(errs.Transient, "auth.fetchToken", err)
	}
	req.Header.Set("API-Key", c.APIKey)
	req.Header.Set("API-Sign", signature)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.client.Do(req)
	if err != nil {
		return "", errs.New(errs.Transient, "auth.fetchToken", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errs.New(errs.Transient, "auth.fetchToken", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errs.New(errs.Transient, "auth.fetchToken", fmt.Errorf("auth request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))))
	}

	var parsed tokenResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errs.New(errs.ProtocolParse, "auth.fetchToken", fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Error) > 0 {
		return "", errs.New(errs.Transient, "auth.fetchToken", fmt.Errorf("kraken API error: %s", strings.Join(parsed.Error, ", ")))
	}
	if parsed.Result.Token == "" {
		return "", errs.New(errs.ProtocolParse, "auth.fetchToken", fmt.Errorf("missing token in response"))
	}
	return parsed.Result.Token, nil
}
