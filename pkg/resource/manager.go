package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"duskward/pkg/resilience"
	"duskward/pkg/retry"
)

// ErrNotFound is returned when the backend responds 404 and no fallback is
// configured.
var ErrNotFound = errors.New("resource: not found")

// poolSize bounds the number of concurrent HTTP fetches in flight,
// mirroring original_source's RESOURCE_MANAGER_THREADS ThreadPool.
const poolSize = 4

// Manager fetches Map and Player resources by id from a base URL
// (spec.md §4.4). Every fetch is wrapped by a retrier and gated by a
// per-resource-kind circuit breaker (SPEC_FULL.md §4.4 NEW); callers never
// block the coordinator's own goroutine — fetches run on a bounded
// worker pool and report back through a caller-supplied callback.
type Manager struct {
	baseURL         string
	client          *http.Client
	defaultFallback bool

	sem chan struct{}

	mapBreaker    *resilience.CircuitBreaker
	playerBreaker *resilience.CircuitBreaker
	retrier       *retry.Retrier

	logger *logrus.Entry
}

// NewManager builds a Manager fetching resources rooted at baseURL.
// defaultFallback, when true, causes a failed fetch to resolve to a
// synthesized default rather than propagating the error.
func NewManager(baseURL string, defaultFallback bool) *Manager {
	return &Manager{
		baseURL:         baseURL,
		client:          &http.Client{Timeout: 5 * time.Second},
		defaultFallback: defaultFallback,
		sem:             make(chan struct{}, poolSize),
		mapBreaker:      resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("resource.map")),
		playerBreaker:   resilience.NewCircuitBreaker(resilience.DefaultCircuitBreakerConfig("resource.player")),
		retrier:         retry.NewRetrier(retry.RetryConfig{MaxAttempts: 3, InitialDelay: 25 * time.Millisecond, MaxDelay: 200 * time.Millisecond, BackoffMultiplier: 2, JitterMaxPercent: 10}),
		logger:          logrus.WithField("component", "resource.Manager"),
	}
}

func (m *Manager) acquire() { m.sem <- struct{}{} }
func (m *Manager) release() { <-m.sem }

// FetchMapAsync fetches map mapID on the bounded worker pool and invokes cb
// with the result once it is available. cb is always called exactly once,
// from a pool goroutine — callers that mutate shared state from cb must
// themselves hand the result back onto their own serial queue (as
// pkg/coordinator does).
func (m *Manager) FetchMapAsync(mapID string, cb func(*Map, error)) {
	go func() {
		m.acquire()
		defer m.release()
		cb(m.fetchMap(mapID))
	}()
}

// FetchPlayerAsync is FetchMapAsync's player-record counterpart.
func (m *Manager) FetchPlayerAsync(characterID uuid.UUID, cb func(*PlayerRecord, error)) {
	go func() {
		m.acquire()
		defer m.release()
		cb(m.fetchPlayer(characterID))
	}()
}

func (m *Manager) fetchMap(mapID string) (*Map, error) {
	var result Map
	err := m.mapBreaker.Execute(context.Background(), func(ctx context.Context) error {
		return m.retrier.Execute(ctx, func(ctx context.Context) error {
			return m.getJSON(ctx, fmt.Sprintf("%s/maps/%s", m.baseURL, mapID), &result)
		})
	})
	if err != nil {
		if m.defaultFallback {
			m.logger.WithError(err).WithField("map_id", mapID).Warn("map fetch failed, using default fallback")
			return defaultMap(mapID), nil
		}
		return nil, fmt.Errorf("resource: fetch map %s: %w", mapID, err)
	}
	return &result, nil
}

func (m *Manager) fetchPlayer(characterID uuid.UUID) (*PlayerRecord, error) {
	var result PlayerRecord
	err := m.playerBreaker.Execute(context.Background(), func(ctx context.Context) error {
		return m.retrier.Execute(ctx, func(ctx context.Context) error {
			return m.getJSON(ctx, fmt.Sprintf("%s/players/%s", m.baseURL, characterID), &result)
		})
	})
	if err != nil {
		if m.defaultFallback {
			m.logger.WithError(err).WithField("character_id", characterID).Warn("player fetch failed, using default fallback")
			return defaultPlayer(characterID), nil
		}
		return nil, fmt.Errorf("resource: fetch player %s: %w", characterID, err)
	}
	return &result, nil
}

func (m *Manager) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("resource: unexpected status %d from %s", resp.StatusCode, url)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
