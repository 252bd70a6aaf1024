package auth

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// staleAfter is how old an unconsumed token must be before a sweep removes
// it (SPEC_FULL.md §4.5 NEW).
const staleAfter = 10 * time.Minute

type tokenEntry struct {
	token    string
	issuedAt time.Time
}

// Manager holds the in-flight (character id -> token) map
// (original_source/src/game/authentication.rs's AuthenticationManager).
// Its methods are safe for concurrent use: each one that touches the token
// map holds the mutex, so the sweep goroutine can run alongside the
// coordinator's own calls.
type Manager struct {
	mu          sync.Mutex
	tokens      map[string]tokenEntry
	debugBypass bool
	logger      *logrus.Entry
}

// New returns an empty Manager. debugBypass, when true, makes VerifyToken
// accept any token for any character id without consuming anything — the
// Go analogue of the original's debug build's "accept any token" path.
// Never enable this outside local development.
func New(debugBypass bool) *Manager {
	return &Manager{
		tokens:      make(map[string]tokenEntry),
		debugBypass: debugBypass,
		logger:      logrus.WithField("component", "auth.Manager"),
	}
}

// AddToken inserts or replaces the pending token for characterID.
func (m *Manager) AddToken(characterID, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[characterID] = tokenEntry{token: token, issuedAt: time.Now()}
	m.logger.WithField("character_id", characterID).Trace("token added")
}

// VerifyToken checks token against the pending entry for characterID,
// consuming it on success. On mismatch the entry is retained so the
// coordinator may let the client retry (spec.md §4.5).
func (m *Manager) VerifyToken(characterID, token string) bool {
	if m.debugBypass {
		m.logger.WithField("character_id", characterID).Warn("debug token bypass accepted authentication")
		return true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.tokens[characterID]
	if !ok {
		m.logger.WithField("character_id", characterID).Trace("authentication failed: no pending token")
		return false
	}
	if entry.token != token {
		m.logger.WithField("character_id", characterID).Trace("authentication failed: token mismatch")
		return false
	}
	delete(m.tokens, characterID)
	return true
}

// SweepStale removes every unconsumed token older than staleAfter,
// returning the number removed.
func (m *Manager) SweepStale() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-staleAfter)
	removed := 0
	for id, entry := range m.tokens {
		if entry.issuedAt.Before(cutoff) {
			delete(m.tokens, id)
			removed++
		}
	}
	if removed > 0 {
		m.logger.WithField("removed", removed).Info("swept stale authentication tokens")
	}
	return removed
}

// RunSweeper periodically calls SweepStale every interval until stop is
// closed. Intended to run as its own goroutine
// (SPEC_FULL.md §4.5 NEW "swept by a background goroutine every 5 minutes").
func (m *Manager) RunSweeper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.SweepStale()
		case <-stop:
			return
		}
	}
}
