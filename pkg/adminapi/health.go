package adminapi

import (
	"encoding/json"
	"net/http"
	"time"

	"duskward/pkg/instance"
)

// healthStatus mirrors the teacher's three-state health vocabulary
// (pkg/server/health.go's HealthStatus).
type healthStatus string

const (
	statusHealthy   healthStatus = "healthy"
	statusDegraded  healthStatus = "degraded"
	statusUnhealthy healthStatus = "unhealthy"
)

// staleTickFactor bounds how many missed ticks an instance may accumulate
// before /healthz calls it unhealthy (SPEC_FULL.md §5 NEW "last-tick
// timestamp freshness"). 5 tick periods gives room for the occasional
// catch-up pass without flapping on every GC pause.
const staleTickFactor = 5

// instanceHealth is one running instance's liveness snapshot.
type instanceHealth struct {
	InstanceID   uint64       `json:"instance_id"`
	MapID        string       `json:"map_id"`
	Status       healthStatus `json:"status"`
	LastTickAt   time.Time    `json:"last_tick_at"`
	SinceLastTick string      `json:"since_last_tick"`
}

// healthResponse is the full /healthz body, following the teacher's
// HealthResponse shape (status/timestamp/checks).
type healthResponse struct {
	Status         healthStatus     `json:"status"`
	Timestamp      time.Time        `json:"timestamp"`
	QueueDepth     int              `json:"coordinator_queue_depth"`
	Instances      []instanceHealth `json:"instances"`
}

// healthHandler reports per-instance worker liveness and coordinator
// queue depth (SPEC_FULL.md §5 NEW), reading every instance's lastTickAt
// through the same Arbitrary closure mechanism used for all other live
// introspection — no instance-internals lock is ever taken.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Timestamp:  time.Now(),
		QueueDepth: s.game.QueueDepth(),
		Status:     statusHealthy,
	}

	for _, id := range s.game.InstanceIDs() {
		ins, ok := s.game.InstanceByID(id)
		if !ok {
			continue
		}

		var mapID string
		var lastTick time.Time
		done := make(chan struct{})
		ins.Commands() <- instance.Arbitrary{Fn: func(i *instance.Instance) {
			mapID = i.MapID()
			lastTick = i.LastTickAt()
		}, Done: done}
		<-done
		tickPeriod := s.tickPeriod

		ih := instanceHealth{InstanceID: uint64(id), MapID: mapID, LastTickAt: lastTick}
		switch {
		case lastTick.IsZero():
			ih.Status = statusDegraded
			ih.SinceLastTick = "no tick observed yet"
		case time.Since(lastTick) > tickPeriod*staleTickFactor:
			ih.Status = statusUnhealthy
			ih.SinceLastTick = time.Since(lastTick).String()
			resp.Status = statusUnhealthy
		default:
			ih.Status = statusHealthy
			ih.SinceLastTick = time.Since(lastTick).String()
		}
		resp.Instances = append(resp.Instances, ih)
	}

	httpStatus := http.StatusOK
	if resp.Status == statusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	_ = json.NewEncoder(w).Encode(resp)
}
