package coordinator

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"duskward/pkg/actor"
	"duskward/pkg/auth"
	"duskward/pkg/entity"
	"duskward/pkg/instance"
	"duskward/pkg/protocol"
	"duskward/pkg/resource"
)

type fakeClient struct {
	characterID uuid.UUID
	commands    chan protocol.NetworkCommand
	sent        []protocol.NetworkNotification
	closed      bool
}

func newFakeClient(characterID uuid.UUID) *fakeClient {
	return &fakeClient{characterID: characterID, commands: make(chan protocol.NetworkCommand, 8)}
}

func (c *fakeClient) CharacterID() uuid.UUID                    { return c.characterID }
func (c *fakeClient) Commands() <-chan protocol.NetworkCommand { return c.commands }
func (c *fakeClient) Send(n protocol.NetworkNotification) bool {
	c.sent = append(c.sent, n)
	return true
}
func (c *fakeClient) Close() error { c.closed = true; return nil }

func newResourceServer(players map[string]resource.PlayerRecord, maps map[string]resource.Map) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/players/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/players/")
		rec, ok := players[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("/maps/", func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/maps/")
		m, ok := maps[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(m)
	})
	return httptest.NewServer(mux)
}

func samplePlayer(characterID uuid.UUID, homeMapID string) resource.PlayerRecord {
	return resource.PlayerRecord{
		CharacterID: characterID,
		Name:        "Tester",
		HomeMapID:   homeMapID,
		BaseStats:   entity.BaseStats{Level: 1, Strength: 14, Dexterity: 10, Constitution: 12, Intelligence: 10, Presence: 10, Wisdom: 10},
		HP:          20,
	}
}

// syncRead runs fn against g from inside the Game's own goroutine and
// blocks until it completes, giving the test a race-free way to observe
// state the Game loop mutates concurrently.
func syncRead(t *testing.T, g *Game, fn func(*Game)) {
	t.Helper()
	done := make(chan struct{})
	g.requests <- Arbitrary{Fn: fn, Done: done}
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("arbitrary sync timed out")
	}
}

func waitUntil(t *testing.T, g *Game, cond func(*Game) bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		ok := false
		syncRead(t, g, func(g *Game) { ok = cond(g) })
		if ok {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition was not met in time")
}

func TestNewClientSpawnsInstanceAndRoutesPlayer(t *testing.T) {
	characterID := uuid.New()
	srv := newResourceServer(
		map[string]resource.PlayerRecord{characterID.String(): samplePlayer(characterID, "town")},
		map[string]resource.Map{"town": {ID: "town"}},
	)
	defer srv.Close()

	g := New(resource.NewManager(srv.URL, false), auth.New(true), nil, nil, t.TempDir())
	go g.Run()

	client := newFakeClient(characterID)
	g.Requests() <- NewClient{Client: client, CharacterID: characterID}

	waitUntil(t, g, func(g *Game) bool {
		_, ok := g.players[characterID.String()]
		return ok
	})

	syncRead(t, g, func(g *Game) {
		if len(g.instanceByID) != 1 {
			t.Fatalf("instanceByID len = %d, want 1", len(g.instanceByID))
		}
		if len(g.instancesByMap["town"]) != 1 {
			t.Fatalf("instances for map 'town' = %d, want 1", len(g.instancesByMap["town"]))
		}
	})

	foundThisIsYou := false
	for _, n := range client.sent {
		if n.Kind == protocol.NotifyThisIsYou {
			foundThisIsYou = true
		}
	}
	if !foundThisIsYou {
		t.Fatal("client was never sent a ThisIsYou notification")
	}
}

func TestNewClientDualSessionKicksPrevious(t *testing.T) {
	characterID := uuid.New()
	srv := newResourceServer(
		map[string]resource.PlayerRecord{characterID.String(): samplePlayer(characterID, "town")},
		map[string]resource.Map{"town": {ID: "town"}},
	)
	defer srv.Close()

	g := New(resource.NewManager(srv.URL, false), auth.New(true), nil, nil, t.TempDir())
	go g.Run()

	firstClient := newFakeClient(characterID)
	g.Requests() <- NewClient{Client: firstClient, CharacterID: characterID}
	waitUntil(t, g, func(g *Game) bool {
		_, ok := g.players[characterID.String()]
		return ok
	})

	var firstActorID actor.ID
	syncRead(t, g, func(g *Game) { firstActorID = g.players[characterID.String()].ActorID })

	secondClient := newFakeClient(characterID)
	g.Requests() <- NewClient{Client: secondClient, CharacterID: characterID}

	waitUntil(t, g, func(g *Game) bool {
		session, ok := g.players[characterID.String()]
		return ok && session.ActorID != firstActorID
	})

	syncRead(t, g, func(g *Game) {
		if len(g.instanceByID) != 1 {
			t.Fatalf("dual session for the same map should reuse the spawned instance, got %d instances", len(g.instanceByID))
		}
	})
}

func TestMapFetchFailureDropsActorWithoutFallback(t *testing.T) {
	characterID := uuid.New()
	srv := newResourceServer(
		map[string]resource.PlayerRecord{characterID.String(): samplePlayer(characterID, "missing-map")},
		map[string]resource.Map{},
	)
	defer srv.Close()

	g := New(resource.NewManager(srv.URL, false), auth.New(true), nil, nil, t.TempDir())
	go g.Run()

	client := newFakeClient(characterID)
	g.Requests() <- NewClient{Client: client, CharacterID: characterID}

	// Give the async player+map fetch pipeline time to run and fail; there
	// is no success condition to poll for here; assert the rejected state
	// holds for a sustained check.
	time.Sleep(150 * time.Millisecond)

	syncRead(t, g, func(g *Game) {
		if len(g.players) != 0 {
			t.Fatalf("players = %d, want 0 after a failed map fetch", len(g.players))
		}
		if len(g.instanceByID) != 0 {
			t.Fatalf("instanceByID = %d, want 0 after a failed map fetch", len(g.instanceByID))
		}
	})
}

func TestUnregisterPersistsPlayerRecordAsJSON(t *testing.T) {
	characterID := uuid.New()
	srv := newResourceServer(
		map[string]resource.PlayerRecord{characterID.String(): samplePlayer(characterID, "town")},
		map[string]resource.Map{"town": {ID: "town"}},
	)
	defer srv.Close()

	dataDir := t.TempDir()
	g := New(resource.NewManager(srv.URL, false), auth.New(true), nil, nil, dataDir)
	go g.Run()

	client := newFakeClient(characterID)
	g.Requests() <- NewClient{Client: client, CharacterID: characterID}
	waitUntil(t, g, func(g *Game) bool {
		_, ok := g.players[characterID.String()]
		return ok
	})

	var targetInstance *instance.Instance
	var targetActorID actor.ID
	syncRead(t, g, func(g *Game) {
		session := g.players[characterID.String()]
		targetActorID = session.ActorID
		targetInstance = g.instanceByID[session.InstanceID].ins
	})

	targetInstance.Commands() <- instance.UnregisterActor{ActorID: targetActorID}

	path := filepath.Join(dataDir, entityPersistSubdir, characterID.String()+".json")
	deadline := time.Now().Add(2 * time.Second)
	var data []byte
	var err error
	for time.Now().Before(deadline) {
		data, err = os.ReadFile(path)
		if err == nil {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("expected persisted player record at %s: %v", path, err)
	}

	var rec resource.PlayerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		t.Fatalf("unmarshal persisted record: %v", err)
	}
	if rec.CharacterID != characterID {
		t.Fatalf("persisted character id = %v, want %v", rec.CharacterID, characterID)
	}

	waitUntil(t, g, func(g *Game) bool {
		_, ok := g.players[characterID.String()]
		return !ok
	})
}

func TestShutdownBroadcastsToEveryInstanceAndExits(t *testing.T) {
	characterID := uuid.New()
	srv := newResourceServer(
		map[string]resource.PlayerRecord{characterID.String(): samplePlayer(characterID, "town")},
		map[string]resource.Map{"town": {ID: "town"}},
	)
	defer srv.Close()

	g := New(resource.NewManager(srv.URL, false), auth.New(true), nil, nil, t.TempDir())
	gameDone := make(chan struct{})
	go func() {
		g.Run()
		close(gameDone)
	}()

	client := newFakeClient(characterID)
	g.Requests() <- NewClient{Client: client, CharacterID: characterID}
	waitUntil(t, g, func(g *Game) bool {
		_, ok := g.players[characterID.String()]
		return ok
	})

	g.Requests() <- Shutdown{}

	select {
	case <-gameDone:
	case <-time.After(2 * time.Second):
		t.Fatal("game did not exit after shutdown acknowledged by its only instance")
	}
}
