package adminapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"duskward/pkg/actor"
	"duskward/pkg/instance"
	"duskward/pkg/protocol"
)

// streamSendBuffer bounds how many pending notifications a dashboard
// connection may lag by before frames are dropped, matching NetworkActor's
// own "non-blocking, bounded-drop" send policy (spec.md §5).
const streamSendBuffer = 64

var upgrader = websocket.Upgrader{
	// The admin listener is bound to 127.0.0.1 only (spec.md §6); any
	// origin reaching it is already local.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// streamClient adapts a websocket connection to protocol.Client so the
// dashboard stream can register into an instance through the same
// NewClient command path every player connection uses — it never sends
// inbound commands, only observes outbound notifications
// (SPEC_FULL.md §6 NEW "GameUpdate-shaped frame per tick").
type streamClient struct {
	characterID uuid.UUID
	conn        *websocket.Conn
	out         chan protocol.NetworkNotification
	commands    chan protocol.NetworkCommand // never written to; closed on Close
}

func newStreamClient(conn *websocket.Conn) *streamClient {
	return &streamClient{
		characterID: uuid.New(),
		conn:        conn,
		out:         make(chan protocol.NetworkNotification, streamSendBuffer),
		commands:    make(chan protocol.NetworkCommand),
	}
}

func (c *streamClient) CharacterID() uuid.UUID                  { return c.characterID }
func (c *streamClient) Commands() <-chan protocol.NetworkCommand { return c.commands }

func (c *streamClient) Send(n protocol.NetworkNotification) bool {
	select {
	case c.out <- n:
		return true
	default:
		return false
	}
}

func (c *streamClient) Close() error {
	close(c.commands)
	return c.conn.Close()
}

// pump writes every GameUpdate notification the actor receives to the
// websocket connection as JSON until the connection breaks.
func (c *streamClient) pump() {
	for n := range c.out {
		if n.Kind != protocol.NotifyGameUpdate {
			continue
		}
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteJSON(struct {
			TickID   uint64                      `json:"tick_id"`
			Entities []protocol.EntitySnapshot `json:"entities"`
		}{TickID: n.TickID, Entities: n.Entities}); err != nil {
			return
		}
	}
}

// streamHandler implements GET /api/v1/instances/{id}/stream (SPEC_FULL.md
// §6 NEW): upgrades to a websocket and registers a read-only observer
// actor on the target instance, pushing one frame per tick until the
// socket closes.
func (s *Server) streamHandler(w http.ResponseWriter, r *http.Request) {
	ins, ok := s.instanceFromPath(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		loggerFromContext(r.Context()).WithError(err).Warn("admin stream: websocket upgrade failed")
		return
	}

	client := newStreamClient(conn)
	go client.pump()

	actorID := actor.ID(s.game.NewID())
	a := actor.NewNetworkActor(actorID, client, 0, 0)
	ins.Commands() <- instance.NewClient{Actor: a, Entities: nil}

	// Drain and discard inbound frames until the client disconnects; a
	// dashboard observer never sends commands, so this just detects
	// closure.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	ins.Commands() <- instance.UnregisterActor{ActorID: actorID}
	client.Close()
}
