package protocol

import "github.com/google/uuid"

// Client is the handle the out-of-scope network layer hands the coordinator
// after a successful TCP accept and handshake (spec.md §2 item 1): a
// bidirectional channel plus the authenticated character's UUID. Sending
// must never block the caller for long — implementations are expected to
// apply the same "non-blocking or bounded-drop" policy spec.md §5 requires
// of NetworkActor.
type Client interface {
	// CharacterID is the authenticated character this client represents.
	CharacterID() uuid.UUID

	// Commands returns the stream of already-parsed inbound commands.
	// The channel is closed when the underlying connection is gone.
	Commands() <-chan NetworkCommand

	// Send enqueues an outbound notification. It returns false if the
	// notification was dropped (e.g. the client's send buffer was full).
	Send(NetworkNotification) bool

	// Close terminates the underlying connection.
	Close() error
}
