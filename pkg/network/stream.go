package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	gametypes "github.com/rmarques/pointblank/pkg/game/types"
	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/messages"
	"github.com/rmarques/pointblank/pkg/registry"
	"nhooyr.io/websocket"
)

const (
	// DefaultPollInterval bounds each wait for the next snapshot so the
	// stream loop can notice a closed connection. A liveness check, not a
	// correctness requirement.
	DefaultPollInterval = 1 * time.Second
)

// StreamHandler upgrades session stream requests to WebSocket and relays
// snapshots to the observer until the session ends or the client disconnects.
type StreamHandler struct {
	registry     *registry.Registry
	pollInterval time.Duration
}

type NewStreamHandlerOptions struct {
	Registry     *registry.Registry
	PollInterval time.Duration
}

func NewStreamHandler(opts NewStreamHandlerOptions) *StreamHandler {
	pollInterval := opts.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	return &StreamHandler{
		registry:     opts.Registry,
		pollInterval: pollInterval,
	}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["sessionID"]
	participantID := r.URL.Query().Get("participantId")

	engine, err := h.registry.Get(sessionID)
	if err != nil {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		log.Error("Failed to upgrade to WebSocket: %v", err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream closed")

	// No client messages are expected on this stream; CloseRead gives us a
	// context that is canceled when the client goes away.
	ctx := conn.CloseRead(r.Context())

	subscription := engine.Subscribe()
	defer subscription.Close()

	log.Debug("Observer %q subscribed to session %s", participantID, sessionID)
	defer log.Debug("Observer %q detached from session %s", participantID, sessionID)

	for {
		if ctx.Err() != nil {
			return
		}

		snapshot, ok := subscription.Next(h.pollInterval)
		if !ok {
			select {
			case <-subscription.Done():
				// Detached by the hub for lagging; nothing more will come.
				return
			default:
				continue
			}
		}

		if err := writeSnapshot(ctx, conn, snapshot); err != nil {
			log.Trace("Stream to observer %q on session %s ended: %v", participantID, sessionID, err)
			return
		}

		if snapshot.Status == gametypes.StatusGameOver {
			conn.Close(websocket.StatusNormalClosure, "session over")
			return
		}
	}
}

// writeSnapshot writes one snapshot to the connection as a compressed
// message envelope.
func writeSnapshot(ctx context.Context, conn *websocket.Conn, snapshot gametypes.Snapshot) error {
	payload, err := json.Marshal(messages.SessionUpdateFromSnapshot(snapshot))
	if err != nil {
		return fmt.Errorf("failed to marshal session update: %v", err)
	}

	b, err := messages.SerializeMessage(&messages.Message{
		Type:    messages.MessageTypeServerSessionUpdate,
		Payload: payload,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize message: %v", err)
	}

	if err := conn.Write(ctx, websocket.MessageBinary, b); err != nil {
		return fmt.Errorf("failed to write message to WebSocket connection: %v", err)
	}

	return nil
}
