package messages

import (
	"encoding/json"

	gametypes "github.com/rmarques/pointblank/pkg/game/types"
)

// Message types
const (
	MessageTypeServerSessionUpdate = "ssu"
)

// Message represents a generic message for serialization/deserialization
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// SessionUpdate is the snapshot wire shape streamed to observers.
type SessionUpdate struct {
	SessionID      string `json:"sessionId"`
	Status         string `json:"status"`
	Player1Name    string `json:"player1Name"`
	Player1Lives   int    `json:"player1Lives"`
	Player2Name    string `json:"player2Name"`
	Player2Lives   int    `json:"player2Lives"`
	CurrentTurnID  string `json:"currentTurnId"`
	ShellsInMag    int    `json:"shellsInMag"`
	LiveShellsLeft int    `json:"liveShellsLeft"`
	LastAction     string `json:"lastAction"`
	WinnerID       string `json:"winnerId"`
}

// SessionUpdateFromSnapshot converts an engine snapshot to its wire shape.
func SessionUpdateFromSnapshot(snapshot gametypes.Snapshot) *SessionUpdate {
	return &SessionUpdate{
		SessionID:      snapshot.SessionID,
		Status:         string(snapshot.Status),
		Player1Name:    snapshot.Player1Name,
		Player1Lives:   snapshot.Player1Lives,
		Player2Name:    snapshot.Player2Name,
		Player2Lives:   snapshot.Player2Lives,
		CurrentTurnID:  snapshot.CurrentTurnID,
		ShellsInMag:    snapshot.ShellsInMag,
		LiveShellsLeft: snapshot.LiveShellsLeft,
		LastAction:     snapshot.LastAction,
		WinnerID:       snapshot.WinnerID,
	}
}
