package types

// Status is the lifecycle state of a session.
// Transitions are WAITING -> IN_GAME -> GAME_OVER, or WAITING -> GAME_OVER
// when the host forfeits before an opponent joins. GAME_OVER is terminal.
type Status string

const (
	StatusWaiting  Status = "WAITING"
	StatusInGame   Status = "IN_GAME"
	StatusGameOver Status = "GAME_OVER"
)

// Action is a move submitted by a participant.
type Action string

const (
	ActionShootSelf     Action = "SHOOT_SELF"
	ActionShootOpponent Action = "SHOOT_OPPONENT"
	ActionQuit          Action = "QUIT"
)

// IsValid reports whether the action is one the engine knows how to apply.
func (a Action) IsValid() bool {
	switch a {
	case ActionShootSelf, ActionShootOpponent, ActionQuit:
		return true
	}
	return false
}

// Participant occupies one of the two slots in a session.
// The participant id is the display name (no separate identity layer).
type Participant struct {
	ID    string
	Name  string
	Lives int
}

func (p *Participant) Copy() *Participant {
	return &Participant{
		ID:    p.ID,
		Name:  p.Name,
		Lives: p.Lives,
	}
}

// SessionState is the authoritative record for one session. It is owned by the
// session's engine and must only be touched while holding the engine's lock.
type SessionState struct {
	ID   string
	Name string
	// Participants maps participant ids to participants
	Participants map[string]*Participant
	// Order records insertion order; Order[0] is the stable display anchor
	Order []string
	// CurrentTurnID is empty until the game starts
	CurrentTurnID string
	// Magazine is the shell sequence, consumed from the front; true = live
	Magazine []bool
	Status   Status
	// LastAction is the human-readable log line for the most recent mutation
	LastAction string
	// WinnerID is empty until decided
	WinnerID string
}

func NewSessionState(id, name string) *SessionState {
	return &SessionState{
		ID:           id,
		Name:         name,
		Participants: make(map[string]*Participant),
		Status:       StatusWaiting,
		LastAction:   "Session created. Waiting for an opponent...",
	}
}

// LiveShells counts the live shells left in the magazine.
func (s *SessionState) LiveShells() int {
	live := 0
	for _, shell := range s.Magazine {
		if shell {
			live++
		}
	}
	return live
}

// Opponent returns the other participant's id, or "" if there is none.
func (s *SessionState) Opponent(participantID string) string {
	for _, id := range s.Order {
		if id != participantID {
			return id
		}
	}
	return ""
}

// Snapshot is an immutable view of a session's externally relevant state.
// Participant slots follow insertion order; the second slot is zero-valued
// until an opponent joins.
type Snapshot struct {
	SessionID      string `json:"sessionId"`
	Status         Status `json:"status"`
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

// SnapshotFromState builds a snapshot from the session state. The caller must
// hold the session's lock.
func SnapshotFromState(s *SessionState) Snapshot {
	snap := Snapshot{
		SessionID:      s.ID,
		Status:         s.Status,
		CurrentTurnID:  s.CurrentTurnID,
		ShellsInMag:    len(s.Magazine),
		LiveShellsLeft: s.LiveShells(),
		LastAction:     s.LastAction,
		WinnerID:       s.WinnerID,
	}
	if len(s.Order) > 0 {
		p := s.Participants[s.Order[0]]
		snap.Player1Name = p.Name
		snap.Player1Lives = p.Lives
	}
	if len(s.Order) > 1 {
		p := s.Participants[s.Order[1]]
		snap.Player2Name = p.Name
		snap.Player2Lives = p.Lives
	}
	return snap
}
