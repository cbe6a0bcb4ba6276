package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rmarques/pointblank/pkg/broadcast"
	"github.com/rmarques/pointblank/pkg/game/constants"
	"github.com/rmarques/pointblank/pkg/game/types"
	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/queue"
	"github.com/rmarques/pointblank/pkg/repositories/models"
)

// Engine is the authoritative state machine for one session. All mutation
// happens under its lock; observers receive snapshots through the hub and
// never touch the state directly.
type Engine struct {
	mu          sync.Mutex
	state       *types.SessionState
	hub         *broadcast.Hub
	shells      ShellSource
	rng         *rand.Rand
	resultQueue queue.Queue
	finishedAt  time.Time
}

// NewEngineOptions contains options for creating a new Engine.
type NewEngineOptions struct {
	ID   string
	Name string
	// ShellSource generates magazines; defaults to a time-seeded MagazineSource
	ShellSource ShellSource
	// Rand picks the first turn; defaults to a time-seeded generator
	Rand *rand.Rand
	// ResultQueue receives a *models.MatchResult when the session ends; may be nil
	ResultQueue queue.Queue
}

func NewEngine(opts NewEngineOptions) *Engine {
	shells := opts.ShellSource
	if shells == nil {
		shells = NewMagazineSource()
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{
		state:       types.NewSessionState(opts.ID, opts.Name),
		hub:         broadcast.NewHub(),
		shells:      shells,
		rng:         rng,
		resultQueue: opts.ResultQueue,
	}
}

func (e *Engine) ID() string {
	return e.state.ID
}

func (e *Engine) Name() string {
	return e.state.Name
}

// AddParticipant inserts a participant and returns its id. The id is the
// display name; a duplicate name overwrites the existing slot (callers are
// expected to prevent collisions upstream). The second join starts the game.
// Exactly one snapshot is published per successful call.
func (e *Engine) AddParticipant(name string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	participantID := name
	_, exists := e.state.Participants[participantID]
	if !exists && len(e.state.Participants) >= constants.MaxParticipants {
		return "", &ErrSessionFull{}
	}
	if e.state.Status != types.StatusWaiting {
		return "", &ErrGameNotActive{}
	}
	if !exists {
		e.state.Order = append(e.state.Order, participantID)
	}
	e.state.Participants[participantID] = &types.Participant{
		ID:    participantID,
		Name:  name,
		Lives: constants.InitialLives,
	}

	if len(e.state.Participants) == constants.MaxParticipants {
		e.startGame()
	} else {
		e.state.LastAction = fmt.Sprintf("%s joined. Waiting for an opponent...", name)
	}

	e.publish()
	return participantID, nil
}

// startGame transitions WAITING -> IN_GAME, picks the first turn uniformly at
// random and loads the magazine. Caller must hold the lock.
func (e *Engine) startGame() {
	e.state.Status = types.StatusInGame
	e.state.CurrentTurnID = e.state.Order[e.rng.Intn(len(e.state.Order))]
	e.state.Magazine = e.shells.Generate()
	e.state.LastAction = fmt.Sprintf("Game on! %d shells loaded (%d live). %s goes first.",
		len(e.state.Magazine), e.state.LiveShells(), e.state.CurrentTurnID)
	log.Info("Session %s: game started with %d shells (%d live), first turn %s",
		e.state.ID, len(e.state.Magazine), e.state.LiveShells(), e.state.CurrentTurnID)
}

// ApplyAction applies a participant's action to the session. A rejected
// action leaves the state untouched and publishes nothing; an accepted one
// publishes exactly one snapshot.
func (e *Engine) ApplyAction(participantID string, action types.Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !action.IsValid() {
		return fmt.Errorf("unknown action: %s", action)
	}
	if _, ok := e.state.Participants[participantID]; !ok {
		return &ErrNotYourTurn{}
	}

	if action == types.ActionQuit {
		if err := e.applyQuit(participantID); err != nil {
			return err
		}
	} else {
		if err := e.applyShot(participantID, action); err != nil {
			return err
		}
	}

	e.checkWinCondition()

	if e.state.Status == types.StatusGameOver && e.finishedAt.IsZero() {
		e.finishedAt = time.Now()
		e.enqueueResult()
	}

	e.publish()
	return nil
}

// applyQuit zeroes the quitter's lives. A forfeit before the game starts ends
// the session immediately; mid-game the win check attributes the winner.
// Caller must hold the lock.
func (e *Engine) applyQuit(participantID string) error {
	if e.state.Status == types.StatusGameOver {
		return &ErrGameNotActive{}
	}

	e.state.Participants[participantID].Lives = 0
	e.state.LastAction = fmt.Sprintf("%s forfeited.", participantID)
	log.Info("Session %s: %s forfeited", e.state.ID, participantID)

	if e.state.Status == types.StatusWaiting {
		e.state.Status = types.StatusGameOver
		winner := e.state.Opponent(participantID)
		if winner == "" {
			winner = constants.WinnerNobody
		}
		e.state.WinnerID = winner
	}

	return nil
}

// applyShot resolves a shot action. An empty magazine is reloaded before the
// shot is resolved; the reload alone never moves the turn. Caller must hold
// the lock.
func (e *Engine) applyShot(participantID string, action types.Action) error {
	if e.state.Status != types.StatusInGame {
		return &ErrGameNotActive{}
	}
	if participantID != e.state.CurrentTurnID {
		return &ErrNotYourTurn{}
	}

	reloadNote := ""
	if len(e.state.Magazine) == 0 {
		e.state.Magazine = e.shells.Generate()
		reloadNote = fmt.Sprintf("Magazine empty, reloaded %d shells (%d live). ",
			len(e.state.Magazine), e.state.LiveShells())
		log.Debug("Session %s: reloaded %d shells (%d live)",
			e.state.ID, len(e.state.Magazine), e.state.LiveShells())
	}

	isLive := e.state.Magazine[0]
	e.state.Magazine = e.state.Magazine[1:]
	opponentID := e.state.Opponent(participantID)

	switch action {
	case types.ActionShootSelf:
		if isLive {
			e.state.Participants[participantID].Lives--
			e.state.CurrentTurnID = opponentID
			e.state.LastAction = reloadNote + fmt.Sprintf(
				"%s pulled the trigger on themselves... it was LIVE! -1 life. The turn passes.", participantID)
		} else {
			e.state.LastAction = reloadNote + fmt.Sprintf(
				"%s pulled the trigger on themselves... blank. They keep the turn.", participantID)
		}
	case types.ActionShootOpponent:
		if isLive {
			e.state.Participants[opponentID].Lives--
			e.state.LastAction = reloadNote + fmt.Sprintf(
				"%s shot %s... it was LIVE! %s loses a life.", participantID, opponentID, opponentID)
		} else {
			e.state.LastAction = reloadNote + fmt.Sprintf(
				"%s shot %s... blank. No one was hurt.", participantID, opponentID)
		}
		e.state.CurrentTurnID = opponentID
	default:
		return fmt.Errorf("unknown shot action: %s", action)
	}

	return nil
}

// checkWinCondition ends the session once any participant is out of lives.
// Caller must hold the lock.
func (e *Engine) checkWinCondition() {
	if e.state.Status == types.StatusGameOver {
		return
	}
	for _, id := range e.state.Order {
		if e.state.Participants[id].Lives > 0 {
			continue
		}
		winner := e.state.Opponent(id)
		if winner == "" {
			winner = constants.WinnerNobody
		}
		e.state.WinnerID = winner
		e.state.Status = types.StatusGameOver
		e.state.LastAction += fmt.Sprintf(" GAME OVER! %s wins!", winner)
		log.Info("Session %s: game over, winner %s", e.state.ID, winner)
		return
	}
}

// Snapshot returns an immutable copy of the externally relevant state.
func (e *Engine) Snapshot() types.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return types.SnapshotFromState(e.state)
}

// Subscribe attaches an observer to the session's hub. The subscription's
// first delivered item is the current snapshot.
func (e *Engine) Subscribe() *broadcast.Subscription {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hub.Subscribe(types.SnapshotFromState(e.state))
}

// SubscriberCount returns the number of attached observers.
func (e *Engine) SubscriberCount() int {
	return e.hub.Count()
}

// FinishedSince reports when the session reached GAME_OVER.
func (e *Engine) FinishedSince() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finishedAt, !e.finishedAt.IsZero()
}

// publish pushes the current snapshot to all observers. Caller must hold the
// lock; delivery is non-blocking so no network I/O happens under it.
func (e *Engine) publish() {
	e.hub.Publish(types.SnapshotFromState(e.state))
}

func (e *Engine) enqueueResult() {
	if e.resultQueue == nil {
		return
	}

	result := &models.MatchResult{
		SessionID:   e.state.ID,
		SessionName: e.state.Name,
		WinnerID:    e.state.WinnerID,
		FinishedAt:  e.finishedAt.UnixMilli(),
	}
	if len(e.state.Order) > 0 {
		p := e.state.Participants[e.state.Order[0]]
		result.Player1Name = p.Name
		result.Player1Lives = p.Lives
	}
	if len(e.state.Order) > 1 {
		p := e.state.Participants[e.state.Order[1]]
		result.Player2Name = p.Name
		result.Player2Lives = p.Lives
	}

	if err := e.resultQueue.Enqueue(result); err != nil {
		log.Error("Failed to enqueue match result for session %s: %v", e.state.ID, err)
	}
}
