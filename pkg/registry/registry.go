package registry

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rmarques/pointblank/pkg/game"
	"github.com/rmarques/pointblank/pkg/game/types"
	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/queue"
)

// ErrSessionNotFound is returned when a session id does not resolve.
type ErrSessionNotFound struct{}

func (e *ErrSessionNotFound) Error() string {
	return "session not found"
}

func IsSessionNotFound(err error) bool {
	_, ok := err.(*ErrSessionNotFound)
	return ok
}

// SessionInfo is the listing view of a session.
type SessionInfo struct {
	ID               string       `json:"id"`
	Name             string       `json:"name"`
	ParticipantCount int          `json:"participantCount"`
	Status           types.Status `json:"status"`
}

// Registry is the process-wide mapping from session ids to engines. Its lock
// guards only the map and is never a session's lock, so a lookup cannot block
// on a session's in-progress mutation.
type Registry struct {
	mu          sync.RWMutex
	sessions    map[string]*game.Engine
	resultQueue queue.Queue
}

// NewRegistryOptions contains options for creating a new Registry.
type NewRegistryOptions struct {
	// ResultQueue is handed to every engine for finished-match records; may be nil
	ResultQueue queue.Queue
}

func NewRegistry(opts NewRegistryOptions) *Registry {
	return &Registry{
		sessions:    make(map[string]*game.Engine),
		resultQueue: opts.ResultQueue,
	}
}

// Create creates a session and joins the host to it.
func (r *Registry) Create(sessionName, hostName string) (*game.Engine, error) {
	id := fmt.Sprintf("session-%s", uuid.NewString()[:8])

	engine := game.NewEngine(game.NewEngineOptions{
		ID:          id,
		Name:        sessionName,
		ResultQueue: r.resultQueue,
	})
	if _, err := engine.AddParticipant(hostName); err != nil {
		return nil, fmt.Errorf("failed to join host to session: %v", err)
	}

	r.mu.Lock()
	r.sessions[id] = engine
	r.mu.Unlock()

	log.Info("Session %s (%q) created by %s", id, sessionName, hostName)
	return engine, nil
}

// Get returns the engine for a session id.
func (r *Registry) Get(id string) (*game.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.sessions[id]
	if !ok {
		return nil, &ErrSessionNotFound{}
	}
	return engine, nil
}

// List returns the listing view of every session. Engines are collected under
// the registry lock and snapshotted after it is released.
func (r *Registry) List() []SessionInfo {
	r.mu.RLock()
	engines := make([]*game.Engine, 0, len(r.sessions))
	for _, engine := range r.sessions {
		engines = append(engines, engine)
	}
	r.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(engines))
	for _, engine := range engines {
		snapshot := engine.Snapshot()
		count := 0
		if snapshot.Player1Name != "" {
			count++
		}
		if snapshot.Player2Name != "" {
			count++
		}
		infos = append(infos, SessionInfo{
			ID:               engine.ID(),
			Name:             engine.Name(),
			ParticipantCount: count,
			Status:           snapshot.Status,
		})
	}
	return infos
}

// Remove deletes a session from the registry. Idempotent.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// RemoveFinished removes sessions that ended at least minAge ago and have no
// attached observers, and returns how many were removed. The engine leaves
// this garbage collection policy to the registry layer.
func (r *Registry) RemoveFinished(minAge time.Duration) int {
	r.mu.RLock()
	engines := make([]*game.Engine, 0, len(r.sessions))
	for _, engine := range r.sessions {
		engines = append(engines, engine)
	}
	r.mu.RUnlock()

	removed := 0
	for _, engine := range engines {
		finishedAt, finished := engine.FinishedSince()
		if !finished || time.Since(finishedAt) < minAge {
			continue
		}
		if engine.SubscriberCount() > 0 {
			continue
		}
		r.Remove(engine.ID())
		removed++
		log.Debug("Removed finished session %s", engine.ID())
	}
	return removed
}
