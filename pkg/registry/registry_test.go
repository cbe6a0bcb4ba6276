package registry

import (
	"testing"
	"time"

	"github.com/rmarques/pointblank/pkg/game/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_CreateAndGet(t *testing.T) {
	reg := NewRegistry(NewRegistryOptions{})

	engine, err := reg.Create("friday duel", "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, engine.ID())
	assert.Equal(t, "friday duel", engine.Name())

	got, err := reg.Get(engine.ID())
	require.NoError(t, err)
	assert.Same(t, engine, got)

	snapshot := got.Snapshot()
	assert.Equal(t, types.StatusWaiting, snapshot.Status)
	assert.Equal(t, "alice", snapshot.Player1Name)
}

func TestRegistry_GetUnknown(t *testing.T) {
	reg := NewRegistry(NewRegistryOptions{})

	_, err := reg.Get("session-nope")
	require.Error(t, err)
	assert.True(t, IsSessionNotFound(err))
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry(NewRegistryOptions{})

	assert.Empty(t, reg.List())

	engine, err := reg.Create("friday duel", "alice")
	require.NoError(t, err)
	_, err = engine.AddParticipant("bob")
	require.NoError(t, err)

	infos := reg.List()
	require.Len(t, infos, 1)
	assert.Equal(t, engine.ID(), infos[0].ID)
	assert.Equal(t, "friday duel", infos[0].Name)
	assert.Equal(t, 2, infos[0].ParticipantCount)
	assert.Equal(t, types.StatusInGame, infos[0].Status)
}

func TestRegistry_Remove(t *testing.T) {
	reg := NewRegistry(NewRegistryOptions{})

	engine, err := reg.Create("friday duel", "alice")
	require.NoError(t, err)

	reg.Remove(engine.ID())
	_, err = reg.Get(engine.ID())
	assert.True(t, IsSessionNotFound(err))

	// removing twice is fine
	reg.Remove(engine.ID())
}

func TestRegistry_RemoveFinished(t *testing.T) {
	reg := NewRegistry(NewRegistryOptions{})

	active, err := reg.Create("still going", "alice")
	require.NoError(t, err)
	finished, err := reg.Create("done", "bob")
	require.NoError(t, err)
	require.NoError(t, finished.ApplyAction("bob", types.ActionQuit))

	// an attached observer keeps the finished session alive
	subscription := finished.Subscribe()
	assert.Zero(t, reg.RemoveFinished(0))

	subscription.Close()
	assert.Equal(t, 1, reg.RemoveFinished(0))

	_, err = reg.Get(finished.ID())
	assert.True(t, IsSessionNotFound(err))
	_, err = reg.Get(active.ID())
	assert.NoError(t, err)

	// sessions younger than the grace period survive
	young, err := reg.Create("fresh", "carol")
	require.NoError(t, err)
	require.NoError(t, young.ApplyAction("carol", types.ActionQuit))
	assert.Zero(t, reg.RemoveFinished(time.Hour))
}
