package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rmarques/pointblank/pkg/registry"
	"github.com/rmarques/pointblank/pkg/repositories"
	"github.com/rmarques/pointblank/pkg/repositories/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepository is an in-memory Repository for handler tests.
type fakeRepository struct {
	results []*models.MatchResult
}

func (r *fakeRepository) Close(ctx context.Context) error {
	return nil
}

func (r *fakeRepository) SaveMatchResult(ctx context.Context, result *models.MatchResult) error {
	r.results = append(r.results, result)
	return nil
}

func (r *fakeRepository) GetMatchResult(ctx context.Context, sessionID string) (*models.MatchResult, error) {
	for _, result := range r.results {
		if result.SessionID == sessionID {
			return result, nil
		}
	}
	return nil, &repositories.ErrNotFound{}
}

func (r *fakeRepository) ListMatchResults(ctx context.Context, limit int) ([]*models.MatchResult, error) {
	if limit > len(r.results) {
		limit = len(r.results)
	}
	return r.results[:limit], nil
}

func newTestRouter(reg *registry.Registry, repository *fakeRepository) *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/sessions", HandleListSessions(reg)).Methods(http.MethodGet)
	api.HandleFunc("/sessions", HandleCreateSession(reg)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/join", HandleJoinSession(reg)).Methods(http.MethodPost)
	api.HandleFunc("/sessions/{sessionID}/actions", HandleSubmitAction(reg)).Methods(http.MethodPost)
	api.HandleFunc("/matches", HandleListMatches(repository)).Methods(http.MethodGet)
	api.HandleFunc("/matches/{sessionID}", HandleGetMatch(repository)).Methods(http.MethodGet)
	return router
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandleCreateSession(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	router := newTestRouter(reg, &fakeRepository{})

	w := doJSON(t, router, http.MethodPost, "/api/sessions", &CreateSessionRequest{
		PlayerName: "alice",
	})
	require.Equal(t, http.StatusOK, w.Code)

	resp := &CreateSessionResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "alice's game", resp.SessionName)
	assert.Equal(t, "WAITING", resp.Status)

	_, err := reg.Get(resp.SessionID)
	assert.NoError(t, err)
}

func TestHandleCreateSession_InvalidName(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	router := newTestRouter(reg, &fakeRepository{})

	for _, name := range []string{"", "way too long a player name", "bad!name"} {
		w := doJSON(t, router, http.MethodPost, "/api/sessions", &CreateSessionRequest{
			PlayerName: name,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code, "name %q should be rejected", name)
	}
}

func TestHandleJoinSession(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	router := newTestRouter(reg, &fakeRepository{})

	engine, err := reg.Create("friday duel", "alice")
	require.NoError(t, err)
	joinPath := fmt.Sprintf("/api/sessions/%s/join", engine.ID())

	w := doJSON(t, router, http.MethodPost, joinPath, &JoinSessionRequest{PlayerName: "bob"})
	require.Equal(t, http.StatusOK, w.Code)

	resp := &JoinSessionResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	assert.Equal(t, 2, resp.ParticipantCount)
	assert.Equal(t, "IN_GAME", resp.Status)

	// a third participant is rejected
	w = doJSON(t, router, http.MethodPost, joinPath, &JoinSessionRequest{PlayerName: "carol"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// unknown session
	w = doJSON(t, router, http.MethodPost, "/api/sessions/session-nope/join", &JoinSessionRequest{PlayerName: "carol"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleSubmitAction(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	router := newTestRouter(reg, &fakeRepository{})

	engine, err := reg.Create("friday duel", "alice")
	require.NoError(t, err)
	_, err = engine.AddParticipant("bob")
	require.NoError(t, err)

	actor := engine.Snapshot().CurrentTurnID
	opponent := "alice"
	if actor == "alice" {
		opponent = "bob"
	}
	actionsPath := fmt.Sprintf("/api/sessions/%s/actions", engine.ID())

	// out of turn
	w := doJSON(t, router, http.MethodPost, actionsPath, &SubmitActionRequest{
		PlayerID: opponent,
		Action:   "SHOOT_SELF",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	resp := &SubmitActionResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)

	// unknown action
	w = doJSON(t, router, http.MethodPost, actionsPath, &SubmitActionRequest{
		PlayerID: actor,
		Action:   "RELOAD",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// valid move by the participant whose turn it is
	w = doJSON(t, router, http.MethodPost, actionsPath, &SubmitActionRequest{
		PlayerID: actor,
		Action:   "SHOOT_OPPONENT",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp = &SubmitActionResponse{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), resp))
	assert.True(t, resp.Success)

	// unknown session
	w = doJSON(t, router, http.MethodPost, "/api/sessions/session-nope/actions", &SubmitActionRequest{
		PlayerID: actor,
		Action:   "QUIT",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleListSessions(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	router := newTestRouter(reg, &fakeRepository{})

	_, err := reg.Create("friday duel", "alice")
	require.NoError(t, err)

	w := doJSON(t, router, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	infos := []registry.SessionInfo{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &infos))
	require.Len(t, infos, 1)
	assert.Equal(t, "friday duel", infos[0].Name)
	assert.Equal(t, 1, infos[0].ParticipantCount)
}

func TestHandleListMatches(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	repository := &fakeRepository{
		results: []*models.MatchResult{
			{SessionID: "session-1", WinnerID: "alice"},
			{SessionID: "session-2", WinnerID: "bob"},
		},
	}
	router := newTestRouter(reg, repository)

	w := doJSON(t, router, http.MethodGet, "/api/matches?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	results := []*models.MatchResult{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "session-1", results[0].SessionID)

	w = doJSON(t, router, http.MethodGet, "/api/matches?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetMatch(t *testing.T) {
	reg := registry.NewRegistry(registry.NewRegistryOptions{})
	repository := &fakeRepository{
		results: []*models.MatchResult{
			{SessionID: "session-1", WinnerID: "alice"},
		},
	}
	router := newTestRouter(reg, repository)

	w := doJSON(t, router, http.MethodGet, "/api/matches/session-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	result := &models.MatchResult{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), result))
	assert.Equal(t, "alice", result.WinnerID)

	w = doJSON(t, router, http.MethodGet, "/api/matches/session-nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
