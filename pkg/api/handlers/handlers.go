package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rmarques/pointblank/pkg/game"
	gametypes "github.com/rmarques/pointblank/pkg/game/types"
	"github.com/rmarques/pointblank/pkg/log"
	"github.com/rmarques/pointblank/pkg/registry"
	"github.com/rmarques/pointblank/pkg/repositories"
)

const defaultMatchListLimit = 50

var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)

type CreateSessionRequest struct {
	PlayerName  string `json:"playerName"`
	SessionName string `json:"sessionName"`
}

type CreateSessionResponse struct {
	SessionID   string `json:"sessionId"`
	SessionName string `json:"sessionName"`
	Status      string `json:"status"`
}

type JoinSessionRequest struct {
	PlayerName string `json:"playerName"`
}

type JoinSessionResponse struct {
	SessionID        string `json:"sessionId"`
	SessionName      string `json:"sessionName"`
	ParticipantCount int    `json:"participantCount"`
	Status           string `json:"status"`
}

type SubmitActionRequest struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
}

type SubmitActionResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

func HandleListSessions(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, reg.List())
	}
}

func HandleCreateSession(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req := &CreateSessionRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Failed to decode request body", http.StatusBadRequest)
			return
		}

		if !validName(req.PlayerName) {
			http.Error(w, "Player name must be 1 to 16 characters with no special characters", http.StatusBadRequest)
			return
		}
		if req.SessionName == "" {
			req.SessionName = req.PlayerName + "'s game"
		}

		engine, err := reg.Create(req.SessionName, req.PlayerName)
		if err != nil {
			log.Error("Failed to create session: %v", err)
			http.Error(w, "Failed to create session", http.StatusInternalServerError)
			return
		}

		snapshot := engine.Snapshot()
		writeJSON(w, http.StatusOK, &CreateSessionResponse{
			SessionID:   engine.ID(),
			SessionName: engine.Name(),
			Status:      string(snapshot.Status),
		})
	}
}

func HandleJoinSession(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionID"]

		req := &JoinSessionRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Failed to decode request body", http.StatusBadRequest)
			return
		}
		if !validName(req.PlayerName) {
			http.Error(w, "Player name must be 1 to 16 characters with no special characters", http.StatusBadRequest)
			return
		}

		engine, err := reg.Get(sessionID)
		if err != nil {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}

		if _, err := engine.AddParticipant(req.PlayerName); err != nil {
			switch {
			case game.IsSessionFull(err):
				http.Error(w, "Session is full", http.StatusConflict)
			case game.IsGameNotActive(err):
				http.Error(w, "Session already ended", http.StatusConflict)
			default:
				log.Error("Failed to join session %s: %v", sessionID, err)
				http.Error(w, "Failed to join session", http.StatusInternalServerError)
			}
			return
		}

		snapshot := engine.Snapshot()
		count := 1
		if snapshot.Player2Name != "" {
			count = 2
		}
		writeJSON(w, http.StatusOK, &JoinSessionResponse{
			SessionID:        engine.ID(),
			SessionName:      engine.Name(),
			ParticipantCount: count,
			Status:           string(snapshot.Status),
		})
	}
}

func HandleSubmitAction(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionID"]

		req := &SubmitActionRequest{}
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			http.Error(w, "Failed to decode request body", http.StatusBadRequest)
			return
		}

		action := gametypes.Action(req.Action)
		if !action.IsValid() {
			writeJSON(w, http.StatusBadRequest, &SubmitActionResponse{
				Success: false,
				Error:   "unknown action",
			})
			return
		}

		engine, err := reg.Get(sessionID)
		if err != nil {
			writeJSON(w, http.StatusNotFound, &SubmitActionResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}

		if err := engine.ApplyAction(req.PlayerID, action); err != nil {
			status := http.StatusInternalServerError
			switch {
			case game.IsGameNotActive(err), game.IsNotYourTurn(err):
				status = http.StatusConflict
			default:
				log.Error("Failed to apply action on session %s: %v", sessionID, err)
			}
			writeJSON(w, status, &SubmitActionResponse{
				Success: false,
				Error:   err.Error(),
			})
			return
		}

		writeJSON(w, http.StatusOK, &SubmitActionResponse{
			Success: true,
		})
	}
}

func HandleListMatches(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultMatchListLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			parsed, err := strconv.Atoi(v)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid limit", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		results, err := repository.ListMatchResults(r.Context(), limit)
		if err != nil {
			log.Error("Failed to list match results: %v", err)
			http.Error(w, "Failed to list match results", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, results)
	}
}

func HandleGetMatch(repository repositories.Repository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := mux.Vars(r)["sessionID"]

		result, err := repository.GetMatchResult(r.Context(), sessionID)
		if err != nil {
			if repositories.IsNotFound(err) {
				http.Error(w, "Match not found", http.StatusNotFound)
				return
			}
			log.Error("Failed to get match result for session %s: %v", sessionID, err)
			http.Error(w, "Failed to get match result", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, result)
	}
}

func validName(name string) bool {
	if len(name) < 1 || len(name) > 16 {
		return false
	}
	return nameRegex.MatchString(name)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("Failed to encode response body: %v", err)
	}
}
