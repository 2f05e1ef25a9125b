package http

import (
	"fmt"
	"net/http"
	"strconv"

	"geo-quiz-service/internal/app"
	"geo-quiz-service/internal/auth"
	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/geo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// CreateSessionRequest opens a new game. An empty question set id plays the default set.
type CreateSessionRequest struct {
	QuestionSetID string `json:"questionSetId,omitempty"`
	Player        string `json:"player"`
}

// CreateSessionResponse carries the token required by every session-scoped route.
type CreateSessionResponse struct {
	app.SessionInfo
	Token string `json:"token"`
}

// GuessRequest is the REST form of a map click.
type GuessRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RESTHandler serves the question set and session endpoints.
type RESTHandler struct {
	service    *app.GameService
	tokens     *auth.Issuer
	defaultSet string
	logger     *zap.Logger
}

func NewRESTHandler(service *app.GameService, tokens *auth.Issuer, defaultSet string, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{service: service, tokens: tokens, defaultSet: defaultSet, logger: logger}
}

func (h *RESTHandler) getQuestionSet(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.QuestionSet(r.Context(), chi.URLParam(r, "setID"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

const maxLeaderboardLimit = 100

func (h *RESTHandler) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = min(n, maxLeaderboardLimit)
	}
	entries, err := h.service.Leaderboard(r.Context(), chi.URLParam(r, "setID"), limit)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *RESTHandler) createSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.QuestionSetID == "" {
		req.QuestionSetID = h.defaultSet
	}

	info, err := h.service.CreateSession(r.Context(), req.QuestionSetID, req.Player)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	token, err := h.tokens.Issue(info.ID, info.Player)
	if err != nil {
		_ = h.service.Close(r.Context(), info.ID)
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateSessionResponse{SessionInfo: info, Token: token})
}

func (h *RESTHandler) getSession(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *RESTHandler) getOverlay(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	fc, err := geo.Overlay(snap.AnswerCircle, snap.FeedbackCircle)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		writeServiceError(w, h.logger, fmt.Errorf("encode overlay: %w", err))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *RESTHandler) startSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.Start(r.Context(), sessionID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeSnapshot(w, r, sessionID)
}

func (h *RESTHandler) postGuess(w http.ResponseWriter, r *http.Request) {
	var req GuessRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sessionID := chi.URLParam(r, "sessionID")
	if err := h.service.Guess(r.Context(), sessionID, domain.Coordinate{Lat: req.Lat, Lng: req.Lng}); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	h.writeSnapshot(w, r, sessionID)
}

func (h *RESTHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Close(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *RESTHandler) writeSnapshot(w http.ResponseWriter, r *http.Request, sessionID string) {
	snap, err := h.service.Snapshot(r.Context(), sessionID)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
