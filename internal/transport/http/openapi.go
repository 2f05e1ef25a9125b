package http

import (
	"encoding/json"
	"net/http"

	"geo-quiz-service/internal/app"
	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/game"
	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// overlayDocument describes the GeoJSON overlay for the API docs.
type overlayDocument struct {
	Type     string `json:"type" example:"FeatureCollection"`
	Features []struct {
		Type       string         `json:"type" example:"Feature"`
		ID         string         `json:"id" example:"answer"`
		Geometry   map[string]any `json:"geometry"`
		Properties map[string]any `json:"properties"`
	} `json:"features"`
}

type setPath struct {
	SetID string `path:"setID"`
}

type leaderboardQuery struct {
	SetID string `path:"setID"`
	Limit int    `query:"limit"`
}

type sessionPath struct {
	SessionID string `path:"sessionID"`
}

type guessInput struct {
	SessionID string `path:"sessionID"`
	GuessRequest
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Geo Quiz API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Map quiz sessions: place each landmark on the map before the timer runs out.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /api/question-sets/{setID}
	getSet, _ := r.NewOperationContext(http.MethodGet, "/api/question-sets/{setID}")
	getSet.SetSummary("Describe question set")
	getSet.SetDescription("Title, question count and maximum score. Answers are never exposed.")
	getSet.AddReqStructure(setPath{})
	getSet.AddRespStructure(app.QuestionSetInfo{}, openapi.WithHTTPStatus(http.StatusOK))
	getSet.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSet)

	// GET /api/question-sets/{setID}/leaderboard
	getBoard, _ := r.NewOperationContext(http.MethodGet, "/api/question-sets/{setID}/leaderboard")
	getBoard.SetSummary("Leaderboard")
	getBoard.SetDescription("Best finished runs for a question set, highest score first.")
	getBoard.AddReqStructure(leaderboardQuery{})
	getBoard.AddRespStructure([]domain.ScoreEntry{}, openapi.WithHTTPStatus(http.StatusOK))
	getBoard.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	_ = r.AddOperation(getBoard)

	// POST /api/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/sessions")
	postSession.SetSummary("Create session")
	postSession.SetDescription("Creates an idle game session and returns its bearer token.")
	postSession.AddReqStructure(CreateSessionRequest{})
	postSession.AddRespStructure(CreateSessionResponse{}, openapi.WithHTTPStatus(http.StatusCreated))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postSession)

	// GET /api/sessions/{sessionID}
	getSession, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}")
	getSession.SetSummary("Session state")
	getSession.SetDescription("Current render state. Requires the session token.")
	getSession.AddReqStructure(sessionPath{})
	getSession.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	getSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getSession)

	// GET /api/sessions/{sessionID}/overlay
	getOverlay, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/overlay")
	getOverlay.SetSummary("Map overlay")
	getOverlay.SetDescription("Answer and guess circles as a GeoJSON FeatureCollection. Requires the session token.")
	getOverlay.AddReqStructure(sessionPath{})
	getOverlay.AddRespStructure(overlayDocument{}, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("application/geo+json"))
	getOverlay.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getOverlay)

	// POST /api/sessions/{sessionID}/start
	postStart, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/start")
	postStart.SetSummary("Start or restart")
	postStart.SetDescription("Starts the run from the first question, cancelling any pending timers.")
	postStart.AddReqStructure(sessionPath{})
	postStart.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postStart.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postStart)

	// POST /api/sessions/{sessionID}/guesses
	postGuess, _ := r.NewOperationContext(http.MethodPost, "/api/sessions/{sessionID}/guesses")
	postGuess.SetSummary("Guess")
	postGuess.SetDescription("Places a guess for the current question. Ignored outside of play or while feedback is shown.")
	postGuess.AddReqStructure(guessInput{})
	postGuess.AddRespStructure(game.Snapshot{}, openapi.WithHTTPStatus(http.StatusOK))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postGuess.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postGuess)

	// DELETE /api/sessions/{sessionID}
	deleteSession, _ := r.NewOperationContext(http.MethodDelete, "/api/sessions/{sessionID}")
	deleteSession.SetSummary("End session")
	deleteSession.SetDescription("Stops timers, closes subscribers and forgets the session.")
	deleteSession.AddReqStructure(sessionPath{})
	deleteSession.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusNoContent))
	deleteSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(deleteSession)

	// GET /api/sessions/{sessionID}/ws
	getWS, _ := r.NewOperationContext(http.MethodGet, "/api/sessions/{sessionID}/ws")
	getWS.SetSummary("Map widget channel")
	getWS.SetDescription("WebSocket. Send {type:start} or {type:click,payload:{lat,lng}}; receive {type:state,payload:Snapshot}. Pass the token as a query parameter.")
	getWS.AddReqStructure(sessionPath{})
	getWS.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWS)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
