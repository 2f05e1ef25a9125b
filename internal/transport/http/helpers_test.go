package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"geo-quiz-service/internal/app"
	"geo-quiz-service/internal/auth"
	"geo-quiz-service/internal/content"
	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/game"
	"geo-quiz-service/internal/infra/memory"
)

var (
	epoch       = time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	eiffelTower = domain.Coordinate{Lat: 48.8584, Lng: 2.2945}
)

type testAPI struct {
	server *httptest.Server
	clock  *game.ManualClock
	tokens *auth.Issuer
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	clock := game.NewManualClock(epoch)
	questions := memory.NewQuestionRepository(content.NewLoader(content.Builtin()), time.Minute)
	n := 0
	service := app.NewGameService(memory.NewSessionStore(), questions, memory.NewScoreBoard(),
		app.WithClock(clock),
		app.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("s%d", n)
		}),
	)
	tokens := auth.NewIssuer("test-secret", time.Hour)
	server := httptest.NewServer(NewRouter(Deps{
		Service:    service,
		Tokens:     tokens,
		DefaultSet: "classic",
	}))
	t.Cleanup(server.Close)
	return &testAPI{server: server, clock: clock, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testAPI) createSession(t *testing.T, player string) CreateSessionResponse {
	t.Helper()
	resp := a.do(t, http.MethodPost, "/api/sessions", "", CreateSessionRequest{Player: player})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	var created CreateSessionResponse
	decode(t, resp, &created)
	return created
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}
