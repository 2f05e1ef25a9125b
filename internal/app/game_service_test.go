package app

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"geo-quiz-service/internal/content"
	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/game"
	"geo-quiz-service/internal/infra/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	epoch       = time.Date(2024, 11, 22, 10, 0, 0, 0, time.UTC)
	eiffelTower = domain.Coordinate{Lat: 48.8584, Lng: 2.2945}
	liberty     = domain.Coordinate{Lat: 40.6892, Lng: -74.0445}
)

func newTestService(t *testing.T, opts ...Option) (*GameService, *game.ManualClock, *memory.SessionStore) {
	t.Helper()
	clock := game.NewManualClock(epoch)
	sets := map[string]domain.QuestionSet{
		"classic": content.Builtin()["classic"],
		"empty":   {ID: "empty", Title: "Empty"},
	}
	questions := memory.NewQuestionRepository(content.NewLoader(sets), time.Minute)
	sessions := memory.NewSessionStore()

	n := 0
	ids := func() string {
		n++
		return fmt.Sprintf("s%d", n)
	}
	base := []Option{WithClock(clock), WithIDGenerator(ids)}
	service := NewGameService(sessions, questions, memory.NewScoreBoard(), append(base, opts...)...)
	t.Cleanup(func() {
		for _, id := range sessions.IDs() {
			_ = service.Close(context.Background(), id)
		}
	})
	return service, clock, sessions
}

func TestCreateSession(t *testing.T) {
	service, _, _ := newTestService(t)

	info, err := service.CreateSession(context.Background(), "classic", "  Alice ")
	require.NoError(t, err)
	assert.Equal(t, SessionInfo{
		ID:            "s1",
		QuestionSetID: "classic",
		Title:         "Classic",
		Player:        "Alice",
		QuestionCount: 2,
		MaxScore:      200,
	}, info)

	snap, err := service.Snapshot(context.Background(), info.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusIdle, snap.Status)
}

func TestCreateSessionDefaultsPlayerName(t *testing.T) {
	service, _, _ := newTestService(t)

	info, err := service.CreateSession(context.Background(), "classic", "")
	require.NoError(t, err)
	assert.Equal(t, "player", info.Player)
}

func TestCreateSessionErrors(t *testing.T) {
	service, _, _ := newTestService(t)

	_, err := service.CreateSession(context.Background(), "missing", "Alice")
	assert.ErrorIs(t, err, domain.ErrQuestionSetNotFound)

	_, err = service.CreateSession(context.Background(), "empty", "Alice")
	assert.ErrorIs(t, err, domain.ErrEmptyQuestionSet)
}

func TestQuestionSetHidesAnswers(t *testing.T) {
	service, _, _ := newTestService(t)

	info, err := service.QuestionSet(context.Background(), "classic")
	require.NoError(t, err)
	assert.Equal(t, QuestionSetInfo{ID: "classic", Title: "Classic", QuestionCount: 2, MaxScore: 200}, info)
}

func TestUnknownSession(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()

	assert.ErrorIs(t, service.Start(ctx, "nope"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, service.Guess(ctx, "nope", eiffelTower), domain.ErrSessionNotFound)
	assert.ErrorIs(t, service.Close(ctx, "nope"), domain.ErrSessionNotFound)
	_, err := service.Snapshot(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, _, err = service.Subscribe(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGuessRejectsInvalidCoordinate(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	info, err := service.CreateSession(ctx, "classic", "Alice")
	require.NoError(t, err)
	require.NoError(t, service.Start(ctx, info.ID))

	err = service.Guess(ctx, info.ID, domain.Coordinate{Lat: 91, Lng: 0})
	assert.True(t, errors.Is(err, domain.ErrInvalidCoordinate))

	snap, err := service.Snapshot(ctx, info.ID)
	require.NoError(t, err)
	assert.Nil(t, snap.Feedback)
}

func TestFullGameRecordsLeaderboard(t *testing.T) {
	service, clock, _ := newTestService(t)
	ctx := context.Background()

	alice, err := service.CreateSession(ctx, "classic", "Alice")
	require.NoError(t, err)
	bob, err := service.CreateSession(ctx, "classic", "Bob")
	require.NoError(t, err)

	require.NoError(t, service.Start(ctx, alice.ID))
	require.NoError(t, service.Start(ctx, bob.ID))

	require.NoError(t, service.Guess(ctx, alice.ID, eiffelTower))
	require.NoError(t, service.Guess(ctx, bob.ID, eiffelTower))
	clock.Advance(2 * time.Second)

	require.NoError(t, service.Guess(ctx, alice.ID, liberty))
	// one degree of latitude off: 78 points
	require.NoError(t, service.Guess(ctx, bob.ID, domain.Coordinate{Lat: liberty.Lat + 1, Lng: liberty.Lng}))
	clock.Advance(2 * time.Second)

	snap, err := service.Snapshot(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, game.StatusFinished, snap.Status)
	assert.Equal(t, 200, snap.Score)

	board, err := service.Leaderboard(ctx, "classic", 0)
	require.NoError(t, err)
	assert.Equal(t, []domain.ScoreEntry{
		{SessionID: alice.ID, Player: "Alice", Score: 200},
		{SessionID: bob.ID, Player: "Bob", Score: 178},
	}, board)
}

func TestSubscribeStreamsSnapshots(t *testing.T) {
	service, _, _ := newTestService(t)
	ctx := context.Background()
	info, err := service.CreateSession(ctx, "classic", "Alice")
	require.NoError(t, err)

	updates, cancel, err := service.Subscribe(ctx, info.ID)
	require.NoError(t, err)
	defer cancel()

	assert.Equal(t, game.StatusIdle, (<-updates).Status)
	require.NoError(t, service.Start(ctx, info.ID))
	assert.Equal(t, game.StatusPlaying, (<-updates).Status)
}

func TestCloseForgetsSession(t *testing.T) {
	service, clock, sessions := newTestService(t)
	ctx := context.Background()
	info, err := service.CreateSession(ctx, "classic", "Alice")
	require.NoError(t, err)
	require.NoError(t, service.Start(ctx, info.ID))

	require.NoError(t, service.Close(ctx, info.ID))
	assert.Empty(t, sessions.IDs())
	assert.Zero(t, clock.Pending())
}

func TestReapIdleClosesStaleSessions(t *testing.T) {
	service, clock, sessions := newTestService(t, WithIdleTTL(10*time.Minute))
	ctx := context.Background()

	stale, err := service.CreateSession(ctx, "classic", "Alice")
	require.NoError(t, err)
	clock.Advance(6 * time.Minute)
	fresh, err := service.CreateSession(ctx, "classic", "Bob")
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)

	assert.Equal(t, 1, service.ReapIdle(ctx))
	assert.Equal(t, []string{fresh.ID}, sessions.IDs())
	_, err = service.Snapshot(ctx, stale.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

// accessCountingSessions records lookups that count as player access.
type accessCountingSessions struct {
	*memory.SessionStore
	gets int
}

func (s *accessCountingSessions) Get(id string) (*game.Controller, bool) {
	s.gets++
	return s.SessionStore.Get(id)
}

func TestReapIdleDoesNotTouchSessions(t *testing.T) {
	clock := game.NewManualClock(epoch)
	questions := memory.NewQuestionRepository(content.NewLoader(content.Builtin()), time.Minute)
	sessions := &accessCountingSessions{SessionStore: memory.NewSessionStore()}
	service := NewGameService(sessions, questions, memory.NewScoreBoard(), WithClock(clock), WithIdleTTL(10*time.Minute))
	ctx := context.Background()

	info, err := service.CreateSession(ctx, "classic", "Alice")
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Close(ctx, info.ID) })
	before := sessions.gets

	clock.Advance(time.Minute)
	assert.Zero(t, service.ReapIdle(ctx))
	assert.Equal(t, before, sessions.gets, "scan must not refresh liveness")
	assert.Equal(t, []string{info.ID}, sessions.IDs())
}

type limitRecordingBoard struct {
	limits []int
}

func (b *limitRecordingBoard) Record(context.Context, domain.Result) error { return nil }

func (b *limitRecordingBoard) Top(_ context.Context, _ string, limit int) ([]domain.ScoreEntry, error) {
	b.limits = append(b.limits, limit)
	return nil, nil
}

func TestLeaderboardLimitIsBounded(t *testing.T) {
	board := &limitRecordingBoard{}
	questions := memory.NewQuestionRepository(content.NewLoader(content.Builtin()), time.Minute)
	service := NewGameService(memory.NewSessionStore(), questions, board)
	ctx := context.Background()

	for _, limit := range []int{0, -3, 7, 100, 101, 1_000_000_000} {
		_, err := service.Leaderboard(ctx, "classic", limit)
		require.NoError(t, err)
	}
	assert.Equal(t, []int{10, 10, 7, 100, 100, 100}, board.limits)
}
