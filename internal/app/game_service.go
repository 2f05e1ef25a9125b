package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/game"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultPlayer      = "player"
	defaultIdleTTL     = 30 * time.Minute
	recordTimeout      = 5 * time.Second
	defaultBoardLength = 10
	maxBoardLength     = 100
)

// SessionRepository abstracts where live sessions are kept (in-memory, Redis-marked, etc).
type SessionRepository interface {
	Put(id string, controller *game.Controller)
	Get(id string) (*game.Controller, bool)
	// Peek looks a session up without counting as access.
	Peek(id string) (*game.Controller, bool)
	Delete(id string)
	IDs() []string
}

// QuestionRepository loads question sets (from cache/backing store).
type QuestionRepository interface {
	GetQuestionSet(ctx context.Context, setID string) (domain.QuestionSet, error)
}

// ScoreBoard keeps finished results per question set.
type ScoreBoard interface {
	Record(ctx context.Context, result domain.Result) error
	Top(ctx context.Context, setID string, limit int) ([]domain.ScoreEntry, error)
}

// SessionInfo describes a newly created session.
type SessionInfo struct {
	ID            string `json:"sessionId"`
	QuestionSetID string `json:"questionSetId"`
	Title         string `json:"title"`
	Player        string `json:"player"`
	QuestionCount int    `json:"questionCount"`
	MaxScore      int    `json:"maxScore"`
}

// QuestionSetInfo is the public description of a question set. Answers are not included.
type QuestionSetInfo struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	QuestionCount int    `json:"questionCount"`
	MaxScore      int    `json:"maxScore"`
}

// GameService contains the quiz use cases.
type GameService struct {
	sessions  SessionRepository
	questions QuestionRepository
	scores    ScoreBoard

	rules   game.Rules
	clock   game.Clock
	idleTTL time.Duration
	logger  *zap.Logger
	newID   func() string
}

// Option configures a GameService.
type Option func(*GameService)

func WithRules(rules game.Rules) Option {
	return func(s *GameService) { s.rules = rules }
}

// WithClock is mainly for tests that drive time by hand.
func WithClock(clock game.Clock) Option {
	return func(s *GameService) { s.clock = clock }
}

func WithIdleTTL(ttl time.Duration) Option {
	return func(s *GameService) { s.idleTTL = ttl }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *GameService) { s.logger = logger }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *GameService) { s.newID = newID }
}

func NewGameService(sessions SessionRepository, questions QuestionRepository, scores ScoreBoard, opts ...Option) *GameService {
	s := &GameService{
		sessions:  sessions,
		questions: questions,
		scores:    scores,
		rules:     game.DefaultRules(),
		clock:     game.SystemClock{},
		idleTTL:   defaultIdleTTL,
		logger:    zap.NewNop(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QuestionSet describes a set without revealing its answers.
func (s *GameService) QuestionSet(ctx context.Context, setID string) (QuestionSetInfo, error) {
	set, err := s.questions.GetQuestionSet(ctx, setID)
	if err != nil {
		return QuestionSetInfo{}, err
	}
	return QuestionSetInfo{
		ID:            set.ID,
		Title:         set.Title,
		QuestionCount: len(set.Questions),
		MaxScore:      set.MaxScore(),
	}, nil
}

// CreateSession loads a question set and registers an idle session for player.
func (s *GameService) CreateSession(ctx context.Context, setID, player string) (SessionInfo, error) {
	set, err := s.questions.GetQuestionSet(ctx, setID)
	if err != nil {
		return SessionInfo{}, err
	}
	if len(set.Questions) == 0 {
		return SessionInfo{}, fmt.Errorf("%w: %s", domain.ErrEmptyQuestionSet, setID)
	}

	player = strings.TrimSpace(player)
	if player == "" {
		player = defaultPlayer
	}

	id := s.newID()
	controller := game.NewController(id, set,
		game.WithRules(s.rules),
		game.WithClock(s.clock),
		game.WithLogger(s.logger),
		game.WithFinishHook(s.recordResult(set, player)),
	)
	s.sessions.Put(id, controller)
	s.logger.Info("session created",
		zap.String("session_id", id),
		zap.String("question_set", set.ID),
		zap.String("player", player),
	)

	return SessionInfo{
		ID:            id,
		QuestionSetID: set.ID,
		Title:         set.Title,
		Player:        player,
		QuestionCount: len(set.Questions),
		MaxScore:      set.MaxScore(),
	}, nil
}

// Start begins or restarts the session's run.
func (s *GameService) Start(_ context.Context, sessionID string) error {
	controller, err := s.session(sessionID)
	if err != nil {
		return err
	}
	controller.Start()
	return nil
}

// Guess forwards a map click. Clicks outside of play are silently ignored by the controller.
func (s *GameService) Guess(_ context.Context, sessionID string, position domain.Coordinate) error {
	if err := position.Validate(); err != nil {
		return err
	}
	controller, err := s.session(sessionID)
	if err != nil {
		return err
	}
	var listener game.ClickListener = controller
	listener.OnCoordinateClicked(position)
	return nil
}

func (s *GameService) Snapshot(_ context.Context, sessionID string) (game.Snapshot, error) {
	controller, err := s.session(sessionID)
	if err != nil {
		return game.Snapshot{}, err
	}
	return controller.Snapshot(), nil
}

// Subscribe returns a channel of render states for a session.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *GameService) Subscribe(_ context.Context, sessionID string) (<-chan game.Snapshot, func(), error) {
	controller, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := controller.Subscribe()
	return ch, cancel, nil
}

// Close ends a session and forgets it.
func (s *GameService) Close(_ context.Context, sessionID string) error {
	controller, err := s.session(sessionID)
	if err != nil {
		return err
	}
	controller.Close()
	s.sessions.Delete(sessionID)
	s.logger.Info("session closed", zap.String("session_id", sessionID))
	return nil
}

// Leaderboard returns the best finished runs of a question set.
func (s *GameService) Leaderboard(ctx context.Context, setID string, limit int) ([]domain.ScoreEntry, error) {
	switch {
	case limit <= 0:
		limit = defaultBoardLength
	case limit > maxBoardLength:
		limit = maxBoardLength
	}
	return s.scores.Top(ctx, setID, limit)
}

// ReapIdle closes sessions without player activity for longer than the idle TTL.
func (s *GameService) ReapIdle(_ context.Context) int {
	cutoff := s.clock.Now().Add(-s.idleTTL)
	reaped := 0
	for _, id := range s.sessions.IDs() {
		controller, ok := s.sessions.Peek(id)
		if !ok || controller.LastActive().After(cutoff) {
			continue
		}
		controller.Close()
		s.sessions.Delete(id)
		reaped++
	}
	if reaped > 0 {
		s.logger.Info("reaped idle sessions", zap.Int("count", reaped))
	}
	return reaped
}

// RunReaper calls ReapIdle every interval until ctx is done.
func (s *GameService) RunReaper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.ReapIdle(ctx)
		}
	}
}

func (s *GameService) session(sessionID string) (*game.Controller, error) {
	controller, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return controller, nil
}

func (s *GameService) recordResult(set domain.QuestionSet, player string) game.FinishHook {
	return func(final game.Snapshot, at time.Time) {
		result := domain.Result{
			SessionID:     final.SessionID,
			QuestionSetID: set.ID,
			Player:        player,
			Score:         final.Score,
			MaxScore:      final.MaxScore,
			FinishedAt:    at,
		}
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := s.scores.Record(ctx, result); err != nil {
			s.logger.Error("record result failed", zap.String("session_id", result.SessionID), zap.Error(err))
			return
		}
		s.logger.Info("game finished",
			zap.String("session_id", result.SessionID),
			zap.Int("score", result.Score),
			zap.Int("max_score", result.MaxScore),
		)
	}
}
