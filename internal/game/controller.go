package game

import (
	"sync"
	"time"

	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/geo"
	"go.uber.org/zap"
)

// ClickListener receives map clicks from the rendering widget.
type ClickListener interface {
	OnCoordinateClicked(c domain.Coordinate)
}

// QuestionView is the part of a question shown to the player. The answer stays on the server.
type QuestionView struct {
	Text string `json:"text"`
	Hint string `json:"hint"`
}

// Snapshot is the render state pushed to the map widget after every transition.
type Snapshot struct {
	SessionID      string                `json:"sessionId"`
	Status         Status                `json:"status"`
	QuestionNumber int                   `json:"questionNumber"`
	QuestionCount  int                   `json:"questionCount"`
	Question       *QuestionView         `json:"question,omitempty"`
	TimeLeft       int                   `json:"timeLeft"`
	Score          int                   `json:"score"`
	MaxScore       int                   `json:"maxScore"`
	Feedback       *domain.GuessFeedback `json:"feedback,omitempty"`
	AnswerCircle   *domain.Circle        `json:"answerCircle,omitempty"`
	FeedbackCircle *domain.Circle        `json:"feedbackCircle,omitempty"`
}

// FinishHook is called, outside the controller lock, each time a run ends.
type FinishHook func(final Snapshot, at time.Time)

// Option configures a Controller.
type Option func(*Controller)

func WithClock(clock Clock) Option {
	return func(c *Controller) { c.clock = clock }
}

func WithRules(rules Rules) Option {
	return func(c *Controller) { c.rules = rules }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func WithFinishHook(hook FinishHook) Option {
	return func(c *Controller) { c.onFinish = hook }
}

var _ ClickListener = (*Controller)(nil)

// Controller runs one game session. All events are serialised by mu.
type Controller struct {
	id       string
	set      domain.QuestionSet
	rules    Rules
	clock    Clock
	logger   *zap.Logger
	onFinish FinishHook

	mu          sync.Mutex
	state       State
	tick        Timer
	advance     Timer
	lastActive  time.Time
	closed      bool
	subscribers map[chan Snapshot]struct{}
}

// NewController creates an idle session over set.
func NewController(id string, set domain.QuestionSet, opts ...Option) *Controller {
	c := &Controller{
		id:          id,
		set:         set,
		rules:       DefaultRules(),
		clock:       SystemClock{},
		logger:      zap.NewNop(),
		state:       State{Status: StatusIdle},
		subscribers: make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.lastActive = c.clock.Now()
	return c
}

func (c *Controller) ID() string { return c.id }

// QuestionSet returns the set this session plays.
func (c *Controller) QuestionSet() domain.QuestionSet { return c.set }

// Start begins a run. Calling it again restarts from the first question.
func (c *Controller) Start() {
	c.dispatch(Start{}, true)
}

// SubmitGuess scores a guess for the current question. It is a no-op outside of play.
func (c *Controller) SubmitGuess(position domain.Coordinate) {
	c.dispatch(Guess{Position: position}, true)
}

func (c *Controller) OnCoordinateClicked(position domain.Coordinate) {
	c.SubmitGuess(position)
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	if s.Feedback != nil {
		fb := *s.Feedback
		s.Feedback = &fb
	}
	return s
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// LastActive is the time of the last player action.
func (c *Controller) LastActive() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActive
}

// Subscribe returns a channel of snapshots, starting with the current one.
// The caller must invoke the returned cancel function to avoid leaks.
func (c *Controller) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 8)

	c.mu.Lock()
	// the buffer is empty, so this send cannot block and precedes any broadcast
	ch <- c.snapshotLocked()
	if c.closed {
		c.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	c.subscribers[ch] = struct{}{}
	c.mu.Unlock()

	cancel := func() {
		c.mu.Lock()
		if _, ok := c.subscribers[ch]; ok {
			delete(c.subscribers, ch)
			close(ch)
		}
		c.mu.Unlock()
	}
	return ch, cancel
}

// Close stops pending timers and disconnects subscribers. Later events are ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	stopTimer(&c.tick)
	stopTimer(&c.advance)
	for ch := range c.subscribers {
		delete(c.subscribers, ch)
		close(ch)
	}
}

func (c *Controller) dispatch(ev Event, fromPlayer bool) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if fromPlayer {
		c.lastActive = c.clock.Now()
	}

	prev := c.state
	next, effects := Reduce(c.rules, c.set.Questions, prev, ev)
	if len(effects) == 0 {
		c.mu.Unlock()
		return
	}
	c.state = next
	for _, e := range effects {
		c.applyLocked(e)
	}

	snap := c.snapshotLocked()
	c.broadcastLocked(snap)
	if prev.Status != next.Status {
		c.logger.Debug("game transition",
			zap.String("session_id", c.id),
			zap.String("from", string(prev.Status)),
			zap.String("to", string(next.Status)),
			zap.Int("score", next.Score),
		)
	}

	finished := prev.Status != StatusFinished && next.Status == StatusFinished
	hook := c.onFinish
	at := c.clock.Now()
	c.mu.Unlock()

	if finished && hook != nil {
		hook(snap, at)
	}
}

func (c *Controller) applyLocked(e Effect) {
	gen := e.Generation
	switch e.Kind {
	case CancelTimers:
		stopTimer(&c.tick)
		stopTimer(&c.advance)
	case ScheduleTick:
		stopTimer(&c.tick)
		c.tick = c.clock.AfterFunc(e.Delay, func() { c.dispatch(Tick{Generation: gen}, false) })
	case ScheduleAdvance:
		stopTimer(&c.advance)
		c.advance = c.clock.AfterFunc(e.Delay, func() { c.dispatch(Advance{Generation: gen}, false) })
	}
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	s := c.state
	snap := Snapshot{
		SessionID:     c.id,
		Status:        s.Status,
		QuestionCount: len(c.set.Questions),
		TimeLeft:      s.TimeLeft,
		Score:         s.Score,
		MaxScore:      c.set.MaxScore(),
	}
	if s.Status == StatusIdle || s.Index >= len(c.set.Questions) {
		return snap
	}
	snap.QuestionNumber = s.Index + 1
	if s.Status != StatusPlaying {
		return snap
	}

	q := c.set.Questions[s.Index]
	snap.Question = &QuestionView{Text: q.Text, Hint: q.Hint}
	if s.Feedback != nil {
		fb := *s.Feedback
		answer := geo.AnswerCircle(q.Answer)
		guess := geo.FeedbackCircle(fb)
		snap.Feedback = &fb
		snap.AnswerCircle = &answer
		snap.FeedbackCircle = &guess
	}
	return snap
}

func (c *Controller) broadcastLocked(snap Snapshot) {
	for ch := range c.subscribers {
		select {
		case ch <- snap:
		default:
			// slow subscriber: replace the oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
