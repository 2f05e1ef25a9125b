// Package game implements the quiz state machine.
//
// Reduce is a pure transition function. Controller owns the single State of a session, feeds it events
// and turns the returned effects into timers. Every transition that supersedes pending timers bumps
// State.Generation; timer callbacks carry the generation they were armed for and are dropped when stale.
package game

import (
	"time"

	"geo-quiz-service/internal/domain"
	"geo-quiz-service/internal/geo"
)

// Status is the lifecycle phase of a session.
type Status string

const (
	StatusIdle     Status = "idle"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

// Rules holds the timing constants of a game.
type Rules struct {
	QuestionSeconds int
	TickInterval    time.Duration
	RevealDelay     time.Duration
}

// DefaultRules gives each question 60 seconds and shows feedback for 2 seconds.
func DefaultRules() Rules {
	return Rules{
		QuestionSeconds: 60,
		TickInterval:    time.Second,
		RevealDelay:     2 * time.Second,
	}
}

// State is the complete game state of one session.
type State struct {
	Status     Status
	Index      int
	TimeLeft   int
	Score      int
	Feedback   *domain.GuessFeedback
	Generation uint64
}

// Event is an input to Reduce.
type Event interface {
	isEvent()
}

// Start begins a new run, from any status.
type Start struct{}

// Tick is one elapsed timer interval, armed for Generation.
type Tick struct{ Generation uint64 }

// Guess is a map click.
type Guess struct{ Position domain.Coordinate }

// Advance moves past the displayed feedback, armed for Generation.
type Advance struct{ Generation uint64 }

func (Start) isEvent()   {}
func (Tick) isEvent()    {}
func (Guess) isEvent()   {}
func (Advance) isEvent() {}

// EffectKind names a scheduling side effect.
type EffectKind int

const (
	// CancelTimers stops the pending tick and advance.
	CancelTimers EffectKind = iota
	// ScheduleTick arms the next tick, replacing any pending one.
	ScheduleTick
	// ScheduleAdvance arms the post-guess advance, replacing any pending one.
	ScheduleAdvance
)

// Effect asks the caller to change its timers.
type Effect struct {
	Kind       EffectKind
	Delay      time.Duration
	Generation uint64
}

// Reduce applies ev to s. Events that do not apply to the current state return s unchanged and no effects.
func Reduce(rules Rules, questions []domain.Question, s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Start:
		return start(rules, questions, s)
	case Tick:
		return tick(rules, s, ev)
	case Guess:
		return guess(rules, questions, s, ev)
	case Advance:
		return advance(rules, questions, s, ev)
	}
	return s, nil
}

func start(rules Rules, questions []domain.Question, s State) (State, []Effect) {
	next := State{Generation: s.Generation + 1}
	if len(questions) == 0 {
		next.Status = StatusFinished
		return next, []Effect{{Kind: CancelTimers}}
	}
	next.Status = StatusPlaying
	next.TimeLeft = rules.QuestionSeconds
	return next, []Effect{
		{Kind: CancelTimers},
		{Kind: ScheduleTick, Delay: rules.TickInterval, Generation: next.Generation},
	}
}

func tick(rules Rules, s State, ev Tick) (State, []Effect) {
	if s.Status != StatusPlaying || ev.Generation != s.Generation {
		return s, nil
	}
	s.TimeLeft--
	if s.TimeLeft <= 0 {
		return finish(s), []Effect{{Kind: CancelTimers}}
	}
	return s, []Effect{{Kind: ScheduleTick, Delay: rules.TickInterval, Generation: s.Generation}}
}

func guess(rules Rules, questions []domain.Question, s State, ev Guess) (State, []Effect) {
	// a guess during feedback scores too and re-arms the advance it supersedes
	if s.Status != StatusPlaying || s.Index >= len(questions) {
		return s, nil
	}
	fb := geo.Feedback(ev.Position, questions[s.Index].Answer)
	s.Score += fb.Points
	s.Feedback = &fb
	return s, []Effect{{Kind: ScheduleAdvance, Delay: rules.RevealDelay, Generation: s.Generation}}
}

func advance(rules Rules, questions []domain.Question, s State, ev Advance) (State, []Effect) {
	if s.Status != StatusPlaying || ev.Generation != s.Generation {
		return s, nil
	}
	if s.Index+1 >= len(questions) {
		return finish(s), []Effect{{Kind: CancelTimers}}
	}
	s.Index++
	s.TimeLeft = rules.QuestionSeconds
	s.Feedback = nil
	s.Generation++
	return s, []Effect{
		{Kind: CancelTimers},
		{Kind: ScheduleTick, Delay: rules.TickInterval, Generation: s.Generation},
	}
}

func finish(s State) State {
	s.Status = StatusFinished
	s.TimeLeft = max(s.TimeLeft, 0)
	s.Feedback = nil
	s.Generation++
	return s
}
