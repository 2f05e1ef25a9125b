package game

import (
	"testing"

	"geo-quiz-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	eiffelTower     = domain.Coordinate{Lat: 48.8584, Lng: 2.2945}
	statueOfLiberty = domain.Coordinate{Lat: 40.6892, Lng: -74.0445}
)

func landmarks() []domain.Question {
	return []domain.Question{
		{ID: "eiffel", Text: "Where is the Eiffel Tower?", Answer: eiffelTower, Hint: "Capital of France"},
		{ID: "liberty", Text: "Where is the Statue of Liberty?", Answer: statueOfLiberty, Hint: "Largest city in the USA"},
	}
}

func started(t *testing.T) State {
	t.Helper()
	s, effects := Reduce(DefaultRules(), landmarks(), State{Status: StatusIdle}, Start{})
	require.Len(t, effects, 2)
	return s
}

func TestReduceStart(t *testing.T) {
	s, effects := Reduce(DefaultRules(), landmarks(), State{Status: StatusIdle}, Start{})

	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 60, s.TimeLeft)
	assert.Equal(t, 0, s.Score)
	assert.Nil(t, s.Feedback)
	assert.Equal(t, []Effect{
		{Kind: CancelTimers},
		{Kind: ScheduleTick, Delay: DefaultRules().TickInterval, Generation: s.Generation},
	}, effects)
}

func TestReduceStartResetsFinishedGame(t *testing.T) {
	finished := State{Status: StatusFinished, Index: 1, Score: 150, Generation: 7}

	s, _ := Reduce(DefaultRules(), landmarks(), finished, Start{})

	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, 60, s.TimeLeft)
	assert.Greater(t, s.Generation, finished.Generation)
}

func TestReduceStartWithoutQuestionsFinishes(t *testing.T) {
	s, effects := Reduce(DefaultRules(), nil, State{Status: StatusIdle}, Start{})

	assert.Equal(t, StatusFinished, s.Status)
	assert.Equal(t, 0, s.Score)
	assert.Equal(t, []Effect{{Kind: CancelTimers}}, effects)
}

func TestReduceGuessScoresAndSchedulesAdvance(t *testing.T) {
	s := started(t)

	next, effects := Reduce(DefaultRules(), landmarks(), s, Guess{Position: eiffelTower})

	require.NotNil(t, next.Feedback)
	assert.Equal(t, 1.0, next.Feedback.Accuracy)
	assert.Equal(t, 100, next.Feedback.Points)
	assert.Equal(t, domain.BucketHigh, next.Feedback.Bucket)
	assert.Equal(t, eiffelTower, next.Feedback.Position)
	assert.Equal(t, 100, next.Score)
	assert.Equal(t, []Effect{{Kind: ScheduleAdvance, Delay: DefaultRules().RevealDelay, Generation: s.Generation}}, effects)
}

func TestReduceFarGuessScoresZero(t *testing.T) {
	s := started(t)

	next, _ := Reduce(DefaultRules(), landmarks(), s, Guess{Position: domain.Coordinate{Lat: 0, Lng: 0}})

	require.NotNil(t, next.Feedback)
	assert.Equal(t, 0.0, next.Feedback.Accuracy)
	assert.Equal(t, 0, next.Score)
	assert.Equal(t, domain.BucketLow, next.Feedback.Bucket)
}

func TestReduceIgnoresOutOfSequenceEvents(t *testing.T) {
	idle := State{Status: StatusIdle}
	finished := State{Status: StatusFinished, Score: 40, Index: 1, Generation: 3}

	for _, s := range []State{idle, finished} {
		for _, ev := range []Event{Guess{Position: eiffelTower}, Tick{Generation: s.Generation}, Advance{Generation: s.Generation}} {
			next, effects := Reduce(DefaultRules(), landmarks(), s, ev)
			assert.Equal(t, s, next, "event %#v in %s", ev, s.Status)
			assert.Empty(t, effects)
		}
	}
}

func TestReduceSecondGuessScoresAndRearmsAdvance(t *testing.T) {
	s := started(t)
	s, _ = Reduce(DefaultRules(), landmarks(), s, Guess{Position: domain.Coordinate{Lat: 0, Lng: 0}})
	require.Equal(t, 0, s.Score)

	next, effects := Reduce(DefaultRules(), landmarks(), s, Guess{Position: eiffelTower})

	assert.Equal(t, StatusPlaying, next.Status)
	assert.Equal(t, 100, next.Score)
	require.NotNil(t, next.Feedback)
	assert.Equal(t, eiffelTower, next.Feedback.Position)
	assert.Equal(t, 1.0, next.Feedback.Accuracy)
	assert.Equal(t, s.Generation, next.Generation)
	assert.Equal(t, []Effect{{Kind: ScheduleAdvance, Delay: DefaultRules().RevealDelay, Generation: s.Generation}}, effects)
}

func TestReduceTickCountsDown(t *testing.T) {
	s := started(t)

	next, effects := Reduce(DefaultRules(), landmarks(), s, Tick{Generation: s.Generation})

	assert.Equal(t, 59, next.TimeLeft)
	assert.Equal(t, []Effect{{Kind: ScheduleTick, Delay: DefaultRules().TickInterval, Generation: s.Generation}}, effects)
}

func TestReduceStaleTickIsDropped(t *testing.T) {
	s := started(t)

	next, effects := Reduce(DefaultRules(), landmarks(), s, Tick{Generation: s.Generation - 1})

	assert.Equal(t, s, next)
	assert.Empty(t, effects)
}

func TestReduceTimeoutFinishesWithScoreUnchanged(t *testing.T) {
	s := started(t)
	s.TimeLeft = 1
	s.Score = 42

	next, effects := Reduce(DefaultRules(), landmarks(), s, Tick{Generation: s.Generation})

	assert.Equal(t, StatusFinished, next.Status)
	assert.Equal(t, 0, next.TimeLeft)
	assert.Equal(t, 42, next.Score)
	assert.Equal(t, []Effect{{Kind: CancelTimers}}, effects)
}

func TestReduceTimeoutDuringFeedbackDropsAdvance(t *testing.T) {
	s := started(t)
	s.TimeLeft = 1
	s, _ = Reduce(DefaultRules(), landmarks(), s, Guess{Position: eiffelTower})
	armedFor := s.Generation

	s, _ = Reduce(DefaultRules(), landmarks(), s, Tick{Generation: s.Generation})
	require.Equal(t, StatusFinished, s.Status)
	assert.Nil(t, s.Feedback)

	next, effects := Reduce(DefaultRules(), landmarks(), s, Advance{Generation: armedFor})
	assert.Equal(t, s, next)
	assert.Empty(t, effects)
}

func TestReduceAdvanceMovesToNextQuestion(t *testing.T) {
	s := started(t)
	s.TimeLeft = 12
	s, _ = Reduce(DefaultRules(), landmarks(), s, Guess{Position: eiffelTower})

	next, effects := Reduce(DefaultRules(), landmarks(), s, Advance{Generation: s.Generation})

	assert.Equal(t, StatusPlaying, next.Status)
	assert.Equal(t, 1, next.Index)
	assert.Equal(t, 60, next.TimeLeft)
	assert.Nil(t, next.Feedback)
	assert.Equal(t, 100, next.Score)
	assert.Equal(t, s.Generation+1, next.Generation)
	assert.Equal(t, []Effect{
		{Kind: CancelTimers},
		{Kind: ScheduleTick, Delay: DefaultRules().TickInterval, Generation: next.Generation},
	}, effects)
}

func TestReduceAdvanceAfterLastQuestionFinishes(t *testing.T) {
	s := started(t)
	s.Index = 1
	s, _ = Reduce(DefaultRules(), landmarks(), s, Guess{Position: statueOfLiberty})

	next, effects := Reduce(DefaultRules(), landmarks(), s, Advance{Generation: s.Generation})

	assert.Equal(t, StatusFinished, next.Status)
	assert.Equal(t, 100, next.Score)
	assert.Nil(t, next.Feedback)
	assert.Equal(t, []Effect{{Kind: CancelTimers}}, effects)

	restarted, _ := Reduce(DefaultRules(), landmarks(), next, Start{})
	assert.Equal(t, StatusPlaying, restarted.Status)
	assert.Equal(t, 0, restarted.Index)
	assert.Equal(t, 0, restarted.Score)
	assert.Equal(t, 60, restarted.TimeLeft)
}

func TestReduceRestartDropsPendingAdvance(t *testing.T) {
	s := started(t)
	s, _ = Reduce(DefaultRules(), landmarks(), s, Guess{Position: eiffelTower})
	armedFor := s.Generation

	s, _ = Reduce(DefaultRules(), landmarks(), s, Start{})
	next, effects := Reduce(DefaultRules(), landmarks(), s, Advance{Generation: armedFor})

	assert.Equal(t, s, next)
	assert.Empty(t, effects)
	assert.Equal(t, 0, next.Index)
}
