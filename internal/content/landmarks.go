// Package content holds the built-in question sets and a loader that serves them.
package content

import (
	"context"

	"geo-quiz-service/internal/domain"
)

// DefaultSetID is played when a client does not name a question set.
const DefaultSetID = "world-landmarks"

// Builtin returns the question sets shipped with the service.
func Builtin() map[string]domain.QuestionSet {
	return map[string]domain.QuestionSet{
		DefaultSetID: {
			ID:    DefaultSetID,
			Title: "World landmarks",
			Questions: []domain.Question{
				{ID: "eiffel-tower", Text: "Where is the Eiffel Tower?", Answer: domain.Coordinate{Lat: 48.8584, Lng: 2.2945}, Hint: "Capital of France"},
				{ID: "statue-of-liberty", Text: "Where is the Statue of Liberty?", Answer: domain.Coordinate{Lat: 40.6892, Lng: -74.0445}, Hint: "Largest city in the USA"},
				{ID: "colosseum", Text: "Where is the Colosseum?", Answer: domain.Coordinate{Lat: 41.8902, Lng: 12.4922}, Hint: "Capital of Italy"},
				{ID: "sydney-opera-house", Text: "Where is the Sydney Opera House?", Answer: domain.Coordinate{Lat: -33.8568, Lng: 151.2153}, Hint: "Largest city in Australia"},
				{ID: "machu-picchu", Text: "Where is Machu Picchu?", Answer: domain.Coordinate{Lat: -13.1631, Lng: -72.5450}, Hint: "Andes of Peru"},
			},
		},
		"classic": {
			ID:    "classic",
			Title: "Classic",
			Questions: []domain.Question{
				{ID: "eiffel-tower", Text: "Where is the Eiffel Tower?", Answer: domain.Coordinate{Lat: 48.8584, Lng: 2.2945}, Hint: "Capital of France"},
				{ID: "statue-of-liberty", Text: "Where is the Statue of Liberty?", Answer: domain.Coordinate{Lat: 40.6892, Lng: -74.0445}, Hint: "Largest city in the USA"},
			},
		},
	}
}

// Loader serves question sets from an in-memory map (built-in content, tests, demos).
type Loader struct {
	sets map[string]domain.QuestionSet
}

func NewLoader(sets map[string]domain.QuestionSet) *Loader {
	return &Loader{sets: sets}
}

func (l *Loader) LoadQuestionSet(_ context.Context, setID string) (domain.QuestionSet, error) {
	if set, ok := l.sets[setID]; ok {
		return set, nil
	}
	return domain.QuestionSet{}, domain.ErrQuestionSetNotFound
}
