package memory

import (
	"context"
	"sort"
	"sync"

	"geo-quiz-service/internal/domain"
)

// ScoreBoard keeps the best result of every session, per question set.
type ScoreBoard struct {
	mu      sync.RWMutex
	results map[string]map[string]domain.Result
}

func NewScoreBoard() *ScoreBoard {
	return &ScoreBoard{results: make(map[string]map[string]domain.Result)}
}

func (b *ScoreBoard) Record(_ context.Context, result domain.Result) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.results[result.QuestionSetID]
	if !ok {
		set = make(map[string]domain.Result)
		b.results[result.QuestionSetID] = set
	}
	if prev, ok := set[result.SessionID]; ok && prev.Score >= result.Score {
		return nil
	}
	set[result.SessionID] = result
	return nil
}

// Top orders by score desc, then who finished earlier, then player name.
func (b *ScoreBoard) Top(_ context.Context, setID string, limit int) ([]domain.ScoreEntry, error) {
	b.mu.RLock()
	results := make([]domain.Result, 0, len(b.results[setID]))
	for _, r := range b.results[setID] {
		results = append(results, r)
	}
	b.mu.RUnlock()

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].FinishedAt.Equal(results[j].FinishedAt) {
			return results[i].FinishedAt.Before(results[j].FinishedAt)
		}
		return results[i].Player < results[j].Player
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	entries := make([]domain.ScoreEntry, 0, len(results))
	for _, r := range results {
		entries = append(entries, domain.ScoreEntry{SessionID: r.SessionID, Player: r.Player, Score: r.Score})
	}
	return entries, nil
}
