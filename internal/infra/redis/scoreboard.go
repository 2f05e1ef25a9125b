package redis

import (
	"context"
	"fmt"

	"geo-quiz-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ScoreBoard keeps the best score per session in a sorted set per question set,
// with player names in a companion hash:
//
//	ZADD scores:{setID} GT {score} {sessionID}
//	HSET scores:{setID}:players {sessionID} {player}
type ScoreBoard struct {
	client *redis.Client
}

func NewScoreBoard(client *redis.Client) *ScoreBoard {
	return &ScoreBoard{client: client}
}

func (b *ScoreBoard) Record(ctx context.Context, result domain.Result) error {
	pipe := b.client.TxPipeline()
	pipe.ZAddGT(ctx, b.scoresKey(result.QuestionSetID), redis.Z{
		Score:  float64(result.Score),
		Member: result.SessionID,
	})
	pipe.HSet(ctx, b.playersKey(result.QuestionSetID), result.SessionID, result.Player)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record result: %w", err)
	}
	return nil
}

func (b *ScoreBoard) Top(ctx context.Context, setID string, limit int) ([]domain.ScoreEntry, error) {
	rows, err := b.client.ZRevRangeWithScores(ctx, b.scoresKey(setID), 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read scores: %w", err)
	}
	if len(rows) == 0 {
		return []domain.ScoreEntry{}, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, fmt.Sprint(row.Member))
	}
	names, err := b.client.HMGet(ctx, b.playersKey(setID), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("read players: %w", err)
	}

	entries := make([]domain.ScoreEntry, 0, len(rows))
	for i, row := range rows {
		player, _ := names[i].(string)
		entries = append(entries, domain.ScoreEntry{
			SessionID: ids[i],
			Player:    player,
			Score:     int(row.Score),
		})
	}
	return entries, nil
}

func (b *ScoreBoard) scoresKey(setID string) string {
	return "scores:" + setID
}

func (b *ScoreBoard) playersKey(setID string) string {
	return "scores:" + setID + ":players"
}
