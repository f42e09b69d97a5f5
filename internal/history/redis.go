package history

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"footagelens/internal/models"
)

// Store keeps per-video analysis context and conversation turns in Redis
// with a TTL, so /conversation can answer with history even though each
// client call is stateless.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore builds a Redis-backed conversation history store.
func NewStore(addr, password string, ttl time.Duration) *Store {
	return &Store{
		client: redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
		}),
		ttl: ttl,
	}
}

func analysisKey(videoID string) string {
	return "footage:analysis:" + videoID
}

func turnsKey(videoID string) string {
	return "footage:turns:" + videoID
}

// SeedAnalysis records the analysis text a conversation about videoID will
// be grounded on. Any previous thread for the id is dropped.
func (s *Store) SeedAnalysis(ctx context.Context, videoID, analysis string) error {
	if err := s.client.Set(ctx, analysisKey(videoID), analysis, s.ttl).Err(); err != nil {
		return fmt.Errorf("seed analysis: %w", err)
	}
	if err := s.client.Del(ctx, turnsKey(videoID)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("reset turns: %w", err)
	}
	return nil
}

// Analysis returns the stored analysis for videoID, reporting whether the
// id is known.
func (s *Store) Analysis(ctx context.Context, videoID string) (string, bool, error) {
	val, err := s.client.Get(ctx, analysisKey(videoID)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get analysis: %w", err)
	}
	return val, true, nil
}

// AppendTurn appends one turn to videoID's thread and refreshes the TTL.
func (s *Store) AppendTurn(ctx context.Context, videoID string, turn models.ConversationTurn) error {
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	key := turnsKey(videoID)
	if err := s.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
		return fmt.Errorf("refresh ttl: %w", err)
	}
	return nil
}

// Turns returns up to limit of the most recent turns for videoID, oldest
// first. limit <= 0 returns the whole thread.
func (s *Store) Turns(ctx context.Context, videoID string, limit int) ([]models.ConversationTurn, error) {
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := s.client.LRange(ctx, turnsKey(videoID), start, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("read turns: %w", err)
	}

	turns := make([]models.ConversationTurn, 0, len(raw))
	for _, entry := range raw {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
