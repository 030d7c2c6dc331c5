package redisstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/pkg/logger"
	"smart-search-be/internal/repository/contract"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "smart_search:state:"

// StateRepository stores search state as JSON under one key per session so
// several API instances can share it.
type StateRepository struct {
	rdb    redis.UniversalClient
	ttl    time.Duration
	logger logger.ILogger
}

var _ contract.SearchStateRepository = &StateRepository{}

// NewStateRepository wraps rdb. ttl <= 0 stores keys without expiry.
func NewStateRepository(rdb redis.UniversalClient, ttl time.Duration, log logger.ILogger) *StateRepository {
	return &StateRepository{rdb: rdb, ttl: ttl, logger: log}
}

func Key(sessionId string) string {
	return keyPrefix + sessionId
}

// Get reports absent on any redis or decode failure; the failure is logged.
func (r *StateRepository) Get(ctx context.Context, sessionId string) (*entity.SearchState, bool) {
	raw, err := r.rdb.Get(ctx, Key(sessionId)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Error("StateStore", "redis get failed", map[string]interface{}{"session_id": sessionId, "error": err})
		}
		return nil, false
	}

	var st entity.SearchState
	if err := json.Unmarshal(raw, &st); err != nil {
		r.logger.Error("StateStore", "corrupt session state", map[string]interface{}{"session_id": sessionId, "error": err})
		return nil, false
	}
	if st.Turns == nil {
		st.Turns = []entity.SearchTurn{}
	}
	if st.UserNotes == nil {
		st.UserNotes = map[string]interface{}{}
	}
	return &st, true
}

func (r *StateRepository) Set(ctx context.Context, state *entity.SearchState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}
	if err := r.rdb.Set(ctx, Key(state.SessionId), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", state.SessionId, err)
	}
	return nil
}

func (r *StateRepository) Clear(ctx context.Context, sessionId string) error {
	if err := r.rdb.Del(ctx, Key(sessionId)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", sessionId, err)
	}
	return nil
}
