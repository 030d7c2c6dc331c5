package memory

import (
	"context"
	"time"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// StateRepository keeps search state in process memory. Contents are lost on restart.
type StateRepository struct {
	cache *cache.Cache
}

var _ contract.SearchStateRepository = &StateRepository{}

// NewStateRepository creates the store. ttl <= 0 keeps sessions until cleared.
func NewStateRepository(ttl time.Duration) *StateRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
		if ttl < cleanup {
			cleanup = ttl
		}
	}
	return &StateRepository{
		cache: cache.New(expiration, cleanup),
	}
}

func (r *StateRepository) Get(_ context.Context, sessionId string) (*entity.SearchState, bool) {
	if x, found := r.cache.Get(sessionId); found {
		return x.(*entity.SearchState).Clone(), true
	}
	return nil, false
}

func (r *StateRepository) Set(_ context.Context, state *entity.SearchState) error {
	r.cache.Set(state.SessionId, state.Clone(), cache.DefaultExpiration)
	return nil
}

func (r *StateRepository) Clear(_ context.Context, sessionId string) error {
	r.cache.Delete(sessionId)
	return nil
}

// Sessions returns the ids currently held.
func (r *StateRepository) Sessions() []string {
	items := r.cache.Items()
	ids := make([]string, 0, len(items))
	for k := range items {
		ids = append(ids, k)
	}
	return ids
}
