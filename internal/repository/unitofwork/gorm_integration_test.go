package unitofwork

import (
	"context"
	"log"
	"os"
	"testing"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/model"
	"smart-search-be/internal/repository/specification"
	"smart-search-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTurnAndLogRepositories(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	require.NoError(t, err)
	require.NoError(t, gormDB.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error)
	require.NoError(t, gormDB.AutoMigrate(&model.SearchTurn{}, &model.McpLog{}))

	ctx := context.Background()
	factory := NewRepositoryFactory(gormDB)
	sessionId := "it-" + uuid.NewString()
	t.Cleanup(func() {
		gormDB.Where("session_id = ?", sessionId).Delete(&model.SearchTurn{})
		gormDB.Where("session_id = ?", sessionId).Delete(&model.McpLog{})
	})

	t.Run("turns round trip through a transaction", func(t *testing.T) {
		uow := factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		for _, q := range []string{"golang generics", "rust traits", "golang channels"} {
			turn := &entity.SearchTurn{
				Id:            uuid.New(),
				SessionId:     sessionId,
				OriginalQuery: q,
				UsedQuery:     q,
				Provider:      "tavily",
				ResultMeta:    entity.ResultMeta{TopUrls: []string{"https://example.com"}},
			}
			require.NoError(t, uow.SearchTurnRepository().Create(ctx, turn))
		}
		require.NoError(t, uow.Commit())

		repo := factory.NewUnitOfWork(ctx).SearchTurnRepository()
		count, err := repo.Count(ctx, specification.BySessionID{SessionID: sessionId})
		require.NoError(t, err)
		assert.Equal(t, int64(3), count)

		matches, err := repo.FindAll(ctx,
			specification.BySessionID{SessionID: sessionId},
			specification.ByUsedQuery{Query: "GOLANG"},
			specification.OrderBy{Field: "ts", Desc: true},
			specification.Pagination{Limit: 10},
		)
		require.NoError(t, err)
		assert.Len(t, matches, 2)
		assert.Equal(t, []string{"https://example.com"}, matches[0].ResultMeta.TopUrls)

		one, err := repo.FindOne(ctx, specification.ByID{ID: matches[0].Id})
		require.NoError(t, err)
		require.NotNil(t, one)
		assert.Equal(t, sessionId, one.SessionId)

		missing, err := repo.FindOne(ctx, specification.ByID{ID: uuid.New()})
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("rollback discards turns", func(t *testing.T) {
		uow := factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.SearchTurnRepository().Create(ctx, &entity.SearchTurn{
			Id: uuid.New(), SessionId: sessionId, OriginalQuery: "gone", UsedQuery: "gone", Provider: "tavily",
		}))
		require.NoError(t, uow.Rollback())

		count, err := factory.NewUnitOfWork(ctx).SearchTurnRepository().Count(ctx,
			specification.BySessionID{SessionID: sessionId}, specification.ByUsedQuery{Query: "gone"})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("audit log filters", func(t *testing.T) {
		repo := factory.NewUnitOfWork(ctx).McpLogRepository()
		requestId := uuid.NewString()
		for _, level := range []string{"info", "warning", "warning"} {
			require.NoError(t, repo.Create(ctx, &entity.McpLog{
				SessionId: &sessionId,
				RequestId: &requestId,
				Level:     level,
				Message:   "stage",
				Meta:      map[string]interface{}{"event": "search_done"},
			}))
		}

		count, err := repo.Count(ctx, specification.ByRequestID{RequestID: requestId}, specification.ByLevel{Level: "warn"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		logs, err := repo.FindAll(ctx, specification.BySessionID{SessionID: sessionId}, specification.Pagination{Limit: 1})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "search_done", logs[0].Meta["event"])
	})
}
