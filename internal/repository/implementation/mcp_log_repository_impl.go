package implementation

import (
	"context"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/mapper"
	"smart-search-be/internal/model"
	"smart-search-be/internal/repository/contract"
	"smart-search-be/internal/repository/specification"

	"gorm.io/gorm"
)

type McpLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SearchMapper
}

func NewMcpLogRepository(db *gorm.DB) contract.McpLogRepository {
	return &McpLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewSearchMapper(),
	}
}

func (r *McpLogRepositoryImpl) Create(ctx context.Context, log *entity.McpLog) error {
	m := r.mapper.McpLogToModel(log)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	log.Id = m.Id
	return nil
}

func (r *McpLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.McpLog, error) {
	var models []*model.McpLog
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.McpLogsToEntities(models), nil
}

func (r *McpLogRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.McpLog{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
