package implementation

import (
	"context"
	"errors"

	"smart-search-be/internal/entity"
	"smart-search-be/internal/mapper"
	"smart-search-be/internal/model"
	"smart-search-be/internal/repository/contract"
	"smart-search-be/internal/repository/specification"

	"gorm.io/gorm"
)

type SearchTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SearchMapper
}

func NewSearchTurnRepository(db *gorm.DB) contract.SearchTurnRepository {
	return &SearchTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewSearchMapper(),
	}
}

func applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SearchTurnRepositoryImpl) Create(ctx context.Context, turn *entity.SearchTurn) error {
	m := r.mapper.SearchTurnToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	turn.Id = m.Id
	return nil
}

func (r *SearchTurnRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.SearchTurn, error) {
	var m model.SearchTurn
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SearchTurnToEntity(&m), nil
}

func (r *SearchTurnRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.SearchTurn, error) {
	var models []*model.SearchTurn
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SearchTurnsToEntities(models), nil
}

func (r *SearchTurnRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := applySpecifications(r.db.WithContext(ctx).Model(&model.SearchTurn{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
