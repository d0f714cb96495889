package repository

import (
	"context"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"gorm.io/gorm"
)

type GiftRepository interface {
	Create(ctx context.Context, g *model.Gift) error
	Delete(ctx context.Context, id uint64) (int64, error)
	List(ctx context.Context) ([]model.Gift, error)
	SetDB(db *gorm.DB)
}

type giftRepository struct {
	db *gorm.DB
}

func NewGiftRepository(db *gorm.DB) GiftRepository {
	return &giftRepository{db: db}
}

func (r *giftRepository) Create(ctx context.Context, g *model.Gift) error {
	return r.db.WithContext(ctx).Create(g).Error
}

func (r *giftRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	res := r.db.WithContext(ctx).Delete(&model.Gift{}, id)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *giftRepository) List(ctx context.Context) ([]model.Gift, error) {
	var list []model.Gift
	if err := r.db.WithContext(ctx).Order("points_required ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *giftRepository) SetDB(db *gorm.DB) {
	r.db = db
}
