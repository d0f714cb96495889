package repository

import (
	"context"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChannelRepository interface {
	Upsert(ctx context.Context, ch *model.Channel) error
	Delete(ctx context.Context, chatID string) (int64, error)
	List(ctx context.Context) ([]model.Channel, error)
	SetDB(db *gorm.DB)
}

type channelRepository struct {
	db *gorm.DB
}

func NewChannelRepository(db *gorm.DB) ChannelRepository {
	return &channelRepository{db: db}
}

func (r *channelRepository) Upsert(ctx context.Context, ch *model.Channel) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "invite_link"}),
	}).Create(ch).Error
}

func (r *channelRepository) Delete(ctx context.Context, chatID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&model.Channel{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *channelRepository) List(ctx context.Context) ([]model.Channel, error) {
	var list []model.Channel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *channelRepository) SetDB(db *gorm.DB) {
	r.db = db
}
