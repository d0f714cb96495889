package repository

import (
	"context"
	"errors"
	"time"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LeaderboardEntry is one row of the points rating, heaviest first.
type LeaderboardEntry struct {
	TelegramID int64  `json:"telegram_id"`
	FullName   string `json:"full_name"`
	Points     int    `json:"points"`
}

// ResetCounts reports the user-row count around a full reset. The two
// numbers must match: a reset zeroes counters but never drops users.
type ResetCounts struct {
	UsersBefore int64 `json:"users_before"`
	UsersAfter  int64 `json:"users_after"`
}

type LedgerRepository interface {
	// UpsertUser creates the user on first contact (referrer recorded only
	// then, self-reference ignored) and refreshes username/full name on
	// later contacts. Returns whether a new row was created.
	UpsertUser(ctx context.Context, id int64, username, fullName string, referrerID *int64) (bool, error)
	GetUser(ctx context.Context, id int64) (*model.User, error)

	// ActiveEpoch returns the running contest epoch, lazily creating one.
	ActiveEpoch(ctx context.Context) (*model.ContestEpoch, error)
	ActiveEpochID(ctx context.Context) (uint64, error)

	// TryRecordChannelAward inserts the (user, channel, epoch) award record
	// and increments the balance in one transaction. Returns false without
	// any mutation when the record already exists. This is the sole
	// idempotency gate for channel points.
	TryRecordChannelAward(ctx context.Context, userID int64, channelID string, epochID uint64, points int) (bool, error)

	// TryRecordReferralAward does the same keyed on (referrer, referred),
	// incrementing the referrer's balance and referral count.
	TryRecordReferralAward(ctx context.Context, referrerID, referredID int64, points int) (bool, error)

	HasChannelAward(ctx context.Context, userID int64, channelID string, epochID uint64) (bool, error)

	// StartNewEpoch ends the running epoch, opens a fresh one, zeroes every
	// balance and referral count and purges channel awards so joins can be
	// re-credited. Referral awards stay: that credit is lifetime.
	StartNewEpoch(ctx context.Context) (uint64, error)

	// ResetAll wipes balances, awards, channels, gifts and epoch history,
	// then opens a fresh epoch. User rows are preserved.
	ResetAll(ctx context.Context) (ResetCounts, error)

	ListTop(ctx context.Context, n int) ([]LeaderboardEntry, error)
	Rank(ctx context.Context, userID int64) (int64, error)
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListSeenSince(ctx context.Context, since time.Time) ([]int64, error)
	SetDB(db *gorm.DB)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) UpsertUser(ctx context.Context, id int64, username, fullName string, referrerID *int64) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		u := model.User{TelegramID: id, Username: username, FullName: fullName}
		if referrerID != nil && *referrerID != id {
			u.ReferrerID = referrerID
		}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "telegram_id"}},
			DoNothing: true,
		}).Create(&u)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			created = true
			return nil
		}
		// Existing user: identity refresh only, referrer stays as recorded.
		// Triggers without profile data must not blank stored names.
		updates := map[string]interface{}{}
		if username != "" {
			updates["username"] = username
		}
		if fullName != "" {
			updates["full_name"] = fullName
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&model.User{}).
			Where("telegram_id = ?", id).
			Updates(updates).Error
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *ledgerRepository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Where("telegram_id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ledgerRepository) ActiveEpoch(ctx context.Context) (*model.ContestEpoch, error) {
	var ep model.ContestEpoch
	err := r.db.WithContext(ctx).Where("active = ?", true).First(&ep).Error
	if err == nil {
		return &ep, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	active := true
	ep = model.ContestEpoch{Active: &active}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "active"}},
		DoNothing: true,
	}).Create(&ep)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// Lost the creation race; the winner's epoch is the active one.
		if err := r.db.WithContext(ctx).Where("active = ?", true).First(&ep).Error; err != nil {
			return nil, err
		}
	}
	return &ep, nil
}

func (r *ledgerRepository) ActiveEpochID(ctx context.Context) (uint64, error) {
	ep, err := r.ActiveEpoch(ctx)
	if err != nil {
		return 0, err
	}
	return ep.ID, nil
}

func (r *ledgerRepository) TryRecordChannelAward(ctx context.Context, userID int64, channelID string, epochID uint64, points int) (bool, error) {
	credited := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		award := model.ChannelAward{UserID: userID, ChannelID: channelID, EpochID: epochID, Points: points}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "channel_id"}, {Name: "epoch_id"}},
			DoNothing: true,
		}).Create(&award)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		credited = true
		return tx.Model(&model.User{}).
			Where("telegram_id = ?", userID).
			Update("points", gorm.Expr("points + ?", points)).Error
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

func (r *ledgerRepository) TryRecordReferralAward(ctx context.Context, referrerID, referredID int64, points int) (bool, error) {
	credited := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		award := model.ReferralAward{ReferrerID: referrerID, ReferredID: referredID, Points: points}
		res := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "referrer_id"}, {Name: "referred_id"}},
			DoNothing: true,
		}).Create(&award)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		credited = true
		return tx.Model(&model.User{}).
			Where("telegram_id = ?", referrerID).
			Updates(map[string]interface{}{
				"points":    gorm.Expr("points + ?", points),
				"referrals": gorm.Expr("referrals + 1"),
			}).Error
	})
	if err != nil {
		return false, err
	}
	return credited, nil
}

func (r *ledgerRepository) HasChannelAward(ctx context.Context, userID int64, channelID string, epochID uint64) (bool, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.ChannelAward{}).
		Where("user_id = ? AND channel_id = ? AND epoch_id = ?", userID, channelID, epochID).
		Count(&cnt).Error
	if err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *ledgerRepository) StartNewEpoch(ctx context.Context) (uint64, error) {
	var newID uint64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&model.ContestEpoch{}).
			Where("active = ?", true).
			Updates(map[string]interface{}{"active": nil, "ended_at": now}).Error; err != nil {
			return err
		}
		active := true
		ep := model.ContestEpoch{Active: &active}
		if err := tx.Create(&ep).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("1 = 1").
			Updates(map[string]interface{}{"points": 0, "referrals": 0}).Error; err != nil {
			return err
		}
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&model.ChannelAward{}).Error; err != nil {
			return err
		}
		newID = ep.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newID, nil
}

func (r *ledgerRepository) ResetAll(ctx context.Context) (ResetCounts, error) {
	var counts ResetCounts
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.User{}).Count(&counts.UsersBefore).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.User{}).Where("1 = 1").
			Updates(map[string]interface{}{"points": 0, "referrals": 0}).Error; err != nil {
			return err
		}
		purge := []interface{}{
			&model.ChannelAward{},
			&model.ReferralAward{},
			&model.Channel{},
			&model.Gift{},
			&model.ContestEpoch{},
		}
		for _, m := range purge {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(m).Error; err != nil {
				return err
			}
		}
		active := true
		if err := tx.Create(&model.ContestEpoch{Active: &active}).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Count(&counts.UsersAfter).Error
	})
	if err != nil {
		return ResetCounts{}, err
	}
	return counts, nil
}

func (r *ledgerRepository) ListTop(ctx context.Context, n int) ([]LeaderboardEntry, error) {
	if n <= 0 {
		n = 10
	}
	var entries []LeaderboardEntry
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Select("telegram_id, full_name, points").
		Order("points DESC, created_at ASC, telegram_id ASC").
		Limit(n).
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *ledgerRepository) Rank(ctx context.Context, userID int64) (int64, error) {
	points := 0
	u, err := r.GetUser(ctx, userID)
	if err == nil {
		points = u.Points
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, err
	}
	var greater int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("points > ?", points).
		Count(&greater).Error; err != nil {
		return 0, err
	}
	return greater + 1, nil
}

func (r *ledgerRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Order("telegram_id ASC").
		Pluck("telegram_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ledgerRepository) ListSeenSince(ctx context.Context, since time.Time) ([]int64, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("updated_at >= ?", since).
		Order("telegram_id ASC").
		Pluck("telegram_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *ledgerRepository) SetDB(db *gorm.DB) {
	r.db = db
}
