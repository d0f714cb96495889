package service

import (
	"context"
	"fmt"
	"time"

	"github.com/umarovdev/konkurs-backend/internal/repository"
)

// UserSnapshot is the presentation view of a participant: balance,
// referral count and current rating position.
type UserSnapshot struct {
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username"`
	FullName   string    `json:"full_name"`
	Points     int       `json:"points"`
	Referrals  int       `json:"referrals"`
	Rank       int64     `json:"rank"`
	CreatedAt  time.Time `json:"created_at"`
}

type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error)
	Rank(ctx context.Context, userID int64) (int64, error)
	Snapshot(ctx context.Context, userID int64) (*UserSnapshot, error)
}

type leaderboardService struct {
	ledger repository.LedgerRepository
}

func NewLeaderboardService(ledger repository.LedgerRepository) LeaderboardService {
	return &leaderboardService{ledger: ledger}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]repository.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	return s.ledger.ListTop(ctx, limit)
}

func (s *leaderboardService) Rank(ctx context.Context, userID int64) (int64, error) {
	return s.ledger.Rank(ctx, userID)
}

func (s *leaderboardService) Snapshot(ctx context.Context, userID int64) (*UserSnapshot, error) {
	u, err := s.ledger.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	rank, err := s.ledger.Rank(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return &UserSnapshot{
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FullName:   u.FullName,
		Points:     u.Points,
		Referrals:  u.Referrals,
		Rank:       rank,
		CreatedAt:  u.CreatedAt,
	}, nil
}
