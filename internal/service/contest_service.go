package service

import (
	"context"
	"fmt"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"go.uber.org/zap"
)

type ContestService interface {
	// StartNewEpoch ends the running contest and opens a fresh one with all
	// balances zeroed and channel awards purged. Referral awards survive.
	StartNewEpoch(ctx context.Context) (uint64, error)

	// ResetAll irreversibly wipes balances, awards, channels, gifts and
	// epoch history while keeping user rows. Callers must gate this behind
	// an explicit confirmation step.
	ResetAll(ctx context.Context) (repository.ResetCounts, error)

	ActiveEpoch(ctx context.Context) (*model.ContestEpoch, error)
}

type contestService struct {
	ledger repository.LedgerRepository
	log    *zap.Logger
}

func NewContestService(ledger repository.LedgerRepository, log *zap.Logger) ContestService {
	return &contestService{ledger: ledger, log: log}
}

func (s *contestService) StartNewEpoch(ctx context.Context) (uint64, error) {
	id, err := s.ledger.StartNewEpoch(ctx)
	if err != nil {
		return 0, fmt.Errorf("start new epoch: %w", err)
	}
	s.log.Info("new contest epoch started", zap.Uint64("epoch_id", id))
	return id, nil
}

func (s *contestService) ResetAll(ctx context.Context) (repository.ResetCounts, error) {
	counts, err := s.ledger.ResetAll(ctx)
	if err != nil {
		return repository.ResetCounts{}, fmt.Errorf("reset all: %w", err)
	}
	if counts.UsersBefore != counts.UsersAfter {
		// The reset must never drop user rows; this is an audit check.
		s.log.Error("user count changed across reset",
			zap.Int64("before", counts.UsersBefore),
			zap.Int64("after", counts.UsersAfter))
	} else {
		s.log.Info("full reset complete", zap.Int64("users", counts.UsersAfter))
	}
	return counts, nil
}

func (s *contestService) ActiveEpoch(ctx context.Context) (*model.ContestEpoch, error) {
	return s.ledger.ActiveEpoch(ctx)
}
