package service

import (
	"context"
	"fmt"

	"github.com/umarovdev/konkurs-backend/internal/model"
	"github.com/umarovdev/konkurs-backend/internal/repository"
)

type UserService interface {
	// Seen upserts the user on any inbound contact. When this is the first
	// contact and a valid referrer rode along, a referral award is
	// attempted; its outcome is returned alongside the fresh user row.
	Seen(ctx context.Context, id int64, username, fullName string, referrerID *int64) (*model.User, Outcome, error)
	Get(ctx context.Context, id int64) (*model.User, error)
}

type userService struct {
	ledger repository.LedgerRepository
	awards AwardService
}

func NewUserService(ledger repository.LedgerRepository, awards AwardService) UserService {
	return &userService{ledger: ledger, awards: awards}
}

func (s *userService) Seen(ctx context.Context, id int64, username, fullName string, referrerID *int64) (*model.User, Outcome, error) {
	created, err := s.ledger.UpsertUser(ctx, id, username, fullName, referrerID)
	if err != nil {
		return nil, "", fmt.Errorf("upsert user: %w", err)
	}
	outcome := OutcomeAlreadyCredited
	if created && referrerID != nil {
		outcome, err = s.awards.AwardReferral(ctx, *referrerID, id)
		if err != nil {
			return nil, "", err
		}
	}
	u, err := s.ledger.GetUser(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("load user: %w", err)
	}
	return u, outcome, nil
}

func (s *userService) Get(ctx context.Context, id int64) (*model.User, error) {
	return s.ledger.GetUser(ctx, id)
}
