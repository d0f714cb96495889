package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/umarovdev/konkurs-backend/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Outcome of an award attempt. A duplicate is not an error: repeated and
// concurrent triggers are expected and must collapse to a single credit.
type Outcome string

const (
	OutcomeCredited        Outcome = "credited"
	OutcomeAlreadyCredited Outcome = "already_credited"
)

type AwardService interface {
	// AwardChannelJoin credits the user once per (user, channel) within the
	// active epoch. The store insert is the atomic gate, there is no
	// pre-check, so concurrent calls cannot double-credit.
	AwardChannelJoin(ctx context.Context, userID int64, channelID string) (Outcome, error)

	// AwardReferral credits referrerID once for bringing in referredID.
	// Self-referrals and claims that do not match the referrer recorded at
	// user creation are silent no-ops.
	AwardReferral(ctx context.Context, referrerID, referredID int64) (Outcome, error)

	JoinPoints() int
	ReferralPoints() int
}

type awardService struct {
	ledger         repository.LedgerRepository
	joinPoints     int
	referralPoints int
	log            *zap.Logger
}

func NewAwardService(ledger repository.LedgerRepository, joinPoints, referralPoints int, log *zap.Logger) AwardService {
	return &awardService{ledger: ledger, joinPoints: joinPoints, referralPoints: referralPoints, log: log}
}

func (s *awardService) AwardChannelJoin(ctx context.Context, userID int64, channelID string) (Outcome, error) {
	epochID, err := s.ledger.ActiveEpochID(ctx)
	if err != nil {
		return "", fmt.Errorf("active epoch: %w", err)
	}
	credited, err := s.ledger.TryRecordChannelAward(ctx, userID, channelID, epochID, s.joinPoints)
	if err != nil {
		return "", fmt.Errorf("record channel award: %w", err)
	}
	if !credited {
		return OutcomeAlreadyCredited, nil
	}
	s.log.Info("channel join credited",
		zap.Int64("user_id", userID),
		zap.String("channel_id", channelID),
		zap.Uint64("epoch_id", epochID),
		zap.Int("points", s.joinPoints))
	return OutcomeCredited, nil
}

func (s *awardService) AwardReferral(ctx context.Context, referrerID, referredID int64) (Outcome, error) {
	if referrerID == referredID {
		return OutcomeAlreadyCredited, nil
	}
	referred, err := s.ledger.GetUser(ctx, referredID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OutcomeAlreadyCredited, nil
		}
		return "", fmt.Errorf("load referred user: %w", err)
	}
	if referred.ReferrerID == nil || *referred.ReferrerID != referrerID {
		// Retroactive claim or tampering attempt: the stored referrer wins.
		s.log.Warn("referral claim does not match stored referrer",
			zap.Int64("claimed_referrer", referrerID),
			zap.Int64("referred", referredID))
		return OutcomeAlreadyCredited, nil
	}
	credited, err := s.ledger.TryRecordReferralAward(ctx, referrerID, referredID, s.referralPoints)
	if err != nil {
		return "", fmt.Errorf("record referral award: %w", err)
	}
	if !credited {
		return OutcomeAlreadyCredited, nil
	}
	s.log.Info("referral credited",
		zap.Int64("referrer", referrerID),
		zap.Int64("referred", referredID),
		zap.Int("points", s.referralPoints))
	return OutcomeCredited, nil
}

func (s *awardService) JoinPoints() int {
	return s.joinPoints
}

func (s *awardService) ReferralPoints() int {
	return s.referralPoints
}
