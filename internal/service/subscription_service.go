package service

import (
	"context"
	"fmt"
	"time"

	"github.com/umarovdev/konkurs-backend/internal/repository"
	"go.uber.org/zap"
)

// MembershipStatus is the oracle's answer for one (channel, user) pair.
type MembershipStatus int

const (
	StatusUnknown MembershipStatus = iota
	StatusMember
	StatusNotMember
)

// MembershipOracle answers whether a user currently belongs to a channel.
// Implemented by the Telegram Bot API client; calls must be bounded.
type MembershipOracle interface {
	StatusOf(ctx context.Context, channelID string, userID int64) (MembershipStatus, error)
}

type VerificationResult struct {
	AllSubscribed      bool `json:"all_subscribed"`
	NewlyAwardedPoints int  `json:"newly_awarded_points"`
}

type SubscriptionService interface {
	// CheckAndAward verifies the user against every configured channel and
	// credits join points for newly confirmed memberships. With no channels
	// configured the user passes trivially.
	CheckAndAward(ctx context.Context, userID int64) (VerificationResult, error)
}

type subscriptionService struct {
	channels repository.ChannelRepository
	ledger   repository.LedgerRepository
	awards   AwardService
	oracle   MembershipOracle
	timeout  time.Duration
	log      *zap.Logger
}

func NewSubscriptionService(channels repository.ChannelRepository, ledger repository.LedgerRepository, awards AwardService, oracle MembershipOracle, timeout time.Duration, log *zap.Logger) SubscriptionService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &subscriptionService{channels: channels, ledger: ledger, awards: awards, oracle: oracle, timeout: timeout, log: log}
}

func (s *subscriptionService) CheckAndAward(ctx context.Context, userID int64) (VerificationResult, error) {
	list, err := s.channels.List(ctx)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("list channels: %w", err)
	}
	result := VerificationResult{AllSubscribed: true}
	if len(list) == 0 {
		return result, nil
	}

	epochID, err := s.ledger.ActiveEpochID(ctx)
	if err != nil {
		return VerificationResult{}, fmt.Errorf("active epoch: %w", err)
	}

	for _, ch := range list {
		status, oerr := s.statusOf(ctx, ch.ChatID, userID)
		if oerr != nil || status == StatusUnknown {
			// Fail closed: an unreachable oracle never unlocks a channel,
			// but a credit already recorded this epoch keeps standing.
			awarded, herr := s.ledger.HasChannelAward(ctx, userID, ch.ChatID, epochID)
			if herr != nil {
				return VerificationResult{}, fmt.Errorf("award fallback for channel %s: %w", ch.ChatID, herr)
			}
			if !awarded {
				result.AllSubscribed = false
			}
			s.log.Warn("membership check failed, using award record fallback",
				zap.String("channel_id", ch.ChatID),
				zap.Int64("user_id", userID),
				zap.Bool("prior_award", awarded),
				zap.Error(oerr))
			continue
		}
		if status == StatusNotMember {
			result.AllSubscribed = false
			continue
		}
		outcome, aerr := s.awards.AwardChannelJoin(ctx, userID, ch.ChatID)
		if aerr != nil {
			return VerificationResult{}, aerr
		}
		if outcome == OutcomeCredited {
			result.NewlyAwardedPoints += s.awards.JoinPoints()
		}
	}
	return result, nil
}

func (s *subscriptionService) statusOf(ctx context.Context, channelID string, userID int64) (MembershipStatus, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.oracle.StatusOf(cctx, channelID, userID)
}
