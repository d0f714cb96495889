package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/umarovdev/konkurs-backend/internal/repository"
	"go.uber.org/zap"
)

// MessageSender delivers a text message to one user. Implemented by the
// Telegram Bot API client.
type MessageSender interface {
	SendMessage(ctx context.Context, userID int64, text string) error
}

type BroadcastReport struct {
	BatchID string `json:"batch_id"`
	Total   int    `json:"total"`
	Sent    int    `json:"sent"`
	Failed  int    `json:"failed"`
}

type BroadcastService interface {
	// Broadcast fans the text out to every known user. Delivery failures
	// are counted per recipient and never abort the batch.
	Broadcast(ctx context.Context, text string) (BroadcastReport, error)
}

type broadcastService struct {
	ledger repository.LedgerRepository
	sender MessageSender
	log    *zap.Logger
}

func NewBroadcastService(ledger repository.LedgerRepository, sender MessageSender, log *zap.Logger) BroadcastService {
	return &broadcastService{ledger: ledger, sender: sender, log: log}
}

func (s *broadcastService) Broadcast(ctx context.Context, text string) (BroadcastReport, error) {
	ids, err := s.ledger.ListUserIDs(ctx)
	if err != nil {
		return BroadcastReport{}, fmt.Errorf("list users: %w", err)
	}
	report := BroadcastReport{BatchID: uuid.NewString(), Total: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.sender.SendMessage(ctx, id, text); err != nil {
			report.Failed++
			s.log.Warn("broadcast delivery failed",
				zap.String("batch_id", report.BatchID),
				zap.Int64("user_id", id),
				zap.Error(err))
			continue
		}
		report.Sent++
	}
	s.log.Info("broadcast finished",
		zap.String("batch_id", report.BatchID),
		zap.Int("total", report.Total),
		zap.Int("sent", report.Sent),
		zap.Int("failed", report.Failed))
	return report, nil
}
