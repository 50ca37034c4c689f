package outbox

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/Irine-Juliet/Bank-CLI/internal/domain"
	kafka_infra "github.com/Irine-Juliet/Bank-CLI/internal/infrastructure/kafka"
	"github.com/Irine-Juliet/Bank-CLI/internal/repository/outbox_repo"
)

const pollBatchSize = 10

// Processor drains pending outbox messages to Kafka. Each message is
// published and marked SENT inside its own database transaction; failures
// leave the row pending for the next poll.
type Processor struct {
	db           *sql.DB
	outboxRepo   outbox_repo.OutboxRepository
	producer     kafka_infra.Producer
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *zap.Logger
}

func NewProcessor(
	db *sql.DB,
	outboxRepo outbox_repo.OutboxRepository,
	producer kafka_infra.Producer,
	pollInterval time.Duration,
	pollTimeout time.Duration,
	logger *zap.Logger,
) *Processor {
	return &Processor{
		db:           db,
		outboxRepo:   outboxRepo,
		producer:     producer,
		pollInterval: pollInterval,
		pollTimeout:  pollTimeout,
		logger:       logger,
	}
}

// Start polls until ctx is canceled.
func (p *Processor) Start(ctx context.Context) {
	p.logger.Info("Starting outbox processor", zap.Duration("poll_interval", p.pollInterval))
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Outbox processor stopping")
			return
		case <-ticker.C:
			p.processOutboxMessages(ctx)
		}
	}
}

func (p *Processor) processOutboxMessages(ctx context.Context) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		p.logger.Error("Failed to begin outbox transaction", zap.Error(err))
		return
	}
	defer tx.Rollback()

	queryCtx, cancel := context.WithTimeout(ctx, p.pollTimeout)
	defer cancel()

	messages, err := p.outboxRepo.GetPendingMessages(queryCtx, tx, pollBatchSize)
	if err != nil {
		p.logger.Error("Failed to get pending outbox messages", zap.Error(err))
		return
	}
	if len(messages) == 0 {
		return
	}
	p.logger.Debug("Found pending outbox messages", zap.Int("count", len(messages)))

	for _, msg := range messages {
		if err := p.producer.Produce(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			p.logger.Error("Failed to publish outbox message",
				zap.String("message_id", msg.ID),
				zap.String("topic", msg.Topic),
				zap.Error(err))
			return
		}
		if err := p.outboxRepo.UpdateMessageStatusTx(ctx, tx, msg.ID, domain.OutboxStatusSent); err != nil {
			p.logger.Error("Failed to mark outbox message as sent", zap.String("message_id", msg.ID), zap.Error(err))
			return
		}
	}

	if err := tx.Commit(); err != nil {
		p.logger.Error("Failed to commit outbox transaction", zap.Error(err))
		return
	}
	p.logger.Info("Outbox messages published", zap.Int("count", len(messages)))
}
