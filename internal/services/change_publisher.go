package services

import (
	"context"
	"fmt"

	"idledger/internal/amqp"
	"idledger/internal/log"
	"idledger/internal/repository"
)

// Publisher sends change events to the broker.
type Publisher interface {
	PublishChange(ctx context.Context, event *amqp.ChangeEvent) error
	Close() error
}

// ChangePublisher forwards committed repository changes to a Publisher.
// A failed publish is logged and never fails the mutation, which is already
// persisted by the time listeners run.
type ChangePublisher struct {
	publisher   Publisher
	logger      *log.Logger
	unsubscribe func()
}

func NewChangePublisher(publisher Publisher, logger *log.Logger) *ChangePublisher {
	if logger == nil {
		logger = log.Discard()
	}
	return &ChangePublisher{
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentAMQP),
	}
}

// Attach subscribes to repo. Call Close to detach.
func (p *ChangePublisher) Attach(repo *repository.Repository) {
	p.unsubscribe = repo.Subscribe(p.Notify)
}

// Notify is the repository listener.
func (p *ChangePublisher) Notify(ctx context.Context, change repository.Change) {
	if p.publisher == nil {
		p.logger.DebugContext(ctx, "AMQP client not available, skipping change event",
			log.FieldCollection, change.Collection.String())
		return
	}

	event := amqp.NewChangeEvent(change.Collection.String(), string(change.Op), change.IDs)
	// The request that caused the change may finish before the broker answers.
	if err := p.publisher.PublishChange(context.WithoutCancel(ctx), event); err != nil {
		log.LogError(ctx, p.logger, "Failed to publish change event", err, log.OpPublish,
			log.NewFields().WithMutation(change.Collection.String(), change.IDs))
	}
}

func (p *ChangePublisher) Close() error {
	if p.unsubscribe != nil {
		p.unsubscribe()
	}
	if p.publisher != nil {
		if err := p.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
