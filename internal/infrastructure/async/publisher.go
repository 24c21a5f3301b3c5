package async

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"jobboard/internal/domain"
	"jobboard/internal/infrastructure/broker"
)

// Publisher is the fire-and-forget side of event emission. The store write
// that triggered an event has already committed by the time Publish runs;
// the broker write is a second, independently logged outcome and its
// failure never reaches the caller.
type Publisher struct {
	exchange *broker.Exchange
	pool     *WorkerPool
	log      *zap.Logger
}

func NewPublisher(ctx context.Context, exchange *broker.Exchange, poolSize int, publishTimeout time.Duration, log *zap.Logger) *Publisher {
	return &Publisher{
		exchange: exchange,
		pool:     NewWorkerPool(ctx, poolSize, publishTimeout, log),
		log:      log,
	}
}

func (p *Publisher) Publish(_ context.Context, e domain.Event) {
	p.pool.Submit(func(ctx context.Context) {
		body, err := json.Marshal(e.Payload)
		if err != nil {
			p.log.Error("event marshal failed",
				zap.String("topic", e.Topic),
				zap.Error(err),
			)
			return
		}

		if err := p.exchange.Publish(ctx, e.Topic, body); err != nil {
			p.log.Error("event publish failed",
				zap.String("topic", e.Topic),
				zap.Error(err),
			)
			return
		}

		p.log.Info("domain_event published",
			zap.String("topic", e.Topic),
		)
	})
}

func (p *Publisher) Close() {
	p.pool.Shutdown()
}
