package cache

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Subscriber listens on the invalidation channel and deletes the named
// keys from this instance's redis view. Together with ShardCache.Invalidate
// it keeps a fleet of instances converged after writes.
type Subscriber struct {
	log    *zap.Logger
	client *redis.Client

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSubscriber constructs a subscriber. Call Open to start it.
func NewSubscriber(log *zap.Logger, client *redis.Client) *Subscriber {
	return &Subscriber{log: log, client: client}
}

// Open subscribes to the invalidation channel and processes messages until
// Close is called. Opening an already open subscriber is a no-op.
func (s *Subscriber) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	pubsub := s.client.Subscribe(ctx, InvalidationChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		return err
	}

	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, pubsub)
	return nil
}

func (s *Subscriber) run(ctx context.Context, pubsub *redis.PubSub) {
	defer close(s.done)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.handle(ctx, msg.Payload)
		}
	}
}

func (s *Subscriber) handle(ctx context.Context, payload string) {
	var inv invalidation
	if err := json.Unmarshal([]byte(payload), &inv); err != nil {
		s.log.Warn("malformed invalidation message", zap.Error(err))
		return
	}
	if inv.Key == "" {
		return
	}

	if err := s.client.Del(ctx, inv.Key).Err(); err != nil {
		s.log.Warn("invalidation delete failed",
			zap.String("key", inv.Key),
			zap.String("correlation_id", inv.CorrelationID),
			zap.Error(err))
		return
	}

	s.log.Debug("shard invalidated",
		zap.String("key", inv.Key),
		zap.String("correlation_id", inv.CorrelationID))
}

// Close stops the subscriber and waits for the message loop to exit.
func (s *Subscriber) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel == nil {
		return nil
	}

	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
	return nil
}
