package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"inventory_back_end/internal/models"
)

const ProductEventsChannel = "products:events"

type EventPublisher interface {
	Publish(ctx context.Context, ev models.ProductEvent)
}

// EventSubscriber livre les événements jusqu'à l'annulation de ctx.
type EventSubscriber interface {
	Subscribe(ctx context.Context) (<-chan models.ProductEvent, error)
}

// RedisEventBus diffuse les changements produits entre instances via Redis pub/sub.
type RedisEventBus struct {
	rdb *redis.Client
}

func NewRedisEventBus(rdb *redis.Client) *RedisEventBus {
	return &RedisEventBus{rdb: rdb}
}

func (b *RedisEventBus) Publish(ctx context.Context, ev models.ProductEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if err := b.rdb.Publish(ctx, ProductEventsChannel, data).Err(); err != nil {
		zap.S().Warnf("⚠️ Publication événement %s %s: %v", ev.Type, ev.ID, err)
	}
}

func (b *RedisEventBus) Subscribe(ctx context.Context) (<-chan models.ProductEvent, error) {
	pubsub := b.rdb.Subscribe(ctx, ProductEventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan models.ProductEvent, 16)
	go func() {
		defer close(out)
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
				var ev models.ProductEvent
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					zap.S().Warnf("⚠️ Événement illisible: %v", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// LocalEventBus est l'équivalent mono-instance utilisé sans Redis.
type LocalEventBus struct {
	mu   sync.Mutex
	subs map[chan models.ProductEvent]struct{}
}

func NewLocalEventBus() *LocalEventBus {
	return &LocalEventBus{subs: make(map[chan models.ProductEvent]struct{})}
}

// Publish ne bloque jamais : un abonné trop lent perd l'événement.
func (b *LocalEventBus) Publish(ctx context.Context, ev models.ProductEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			zap.S().Warnf("⚠️ Abonné saturé, événement %s %s ignoré", ev.Type, ev.ID)
		}
	}
}

func (b *LocalEventBus) Subscribe(ctx context.Context) (<-chan models.ProductEvent, error) {
	ch := make(chan models.ProductEvent, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, ch)
		close(ch)
		b.mu.Unlock()
	}()
	return ch, nil
}
