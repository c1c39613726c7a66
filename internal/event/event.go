package event

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	defaultPoolSize = 256
	defaultTimeout  = 10 * time.Second
)

type Event interface {
	EventName() string
}

type Handler func(ctx context.Context, e Event) error

// Bus is an in-memory event bus. Publish never blocks: handlers run on their
// own goroutines and at most poolSize of them run at once.
type Bus struct {
	log      *zap.Logger
	pool     chan struct{}
	wg       sync.WaitGroup
	mu       sync.RWMutex
	handlers map[string][]Handler
}

type Option func(*Bus)

func WithPoolSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.pool = make(chan struct{}, n)
		}
	}
}

// NewBus creates a bus. Call Stop to wait for in-flight handlers.
func NewBus(log *zap.Logger, opts ...Option) *Bus {
	b := &Bus{
		log:      log,
		pool:     make(chan struct{}, defaultPoolSize),
		handlers: make(map[string][]Handler),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, h := range b.handlers[e.EventName()] {
		b.dispatch(ctx, h, e)
	}
}

func (b *Bus) dispatch(ctx context.Context, h Handler, e Event) {
	b.wg.Add(1)

	go func() {
		b.pool <- struct{}{}
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), defaultTimeout)
		defer func() {
			if r := recover(); r != nil {
				b.log.Error("event: handler panic",
					zap.String("event", e.EventName()),
					zap.Error(fmt.Errorf("%v, stack: %s", r, debug.Stack())),
				)
			}

			cancel()
			<-b.pool
			b.wg.Done()
		}()

		if err := h(ctx, e); err != nil {
			b.log.Error("event: handle event failed", zap.String("event", e.EventName()), zap.Error(err))
		}
	}()
}

// Stop waits for all handlers to finish.
func (b *Bus) Stop() {
	b.wg.Wait()
}
