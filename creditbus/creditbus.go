// Package creditbus fans credit-balance changes out to live subscribers.
// The bus is process-wide shared state, injected into request handlers; it
// holds no backlog, so a subscriber registered after a publish never sees it.
package creditbus

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultBuffer = 8

// Event is one credit-balance observation. Key is the resumption key a
// transport layer can echo back so a reconnecting client conceptually
// continues the stream; the bus itself buffers nothing.
type Event struct {
	CompanyID   int    `json:"companyId"`
	CreditCount int    `json:"creditCount"`
	Key         string `json:"key"`
}

// ResumeKey returns the resumption key for a company's credit stream.
func ResumeKey(companyID int) string {
	return fmt.Sprintf("creditCount:%d", companyID)
}

// SnapshotFunc fetches the current credit balance for a company. Subscribe
// calls it once, before registering, so every stream opens with a snapshot.
type SnapshotFunc func(ctx context.Context, companyID int) (int, error)

type subscriber struct {
	ch chan Event
}

// Bus is an in-process publish/subscribe hub keyed by company id. Company
// channels are independent: publishing to one is never observable by
// subscribers of another.
type Bus struct {
	mu          sync.Mutex
	subscribers map[int]map[*subscriber]struct{}
	snapshot    SnapshotFunc
	buffer      int
	log         zerolog.Logger
}

// BusOption modifies a Bus during construction.
type BusOption func(*Bus)

// WithBuffer sets the per-subscriber channel buffer. A slow subscriber whose
// buffer is full has events dropped, never blocking publishers.
func WithBuffer(n int) BusOption {
	return func(b *Bus) {
		if n > 0 {
			b.buffer = n
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(log zerolog.Logger) BusOption {
	return func(b *Bus) {
		b.log = log
	}
}

// New creates a Bus. snapshot is required: every subscription starts with an
// upstream credit-count query.
func New(snapshot SnapshotFunc, options ...BusOption) (*Bus, error) {
	if snapshot == nil {
		return nil, errors.New("[creditbus.New] snapshot func is required")
	}
	b := &Bus{
		subscribers: make(map[int]map[*subscriber]struct{}),
		snapshot:    snapshot,
		buffer:      defaultBuffer,
		log:         zerolog.Nop(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b, nil
}

// Publish broadcasts a credit count to the current subscribers of a company.
// Safe for concurrent use; with zero subscribers it is a no-op. Delivery is
// at most once per emission: a full subscriber buffer drops the event.
func (b *Bus) Publish(companyID, creditCount int) {
	event := Event{CompanyID: companyID, CreditCount: creditCount, Key: ResumeKey(companyID)}

	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subscribers[companyID] {
		select {
		case sub.ch <- event:
		default:
			b.log.Warn().Int("company_id", companyID).Msg("credit event dropped, subscriber buffer full")
		}
	}
}

// Subscribe opens a live credit stream for a company. The first value on the
// channel is the snapshot fetched at subscription time; every subsequent
// publish for the company follows until ctx is cancelled, at which point the
// subscriber is deregistered and the channel closed.
func (b *Bus) Subscribe(ctx context.Context, companyID int) (<-chan Event, error) {
	count, err := b.snapshot(ctx, companyID)
	if err != nil {
		return nil, errors.Wrap(err, "[Bus.Subscribe] initial snapshot")
	}

	sub := &subscriber{ch: make(chan Event, b.buffer)}
	sub.ch <- Event{CompanyID: companyID, CreditCount: count, Key: ResumeKey(companyID)}

	b.mu.Lock()
	if _, ok := b.subscribers[companyID]; !ok {
		b.subscribers[companyID] = make(map[*subscriber]struct{})
	}
	b.subscribers[companyID][sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(companyID, sub)
	}()

	return sub.ch, nil
}

// remove deregisters a subscriber and closes its channel. Closing happens
// inside the critical section so Publish can never send on a closed channel.
func (b *Bus) remove(companyID int, sub *subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.subscribers[companyID]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.subscribers, companyID)
	}
	close(sub.ch)
}

// SubscriberCount reports the number of live subscribers for a company.
func (b *Bus) SubscriberCount(companyID int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subscribers[companyID])
}
