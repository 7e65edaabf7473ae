package queue

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/naiarievilo/todoapp/internal/core/domain"
	"github.com/naiarievilo/todoapp/internal/core/ports"
	"github.com/naiarievilo/todoapp/internal/pkg/metrics"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// ErrQueueFull is returned by Notify when the owning worker's buffer is full.
var ErrQueueFull = errors.New("notification queue full")

// Dispatcher hands notifications to a downstream notifier off the request
// path. Notifications are sharded by account id, so links for one account
// are delivered in the order they were issued.
type Dispatcher struct {
	workers  []chan domain.Notification
	notifier ports.Notifier
	log      zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, notifier ports.Notifier, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:  make([]chan domain.Notification, numWorkers),
		notifier: notifier,
		log:      log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.Notification, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Notify enqueues n without waiting for delivery. It never blocks: a full
// shard is reported as ErrQueueFull.
func (d *Dispatcher) Notify(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	idx := d.shardIndex(n.AccountID)
	select {
	case d.workers[idx] <- n:
		metrics.NotificationsQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
		return nil
	default:
		return fmt.Errorf("notify %s for %s: %w", n.Kind, n.AccountID, ErrQueueFull)
	}
}

// shardIndex maps an account id deterministically to a worker index.
func (d *Dispatcher) shardIndex(accountID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(accountID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.Notification) {
	workerID := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationsQueueDepth.WithLabelValues(workerID).Set(float64(len(ch)))
			d.deliver(ctx, id, n)
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, id int, n domain.Notification) {
	start := time.Now()
	err := d.notifier.Notify(ctx, n)

	result := "ok"
	if err != nil {
		result = "error"
		d.log.Error().Err(err).
			Str("account_id", n.AccountID).
			Str("kind", string(n.Kind)).
			Int("worker_id", id).
			Msg("notification delivery failed")
	}
	metrics.NotificationDeliveryDuration.WithLabelValues(string(n.Kind), result).Observe(time.Since(start).Seconds())
}
