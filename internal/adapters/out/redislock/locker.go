// Package redislock is the per-invoice lock for multi-replica deployments: a
// redsync mutex whose lease is extended for as long as the holder keeps it.
package redislock

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/mzemanski-eng/claims-ebilling/internal/core/domain/model/kernel"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultTTL          = 30 * time.Second
	DefaultRetryBackoff = 50 * time.Millisecond
	keyPrefix           = "claims-ebilling:invoice-lock:"
	releaseTimeout      = 5 * time.Second
)

// Locker implements ports.InvoiceLocker. The lease expires after ttl so a
// crashed holder cannot block an invoice forever; a live holder extends it
// every ttl/3 until it unlocks.
type Locker struct {
	redsync *redsync.Redsync
	ttl     time.Duration
	backoff time.Duration
	log     *zap.Logger
}

func NewLocker(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) (*Locker, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Locker{
		redsync: redsync.New(goredis.NewPool(client)),
		ttl:     ttl,
		backoff: DefaultRetryBackoff,
		log:     log.Named("redislock"),
	}, nil
}

// Lock retries until the lease is won or ctx is done. The returned func
// stops the renewal and releases the lease; calling it twice is a no-op.
func (l *Locker) Lock(ctx context.Context, invoiceID kernel.UUID) (func(), error) {
	if err := invoiceID.Validate(); err != nil {
		return nil, err
	}

	mutex := l.redsync.NewMutex(keyPrefix+invoiceID.String(),
		redsync.WithExpiry(l.ttl),
		redsync.WithTries(math.MaxInt32),
		redsync.WithRetryDelay(l.backoff),
	)
	if err := mutex.LockContext(ctx); err != nil {
		// redsync reports a cancelled wait as ErrFailed.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	stop := make(chan struct{})
	stopped := make(chan struct{})
	go l.keepAlive(mutex, invoiceID, stop, stopped)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-stopped

			// The caller's ctx may already be cancelled; the release must still run.
			releaseCtx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
			defer cancel()
			if _, err := mutex.UnlockContext(releaseCtx); err != nil {
				l.log.Warn("release invoice lock", zap.String("invoice_id", invoiceID.String()), zap.Error(err))
			}
		})
	}, nil
}

func (l *Locker) keepAlive(mutex *redsync.Mutex, invoiceID kernel.UUID, stop <-chan struct{}, stopped chan<- struct{}) {
	defer close(stopped)

	interval := l.ttl / 3
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			ok, err := mutex.ExtendContext(ctx)
			cancel()
			if err != nil || !ok {
				l.log.Error("invoice lock lease lost",
					zap.String("invoice_id", invoiceID.String()),
					zap.Time("valid_until", mutex.Until()),
					zap.Error(err))
				return
			}
		}
	}
}
