package redisadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"redpacket/contexts/finance-core/packet-service/domain/entities"
	domainerrors "redpacket/contexts/finance-core/packet-service/domain/errors"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	goredislib "github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "redpacket:packet-lock:"

type LockOptions struct {
	Expiry     time.Duration
	Tries      int
	RetryDelay time.Duration
}

func DefaultLockOptions() LockOptions {
	return LockOptions{
		Expiry:     5 * time.Second,
		Tries:      20,
		RetryDelay: 50 * time.Millisecond,
	}
}

// PacketLocker serialises work on one packet across API instances with a
// RedLock mutex. The database row lock remains the source of truth.
type PacketLocker struct {
	redsync *redsync.Redsync
	options LockOptions
	logger  *slog.Logger
}

func NewPacketLocker(client goredislib.UniversalClient, options LockOptions, logger *slog.Logger) *PacketLocker {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultLockOptions()
	if options.Expiry <= 0 {
		options.Expiry = defaults.Expiry
	}
	if options.Tries <= 0 {
		options.Tries = defaults.Tries
	}
	if options.RetryDelay <= 0 {
		options.RetryDelay = defaults.RetryDelay
	}
	return &PacketLocker{
		redsync: redsync.New(goredis.NewPool(client)),
		options: options,
		logger:  logger,
	}
}

func LockKey(packetID entities.PacketID) string {
	return lockKeyPrefix + packetID.String()
}

func (l *PacketLocker) WithPacketLock(ctx context.Context, packetID entities.PacketID, fn func(ctx context.Context) error) error {
	key := LockKey(packetID)
	mutex := l.redsync.NewMutex(
		key,
		redsync.WithExpiry(l.options.Expiry),
		redsync.WithTries(l.options.Tries),
		redsync.WithRetryDelay(l.options.RetryDelay),
	)

	if err := mutex.LockContext(ctx); err != nil {
		l.logger.Warn("packet lock not acquired",
			"event", "packet_lock_failed",
			"module", "finance-core/packet-service",
			"layer", "adapter",
			"packet_id", packetID.String(),
			"error", err.Error(),
		)
		if errors.Is(err, redsync.ErrFailed) || strings.Contains(err.Error(), "lock already taken") {
			return domainerrors.ErrLockNotAcquired
		}
		return fmt.Errorf("acquire packet lock: %w", err)
	}
	defer func() {
		if ok, err := mutex.UnlockContext(context.WithoutCancel(ctx)); !ok || err != nil {
			l.logger.Warn("packet lock release failed",
				"event", "packet_unlock_failed",
				"module", "finance-core/packet-service",
				"layer", "adapter",
				"packet_id", packetID.String(),
				"ok", ok,
			)
		}
	}()

	return fn(ctx)
}
