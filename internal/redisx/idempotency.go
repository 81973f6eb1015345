package redisx

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"spalena53-be/internal/logger"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	stateInFlight = "pending"
	donePrefix    = "done:"
)

var (
	ErrRequestInFlight = errors.New("request with this idempotency key is in progress")
	ErrInvalidKey      = errors.New("invalid idempotency key")
)

type kv interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// Claim is the outcome of trying to take an idempotency key.
type Claim struct {
	// Claimed is true when the caller owns the key and should do the work.
	Claimed bool
	// OrderID is set when a previous request with the same key completed.
	OrderID *uuid.UUID
}

// IdempotencyStore guards order placement against double submission.
type IdempotencyStore struct {
	rdb kv
}

func NewIdempotencyStore(rdb *redis.Client) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb}
}

func orderKey(userID uuid.UUID, key string) string {
	return fmt.Sprintf(KeyIdemOrderCreate, userID.String(), key)
}

func validKey(key string) bool {
	return key != "" && len(key) <= 128 && !strings.ContainsAny(key, " \t\r\n")
}

// ClaimOrder tries to take key for userID.
func (s *IdempotencyStore) ClaimOrder(ctx context.Context, userID uuid.UUID, key string) (Claim, error) {
	if !validKey(key) {
		return Claim{}, ErrInvalidKey
	}
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "redisx"),
		zap.String("method", "ClaimOrder"),
		zap.String("user_id", userID.String()),
	)

	k := orderKey(userID, key)
	ok, err := s.rdb.SetNX(ctx, k, stateInFlight, TTLInFlight).Result()
	if err != nil {
		log.Error("failed to claim idempotency key", zap.Error(err))
		return Claim{}, fmt.Errorf("claim idempotency key: %w", err)
	}
	if ok {
		return Claim{Claimed: true}, nil
	}

	val, err := s.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; let the caller retry
		return Claim{}, ErrRequestInFlight
	}
	if err != nil {
		return Claim{}, fmt.Errorf("read idempotency key: %w", err)
	}

	if !strings.HasPrefix(val, donePrefix) {
		log.Info("duplicate request while first is in flight")
		return Claim{}, ErrRequestInFlight
	}

	orderID, err := uuid.Parse(strings.TrimPrefix(val, donePrefix))
	if err != nil {
		return Claim{}, fmt.Errorf("corrupt idempotency value %q: %w", val, err)
	}
	log.Info("replaying completed request", zap.String("order_id", orderID.String()))
	return Claim{OrderID: &orderID}, nil
}

// CompleteOrder records the order created under key for TTLIdempotency.
func (s *IdempotencyStore) CompleteOrder(ctx context.Context, userID uuid.UUID, key string, orderID uuid.UUID) error {
	return s.rdb.Set(ctx, orderKey(userID, key), donePrefix+orderID.String(), TTLIdempotency).Err()
}

// ReleaseOrder frees key after a failed placement so the client may retry.
func (s *IdempotencyStore) ReleaseOrder(ctx context.Context, userID uuid.UUID, key string) error {
	return s.rdb.Del(ctx, orderKey(userID, key)).Err()
}
