package redisx

import "time"

const (
	// Idempotent order placement: idem:order:create:{user_id}:{key} -> state
	KeyIdemOrderCreate = "idem:order:create:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	// A claim that never completes is released after this long.
	TTLInFlight = 2 * time.Minute
)
