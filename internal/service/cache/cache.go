package cache

import "time"

// BytesCache stores rendered signal and backtest responses as raw bytes with a
// TTL. Values are pre-serialized by the handler so a hit is returned without
// re-marshalling; the key encodes every request parameter that affects the
// result.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
