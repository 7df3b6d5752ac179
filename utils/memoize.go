package utils

import (
	"sync"
	"time"
)

// Memoize wraps fn with a TTL cache. The wrapped function returns the cached
// value while it is fresh and recomputes once it expires. Errors are never
// cached, so a failed call is retried on the next invocation.
func Memoize[T any](fn func() (T, error), ttl time.Duration) func() (T, error) {
	var (
		mu        sync.Mutex
		value     T
		expiresAt time.Time
	)

	return func() (T, error) {
		mu.Lock()
		defer mu.Unlock()

		if time.Now().Before(expiresAt) {
			return value, nil
		}

		fresh, err := fn()
		if err != nil {
			return fresh, err
		}

		value = fresh
		expiresAt = time.Now().Add(ttl)
		return value, nil
	}
}
