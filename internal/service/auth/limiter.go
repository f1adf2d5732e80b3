package auth

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

const (
	RegistrationRetryWindow = 30 * time.Second
	registrationPurge       = 5 * time.Minute
)

// RegistrationLimiter rejects a second registration attempt for the same
// email inside the retry window. Entries expire after five minutes.
type RegistrationLimiter struct {
	mu     sync.Mutex
	cache  *cache.Cache
	window time.Duration
}

func NewRegistrationLimiter(window time.Duration) *RegistrationLimiter {
	if window <= 0 {
		window = RegistrationRetryWindow
	}
	return &RegistrationLimiter{
		cache:  cache.New(registrationPurge, registrationPurge),
		window: window,
	}
}

// Allow records an attempt at now and reports whether it may proceed.
func (l *RegistrationLimiter) Allow(email string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.cache.Add(email, now, cache.DefaultExpiration); err == nil {
		return true
	}
	if last, found := l.cache.Get(email); found && now.Sub(last.(time.Time)) < l.window {
		return false
	}
	l.cache.Set(email, now, cache.DefaultExpiration)
	return true
}
