package opsdata

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// loadTimeout bounds a shared source read once it no longer follows the
// context of the request that started it.
const loadTimeout = 30 * time.Second

// Service resolves the dashboard payload through the cache and collapses
// concurrent loads of the same version into one source read. The decoded
// payload of the current version is kept in memory until its Redis entry
// would expire; returned Data is shared and must not be modified.
type Service struct {
	source  Source
	cache   *Cache
	metrics *Metrics
	group   singleflight.Group
	now     func() time.Time

	mu          sync.Mutex
	memoKey     string
	memo        *Data
	memoExpires time.Time
}

// NewService wires a Source with an optional Cache and Metrics.
func NewService(source Source, cache *Cache, metrics *Metrics) *Service {
	return &Service{source: source, cache: cache, metrics: metrics, now: time.Now}
}

type loadResult struct {
	raw []byte
	hit bool
	ttl time.Duration
}

// Data returns the decoded payload for the current cache version.
func (s *Service) Data(ctx context.Context) (*Data, error) {
	if s == nil || s.source == nil {
		return nil, errors.New("opsdata: source not configured")
	}
	start := time.Now()
	name := s.source.Name()
	key, err := s.cache.BuildKey(ctx, keyPayload(name))
	if err != nil {
		s.metrics.observe(name, false, err, time.Since(start))
		return nil, err
	}
	if data := s.memoized(key); data != nil {
		s.metrics.observe(name, true, nil, time.Since(start))
		return data, nil
	}

	ch := s.group.DoChan(key, func() (interface{}, error) {
		// Detached from the first caller; every joined caller waits on this read.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()
		raw, hit, err := s.cache.Fetch(loadCtx, key, s.loadValidated)
		if err != nil {
			return nil, err
		}
		return loadResult{raw: raw, hit: hit, ttl: s.cache.Remaining(loadCtx, key)}, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		s.metrics.observe(name, false, res.Err, time.Since(start))
		return nil, res.Err
	}
	loaded := res.Val.(loadResult)
	data, err := Decode(bytes.NewReader(loaded.raw))
	s.metrics.observe(name, loaded.hit, err, time.Since(start))
	if err != nil {
		return nil, err
	}
	s.remember(key, data, loaded.ttl)
	return data, nil
}

func (s *Service) memoized(key string) *Data {
	if !s.cache.enabled() {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memoKey != key {
		return nil
	}
	if !s.memoExpires.IsZero() && !s.clock().Before(s.memoExpires) {
		s.memoKey, s.memo = "", nil
		return nil
	}
	return s.memo
}

// remember keeps data for at most ttl; a non-positive ttl means the Redis
// entry never expires.
func (s *Service) remember(key string, data *Data, ttl time.Duration) {
	if !s.cache.enabled() {
		return
	}
	var expires time.Time
	if ttl > 0 {
		expires = s.clock().Add(ttl)
	}
	s.mu.Lock()
	s.memoKey, s.memo, s.memoExpires = key, data, expires
	s.mu.Unlock()
}

func (s *Service) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *Service) loadValidated(ctx context.Context) ([]byte, error) {
	raw, err := s.source.Load(ctx)
	if err != nil {
		return nil, err
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// Refresh invalidates cached payloads so the next load reads the source.
func (s *Service) Refresh(ctx context.Context) (int64, error) {
	if s == nil {
		return 0, nil
	}
	return s.cache.Bump(ctx)
}

// Warm loads the payload so it is cached before the first page view.
func (s *Service) Warm(ctx context.Context) (int, error) {
	data, err := s.Data(ctx)
	if err != nil {
		return 0, err
	}
	return len(data.AvailableWeeks), nil
}

// SourceName reports which source backs the service.
func (s *Service) SourceName() string {
	if s == nil || s.source == nil {
		return ""
	}
	return s.source.Name()
}
