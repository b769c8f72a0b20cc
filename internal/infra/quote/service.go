package quote

import (
	"context"
	"time"

	"github.com/MRamiBalles/EscapeRoomGame/server/internal/infra/cache"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/logger"
	"github.com/MRamiBalles/EscapeRoomGame/server/internal/platform/metrics"
)

// CacheSize is how many fetched quotes are remembered.
const CacheSize = 5

// Service hands out quotes. It never fails: upstream errors produce the fallback.
type Service struct {
	provider Provider
	recent   *cache.Recent[string, Quote]
	logger   *logger.Logger
	now      func() time.Time
}

// NewService wraps provider with a recent-quote cache. A nil provider
// always yields the fallback.
func NewService(provider Provider, cacheSize int, log *logger.Logger) (*Service, error) {
	if cacheSize <= 0 {
		cacheSize = CacheSize
	}
	recent, err := cache.NewRecent[string, Quote](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{
		provider: provider,
		recent:   recent,
		logger:   log,
		now:      time.Now,
	}, nil
}

// Quote returns a random cached quote when useCache is set and the cache is
// not empty. Otherwise it fetches a fresh one and remembers it.
func (s *Service) Quote(ctx context.Context, useCache bool) Quote {
	if useCache {
		if q, ok := s.recent.Random(); ok {
			metrics.Get().RecordQuote(true, false)
			return q
		}
	}
	return s.fetch(ctx)
}

// ClearCache forgets every remembered quote.
func (s *Service) ClearCache() {
	s.recent.Purge()
}

// Cached returns the remembered quotes, oldest first.
func (s *Service) Cached() []Quote {
	return s.recent.Values()
}

func (s *Service) fetch(ctx context.Context) Quote {
	if s.provider == nil || !s.provider.IsAvailable() {
		metrics.Get().RecordQuote(false, true)
		return Fallback(s.now())
	}

	q, err := s.provider.Fetch(ctx)
	if err != nil {
		s.logger.Warnf("Error fetching quote from %s: %v", s.provider.Name(), err)
		metrics.Get().RecordQuote(false, true)
		return Fallback(s.now())
	}

	s.recent.Add(q.Text, *q)
	metrics.Get().RecordQuote(false, false)
	return *q
}
