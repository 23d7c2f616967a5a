package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"portal-quiz-service/internal/domain"
)

// ContentLoader fetches raw quiz content from a backing store (files, Postgres).
type ContentLoader interface {
	LoadContent(ctx context.Context, subject string) ([]byte, error)
}

// ContentRepository caches quiz content with TTL to avoid repeated loads.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedContent
}

type cachedContent struct {
	data      []byte
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedContent),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, subject string) ([]byte, error) {
	if data, ok := r.lookup(subject); ok {
		return data, nil
	}

	result, err, _ := r.sf.Do(subject, func() (interface{}, error) {
		if data, ok := r.lookup(subject); ok {
			return data, nil
		}

		data, err := r.loader.LoadContent(ctx, subject)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[subject] = cachedContent{
			data:      data,
			expiresAt: r.clock().Add(r.ttlWithJitter()),
		}
		r.mu.Unlock()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

func (r *ContentRepository) lookup(subject string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[subject]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return nil, false
	}
	return entry.data, true
}

// StaticContentLoader is a simple loader backed by an in-memory map (useful for tests/demos).
type StaticContentLoader struct {
	contents map[string][]byte
}

func NewStaticContentLoader(contents map[string][]byte) *StaticContentLoader {
	return &StaticContentLoader{contents: contents}
}

func (l *StaticContentLoader) LoadContent(_ context.Context, subject string) ([]byte, error) {
	if data, ok := l.contents[subject]; ok {
		return data, nil
	}
	return nil, domain.ErrContentNotFound
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
