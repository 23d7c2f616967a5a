package redis

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches raw quiz content from a backing store (files, Postgres).
type ContentLoader interface {
	LoadContent(ctx context.Context, subject string) ([]byte, error)
}

// ContentRepository caches raw quiz content in Redis and falls back to a loader on cache miss.
// Content is stored as: SET quiz:content:{subject} {json} EX {ttl}
type ContentRepository struct {
	client *redis.Client
	loader ContentLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewContentRepository(client *redis.Client, loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, subject string) ([]byte, error) {
	key := r.contentKey(subject)

	if data, err := r.client.Get(ctx, key).Bytes(); err == nil {
		return data, nil
	}

	result, err, _ := r.sf.Do(subject, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		data, err := r.client.Get(ctx, key).Bytes()
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, redis.Nil) {
			// cache unavailable; still serve from the loader
			data, err := r.loader.LoadContent(ctx, subject)
			if err != nil {
				return nil, err
			}
			return data, nil
		}

		data, err = r.loader.LoadContent(ctx, subject)
		if err != nil {
			return nil, err
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}

// Invalidate drops cached content for subject, e.g. after content is republished.
func (r *ContentRepository) Invalidate(ctx context.Context, subject string) error {
	return r.client.Del(ctx, r.contentKey(subject)).Err()
}

func (r *ContentRepository) contentKey(subject string) string {
	return "quiz:content:" + subject
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	r.rndMu.Lock()
	defer r.rndMu.Unlock()
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
