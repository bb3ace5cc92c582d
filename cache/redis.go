package cache

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore adalah implementasi Store berbasis redis untuk deployment yang
// butuh cache shared antar instance. Nilai di-round-trip lewat JSON, jadi
// hasil Fetch dari hit adalah hasil json.Unmarshal (map/slice/float64), bukan
// struct aslinya; cocok untuk read path yang langsung diserialisasi lagi ke
// response. Counter hit/miss disimpan lokal per proses.
type RedisStore struct {
	client *redis.Client
	prefix string

	totalRequests int64
	hits          int64
	misses        int64
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "restoops"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// NewRedisClient membuat client dari address; return nil kalau server tidak
// bisa di-ping supaya caller bisa fallback ke MemoryStore.
func NewRedisClient(addr, password string, db int) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil
	}
	return client
}

func (r *RedisStore) key(k string) string { return r.prefix + ":" + k }

func (r *RedisStore) Fetch(key string, ttl time.Duration, loader func() (interface{}, error)) (interface{}, error) {
	ctx := context.Background()
	atomic.AddInt64(&r.totalRequests, 1)

	raw, err := r.client.Get(ctx, r.key(key)).Bytes()
	if err == nil {
		var value interface{}
		if jsonErr := json.Unmarshal(raw, &value); jsonErr == nil {
			atomic.AddInt64(&r.hits, 1)
			return value, nil
		}
	}

	atomic.AddInt64(&r.misses, 1)
	value, err := loader()
	if err != nil {
		return nil, err
	}

	if raw, jsonErr := json.Marshal(value); jsonErr == nil {
		// Kegagalan SET tidak menggagalkan read; cache hanya best-effort di sisi simpan.
		r.client.Set(ctx, r.key(key), raw, ttl)
	}
	return value, nil
}

func (r *RedisStore) Invalidate(pattern string) int {
	ctx := context.Background()
	removed := 0

	iter := r.client.Scan(ctx, 0, r.prefix+":*"+pattern+"*", 0).Iterator()
	for iter.Next(ctx) {
		if r.client.Del(ctx, iter.Val()).Err() == nil {
			removed++
		}
	}
	return removed
}

func (r *RedisStore) Stats() Stats {
	stats := Stats{
		TotalRequests: atomic.LoadInt64(&r.totalRequests),
		Hits:          atomic.LoadInt64(&r.hits),
		Misses:        atomic.LoadInt64(&r.misses),
	}
	if stats.TotalRequests > 0 {
		stats.HitRatePercent = float64(stats.Hits) / float64(stats.TotalRequests) * 100
	}

	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		stats.EntryCount++
	}
	return stats
}

func (r *RedisStore) Flush() {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 0).Iterator()
	for iter.Next(ctx) {
		r.client.Del(ctx, iter.Val())
	}
}
