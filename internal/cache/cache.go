package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	epochKey   = "summary:epoch"
	entryTTL   = 5 * time.Minute
	refreshGap = 5 * time.Minute
)

// Summary caches rendered /usage/summary response bodies in Redis.
//
// Keys embed a write epoch that every ingest bumps, so two identical
// reads with no intervening write are served the exact same bytes and
// any write naturally invalidates all cached summaries. The epoch is
// resolved once per request: Get returns the epoch it observed, and Set
// must store under that same epoch, so a write landing between a miss
// and its Set orphans the stale body instead of publishing it under the
// post-write epoch. A nil *Summary is valid and disables caching.
type Summary struct {
	client *redis.Client
}

// New connects to Redis at redisURL and pings it. Callers treat a
// failure here as "run without cache", not as fatal.
func New(redisURL string) (*Summary, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Summary{client: client}, nil
}

// Get returns the cached body for (username, granularity) together with
// the epoch it observed. The epoch must be passed back to Set when the
// caller computes a fresh body for this miss. Any Redis failure is a
// miss.
func (c *Summary) Get(ctx context.Context, username, granularity string) ([]byte, int64, bool) {
	if c == nil {
		return nil, 0, false
	}
	epoch := c.epoch(ctx)
	body, err := c.client.Get(ctx, key(username, granularity, epoch)).Bytes()
	if err != nil {
		return nil, epoch, false
	}
	return body, epoch, true
}

// Set stores a rendered body under the epoch observed by the Get that
// missed. If a write bumped the epoch in between, the entry lands under
// the stale epoch and is never served. Best effort.
func (c *Summary) Set(ctx context.Context, username, granularity string, epoch int64, body []byte) {
	if c == nil {
		return
	}
	if err := c.client.Set(ctx, key(username, granularity, epoch), body, entryTTL).Err(); err != nil {
		log.Printf("summary cache set failed: %v", err)
	}
}

// Bump advances the write epoch, orphaning every cached summary. Called
// after each successful ingest.
func (c *Summary) Bump(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Incr(ctx, epochKey).Err(); err != nil {
		log.Printf("summary cache bump failed: %v", err)
	}
}

func (c *Summary) epoch(ctx context.Context) int64 {
	epoch, err := c.client.Get(ctx, epochKey).Int64()
	if err != nil && err != redis.Nil {
		// Force a miss rather than serving a stale epoch.
		return time.Now().UnixNano()
	}
	return epoch
}

func key(username, granularity string, epoch int64) string {
	if username == "" {
		username = "*"
	}
	return fmt.Sprintf("summary:%d:%s:%s", epoch, granularity, username)
}

// StartRefresher launches a goroutine that re-warms the unfiltered
// summary every few minutes, so the most common dashboard query rarely
// recomputes on demand. compute renders the same bytes the handler
// would serve. The epoch is observed before computing, so a write
// landing mid-computation orphans the refreshed body.
func StartRefresher(c *Summary, granularity string, compute func() ([]byte, error)) {
	if c == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(refreshGap)
		defer ticker.Stop()
		for {
			_, epoch, _ := c.Get(context.Background(), "", granularity)
			body, err := compute()
			if err != nil {
				log.Printf("summary refresh error: %v", err)
			} else {
				c.Set(context.Background(), "", granularity, epoch, body)
			}
			<-ticker.C
		}
	}()
}
