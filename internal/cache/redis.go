package cache

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const unreadTTL = 30 * time.Second

// Cache holds the redis client for short-lived view caches (unread
// badge counts). A nil receiver or failed connection degrades to
// cache-off behavior; callers never have to branch.
type Cache struct {
	client *redis.Client
}

// New connects to redis at addr. An empty addr or an unreachable server
// yields a disabled cache rather than an error.
func New(addr string) *Cache {
	if addr == "" {
		return &Cache{}
	}
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Printf("redis disabled: invalid REDIS_ADDR %q: %v", addr, err)
			return &Cache{}
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis disabled: %v", err)
		return &Cache{}
	}
	return &Cache{client: client}
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func unreadKey(uid string) string {
	return "unread:" + uid
}

// GetUnread returns the cached unread count for uid, if present.
func (c *Cache) GetUnread(ctx context.Context, uid string) (int64, bool) {
	if c == nil || c.client == nil {
		return 0, false
	}
	v, err := c.client.Get(ctx, unreadKey(uid)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// SetUnread caches the unread count for uid with a short TTL.
func (c *Cache) SetUnread(ctx context.Context, uid string, n int64) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Set(ctx, unreadKey(uid), n, unreadTTL).Err(); err != nil {
		log.Printf("cache set unread for %s: %v", uid, err)
	}
}

// InvalidateUnread drops cached counts after a successful write so the
// next badge read hits the store.
func (c *Cache) InvalidateUnread(ctx context.Context, uids ...string) {
	if c == nil || c.client == nil {
		return
	}
	keys := make([]string, 0, len(uids))
	for _, uid := range uids {
		keys = append(keys, unreadKey(uid))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Printf("cache invalidate unread: %v", err)
	}
}
