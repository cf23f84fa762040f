package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/socialhub/internal/repository"
	"github.com/d60-Lab/socialhub/pkg/logger"
)

// Author 对外展示的作者投影，只含 id 与 name
type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// evicted 改名后写入的墓碑值，存活期内读请求回源且回填不会覆盖它
const evicted = "evicted"

// AuthorCache 作者投影的读穿缓存。rdb 为 nil 时直接回源数据库。
type AuthorCache struct {
	users repository.UserRepository
	rdb   *redis.Client
	ttl   time.Duration
	guard time.Duration

	hits  atomic.Int64
	loads atomic.Int64
}

func NewAuthorCache(users repository.UserRepository, rdb *redis.Client, ttl time.Duration) *AuthorCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &AuthorCache{users: users, rdb: rdb, ttl: ttl, guard: 5 * time.Second}
}

func authorKey(id string) string { return fmt.Sprintf("author:%s", id) }

// Resolve 批量解析作者；缓存不可用时降级为数据库查询，不存在的 id 不出现在结果中
func (c *AuthorCache) Resolve(ctx context.Context, ids []string) (map[string]Author, error) {
	ids = dedupe(ids)
	out := make(map[string]Author, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	if c.rdb != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = authorKey(id)
		}
		vals, err := c.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			logger.Warn("author cache mget failed", zap.Error(err))
		} else {
			for i, v := range vals {
				str, ok := v.(string)
				if !ok || str == evicted {
					continue
				}
				var a Author
				if uErr := json.Unmarshal([]byte(str), &a); uErr == nil {
					out[ids[i]] = a
				}
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := out[id]; !ok {
			missing = append(missing, id)
		}
	}
	c.hits.Add(int64(len(ids) - len(missing)))
	if len(missing) == 0 {
		return out, nil
	}

	c.loads.Add(1)
	users, err := c.users.FindByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	fill := make([]Author, len(users))
	for i, u := range users {
		fill[i] = Author{ID: u.ID, Name: u.Name}
		out[u.ID] = fill[i]
	}
	c.fill(ctx, fill)
	return out, nil
}

// fill 只在 key 不存在时写入：改名前读到的旧值晚于 Evict 到达时会被墓碑挡住
func (c *AuthorCache) fill(ctx context.Context, authors []Author) {
	if c.rdb == nil || len(authors) == 0 {
		return
	}
	pipe := c.rdb.Pipeline()
	for _, a := range authors {
		if payload, err := json.Marshal(a); err == nil {
			pipe.SetNX(ctx, authorKey(a.ID), payload, c.ttl)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		logger.Warn("author cache fill failed", zap.Error(err))
	}
}

// Evict 用户改名后以短期墓碑替换缓存
func (c *AuthorCache) Evict(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Set(ctx, authorKey(id), evicted, c.guard).Err(); err != nil {
		logger.Warn("author cache evict failed", zap.String("user", id), zap.Error(err))
	}
}

// Counters 统计命中与回源次数
func (c *AuthorCache) Counters() CacheCounters {
	return CacheCounters{Hits: c.hits.Load(), Loads: c.loads.Load()}
}

type CacheCounters struct {
	Hits  int64
	Loads int64
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
