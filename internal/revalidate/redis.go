package revalidate

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultPagePrefix = "page"
	DefaultChannel    = "beacon:revalidate"
)

// Redis drops cached page renders and announces the stale paths to subscribers.
type Redis struct {
	client  redis.Cmdable
	prefix  string
	channel string
}

func NewRedis(client redis.Cmdable) *Redis {
	return &Redis{client: client, prefix: DefaultPagePrefix, channel: DefaultChannel}
}

// PageKey is the cache key holding the render of path.
func (r *Redis) PageKey(path string) string {
	return r.prefix + ":" + path
}

func (r *Redis) Invalidate(ctx context.Context, paths ...string) error {
	if err := checkPaths(paths); err != nil {
		return err
	}
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, r.PageKey(p))
	}
	_, err := r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, keys...)
		pipe.Publish(ctx, r.channel, strings.Join(paths, ","))
		return nil
	})
	return err
}
