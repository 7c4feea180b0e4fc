package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yungbote/curator-backend/internal/platform/logger"
)

// JobBus announces queued processing jobs to whatever worker fleet listens on
// the channel. Nothing in this process consumes it.
type JobBus struct {
	log     *logger.Logger
	rdb     Commander
	channel string
}

func NewJobBus(log *logger.Logger, rdb Commander, channel string) *JobBus {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = "processing_jobs"
	}
	return &JobBus{log: log.With("client", "RedisJobBus"), rdb: rdb, channel: channel}
}

func (b *JobBus) Channel() string { return b.channel }

// Publish sends msg as JSON. Any JSON-marshalable value is accepted.
func (b *JobBus) Publish(ctx context.Context, msg any) error {
	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal job message: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, raw).Err(); err != nil {
		return fmt.Errorf("publish job message: %w", err)
	}
	return nil
}
