package app

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/curator-backend/internal/clients/redis"
	"github.com/yungbote/curator-backend/internal/platform/crypto"
	"github.com/yungbote/curator-backend/internal/platform/logger"
	"github.com/yungbote/curator-backend/internal/platform/objectstore"
	"github.com/yungbote/curator-backend/internal/services"
)

type Clients struct {
	Redis       *goredis.Client
	Revocations services.RevocationStore
	// JobPublisher is nil without Redis; queued jobs are then only logged.
	JobPublisher services.JobPublisher
	Bucket       objectstore.BucketService
	Cipher       *crypto.Cipher
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if cfg.RedisAddr != "" {
		rdb, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		out.Revocations = redis.NewTokenRevocations(log, rdb)
		out.JobPublisher = redis.NewJobBus(log, rdb, cfg.RedisJobChannel)
	} else {
		log.Warn("REDIS_ADDR not set; logout revocation and job publishing are disabled")
		out.Revocations = services.NoopRevocations{}
	}

	// Object storage
	bucket, err := resolveBucketService(log, cfg.Storage)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.Bucket = bucket

	// Connection config encryption
	if cfg.EncryptionKey != "" {
		cipher, err := crypto.NewCipherFromHex(cfg.EncryptionKey)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init cipher: %w", err)
		}
		out.Cipher = cipher
	} else {
		log.Warn("ENCRYPTION_KEY not set; API connection configs are stored unencrypted")
	}
	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
}
