package ratelimit

import (
	"github.com/parityhq/paritybanner/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Provide returns the banner endpoint limiter, or nil when rate limiting is
// disabled or redis is not configured. A nil *TokenBucket is safe to call.
func Provide(cfg config.Config, log *zap.Logger) *TokenBucket {
	if !cfg.RateLimit.Enabled || cfg.RateLimit.RedisAddr == "" {
		log.Named("ratelimit").Info("banner rate limiting disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
	})
	log.Named("ratelimit").Info("banner rate limiting enabled",
		zap.String("redis_addr", cfg.RateLimit.RedisAddr),
		zap.Float64("rate", cfg.RateLimit.Rate),
		zap.Int("burst", cfg.RateLimit.Burst),
	)
	return NewTokenBucket(client)
}

var Module = fx.Module("ratelimit",
	fx.Provide(Provide),
)
