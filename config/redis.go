package config

import (
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

// ConnectRedis establishes connection to Redis. It returns nil when Redis is
// not configured or unreachable, in which case listing locks stay in process.
func ConnectRedis(settings *Settings) *redis.Client {
	if settings.RedisAddr == "" {
		log.Println("REDIS_ADDR not set, listing locks are process local")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         settings.RedisAddr,
		Password:     settings.RedisPassword,
		DB:           settings.RedisDB,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		log.Println("Distributed listing locks will be disabled")
		client.Close()
		return nil
	}

	log.Println("Connected to Redis")
	return client
}
