package config

import (
	"context"
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client

// ConnectRedis sets up the client used for short-lived slot holds during
// booking creation. The app still works without it; holds degrade to the
// database conflict check alone.
func ConnectRedis() {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	Redis = redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       0,
	})

	if err := Redis.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis not reachable at %s: %v (slot holds disabled)", addr, err)
		Redis = nil
	}
}
