package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"congregate/internal/models"
)

type CacheService interface {
	// Song caching
	GetSong(ctx context.Context, orgID, songID uuid.UUID) (*models.Song, error)
	SetSong(ctx context.Context, orgID uuid.UUID, song *models.Song, ttl time.Duration) error
	DeleteSong(ctx context.Context, orgID, songID uuid.UUID) error

	// Service plan caching
	GetPlan(ctx context.Context, orgID, planID uuid.UUID) (*models.ServicePlan, error)
	SetPlan(ctx context.Context, orgID uuid.UUID, plan *models.ServicePlan, ttl time.Duration) error
	DeletePlan(ctx context.Context, orgID, planID uuid.UUID) error

	// Cache invalidation
	InvalidateOrganizationCache(ctx context.Context, orgID uuid.UUID) error

	// Session management
	SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error
	GetSession(ctx context.Context, sessionID string) (string, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Rate limiting
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Generic string operations for token management
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis://host:port and rediss://host:port in addition to host:port
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetSong(ctx context.Context, orgID, songID uuid.UUID) (*models.Song, error) {
	key := fmt.Sprintf("congregate:song:%s:%s", orgID.String(), songID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var song models.Song
	if err := json.Unmarshal(data, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

func (r *redisCacheService) SetSong(ctx context.Context, orgID uuid.UUID, song *models.Song, ttl time.Duration) error {
	key := fmt.Sprintf("congregate:song:%s:%s", orgID.String(), song.ID.String())
	data, err := json.Marshal(song)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteSong(ctx context.Context, orgID, songID uuid.UUID) error {
	key := fmt.Sprintf("congregate:song:%s:%s", orgID.String(), songID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetPlan(ctx context.Context, orgID, planID uuid.UUID) (*models.ServicePlan, error) {
	key := fmt.Sprintf("congregate:plan:%s:%s", orgID.String(), planID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var plan models.ServicePlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *redisCacheService) SetPlan(ctx context.Context, orgID uuid.UUID, plan *models.ServicePlan, ttl time.Duration) error {
	key := fmt.Sprintf("congregate:plan:%s:%s", orgID.String(), plan.ID.String())
	data, err := json.Marshal(plan)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeletePlan(ctx context.Context, orgID, planID uuid.UUID) error {
	key := fmt.Sprintf("congregate:plan:%s:%s", orgID.String(), planID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) InvalidateOrganizationCache(ctx context.Context, orgID uuid.UUID) error {
	pattern := fmt.Sprintf("congregate:*:%s:*", orgID.String())
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return err
	}

	if len(keys) > 0 {
		return r.client.Del(ctx, keys...).Err()
	}
	return nil
}

func (r *redisCacheService) SetSession(ctx context.Context, sessionID, userID string, ttl time.Duration) error {
	key := fmt.Sprintf("congregate:session:%s", sessionID)
	return r.client.Set(ctx, key, userID, ttl).Err()
}

func (r *redisCacheService) GetSession(ctx context.Context, sessionID string) (string, error) {
	key := fmt.Sprintf("congregate:session:%s", sessionID)
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // not found
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) DeleteSession(ctx context.Context, sessionID string) error {
	key := fmt.Sprintf("congregate:session:%s", sessionID)
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	cacheKey := fmt.Sprintf("congregate:ratelimit:%s", key)
	count, err := r.client.Incr(ctx, cacheKey).Result()
	if err != nil {
		return true, err
	}

	// Set expiry on first request
	if count == 1 {
		r.client.Expire(ctx, cacheKey, window)
	}

	return count > int64(limit), nil
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil // cache miss
		}
		return "", err
	}
	return val, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
