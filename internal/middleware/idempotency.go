package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const idempotencyHeader = "Idempotency-Key"

// idempotencyInFlightTTL bounds how long a reservation survives a request
// whose result never got saved.
const idempotencyInFlightTTL = 2 * time.Minute

// IdempotencyRecord is what the store keeps per key. Status is zero while the
// first request is still running.
type IdempotencyRecord struct {
	RequestHash string `json:"request_hash"`
	Status      int    `json:"status"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore persists replayable responses.
type IdempotencyStore interface {
	// Reserve stores rec under key unless the key exists. It reports whether
	// the reservation was made.
	Reserve(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) (bool, error)
	// Load returns nil when the key is unknown.
	Load(ctx context.Context, key string) (*IdempotencyRecord, error)
	Save(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// RedisIdempotencyStore keeps records in Redis with a TTL.
type RedisIdempotencyStore struct {
	client *redis.Client
	prefix string
}

func NewRedisIdempotencyStore(client *redis.Client) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{client: client, prefix: "idempotency:"}
}

func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return false, err
	}
	return s.client.SetNX(ctx, s.prefix+key, payload, ttl).Result()
}

func (s *RedisIdempotencyStore) Load(ctx context.Context, key string) (*IdempotencyRecord, error) {
	payload, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var rec IdempotencyRecord
	if err := json.Unmarshal(payload, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisIdempotencyStore) Save(ctx context.Context, key string, rec IdempotencyRecord, ttl time.Duration) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+key, payload, ttl).Err()
}

func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key from the same user. Reusing a key with a different body is
// rejected, as is a retry while the first request is still in flight. Failed
// requests free the key so the client can retry. A nil store disables it.
func Idempotency(store IdempotencyStore, ttl time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := c.Get(idempotencyHeader)
		if key == "" || store == nil {
			return c.Next()
		}

		userID, _ := GetCurrentUserID(c)
		scoped := userID.String() + ":" + key
		hash := requestHash(c, userID.String())
		ctx := c.UserContext()

		reserved, err := store.Reserve(ctx, scoped, IdempotencyRecord{RequestHash: hash}, min(ttl, idempotencyInFlightTTL))
		if err != nil {
			log.Printf("[Idempotency] reserve %s failed: %v", key, err)
			return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
		}

		if !reserved {
			existing, err := store.Load(ctx, scoped)
			if err != nil {
				log.Printf("[Idempotency] load %s failed: %v", key, err)
				return fiber.NewError(fiber.StatusServiceUnavailable, "idempotency store unavailable")
			}
			if existing == nil {
				return fiber.NewError(fiber.StatusConflict, "idempotency key expired mid-request, retry")
			}
			if existing.RequestHash != hash {
				return fiber.NewError(fiber.StatusUnprocessableEntity, "idempotency key reused with a different request")
			}
			if existing.Status == 0 {
				return fiber.NewError(fiber.StatusConflict, "request with this idempotency key is in progress")
			}
			c.Set("Idempotent-Replayed", "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(existing.Status).Send(existing.Body)
		}

		if err := c.Next(); err != nil {
			release(store, scoped)
			return err
		}

		status := c.Response().StatusCode()
		if status < 200 || status >= 300 {
			release(store, scoped)
			return nil
		}

		body := append([]byte(nil), c.Response().Body()...)
		if err := store.Save(ctx, scoped, IdempotencyRecord{RequestHash: hash, Status: status, Body: body}, ttl); err != nil {
			log.Printf("[Idempotency] save %s failed: %v", key, err)
			release(store, scoped)
		}
		return nil
	}
}

func release(store IdempotencyStore, key string) {
	if err := store.Release(context.Background(), key); err != nil {
		log.Printf("[Idempotency] release failed: %v", err)
	}
}

func requestHash(c *fiber.Ctx, userID string) string {
	h := sha256.New()
	h.Write([]byte(c.Method() + ":" + c.Path() + ":" + userID + ":"))
	h.Write(c.Body())
	return hex.EncodeToString(h.Sum(nil))
}
