package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"adyenbridge/internal/adyen"
)

// NotificationDeduper tracks processed webhook deliveries. The gateway keeps
// redelivering a notification until it is acknowledged, so the same item can
// arrive more than once. Checking and marking are separate steps: a key is
// marked only after the delivery has been authenticated and stored, so a
// rejected or failed delivery leaves no trace and its redelivery is processed.
type NotificationDeduper interface {
	IsDuplicate(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

type redisNotificationDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisNotificationDeduper) IsDuplicate(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+":"+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *redisNotificationDeduper) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.prefix+":"+key, "1", d.ttl).Err()
}

type memoryNotificationDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryNotificationDeduper(ttl time.Duration) *memoryNotificationDeduper {
	now := time.Now()
	return &memoryNotificationDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryNotificationDeduper) IsDuplicate(_ context.Context, key string) (bool, error) {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.seen[key]
	return ok && exp.After(now), nil
}

func (d *memoryNotificationDeduper) Mark(_ context.Context, key string) error {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}
	return nil
}

// NewNotificationDeduper builds a Redis deduper and falls back to in-memory
// on failure.
func NewNotificationDeduper(addr, pass string, db int, ttl time.Duration) (NotificationDeduper, error) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if addr == "" {
		return newMemoryNotificationDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryNotificationDeduper(ttl), err
	}

	return &redisNotificationDeduper{
		client: client,
		prefix: "adyen:notification",
		ttl:    ttl,
	}, nil
}

// WebhookDedup drops deliveries whose every item was already processed,
// keyed on pspReference and eventCode. Deliveries that fail to parse pass
// through untouched; the authenticator downstream rejects them.
//
// Keys are marked only after the handler has answered 200: a delivery that
// fails signature verification (401) or persistence (500) must never count
// as seen, otherwise the gateway's redelivery would be swallowed and the
// event lost. Until the handler accepts a delivery, nothing its body claims
// is trusted, including the identity used as the dedup key.
func WebhookDedup(deduper NotificationDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil {
				return next(c)
			}

			rawBody, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(rawBody))
			if len(rawBody) == 0 {
				return next(c)
			}

			notification, err := adyen.ParseNotification(rawBody)
			if err != nil {
				return next(c)
			}
			items := notification.Items()
			if len(items) == 0 {
				return next(c)
			}

			keys := make([]string, 0, len(items))
			allDuplicates := true
			for _, item := range items {
				key := item.PSPReference + ":" + item.EventCode
				keys = append(keys, key)

				isDuplicate, err := deduper.IsDuplicate(req.Context(), key)
				if err != nil {
					return next(c)
				}
				if !isDuplicate {
					allDuplicates = false
				}
			}
			if allDuplicates {
				// Acknowledge so the gateway stops redelivering.
				return c.String(http.StatusOK, "[accepted]")
			}

			if err := next(c); err != nil {
				return err
			}

			if c.Response().Status == http.StatusOK {
				for _, key := range keys {
					// Best effort: a lost mark costs one redundant redelivery.
					_ = deduper.Mark(req.Context(), key)
				}
			}
			return nil
		}
	}
}
