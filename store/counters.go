package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"grabbi-engine/models"
	"grabbi-engine/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	errUnknownCounter = errors.New("unknown upsell counter")
	errConflict       = errors.New("concurrent counter update")
)

// Counters keeps the monotonic upsell counters. Increment must never lose an
// update under concurrent callers.
type Counters interface {
	Increment(ctx context.Context, id uuid.UUID, counter models.UpsellCounter) error
	Get(ctx context.Context, id uuid.UUID) (views, conversions int64, err error)
}

// DBCounters increments the upsell row with a compare-and-swap update and
// retries on conflict.
type DBCounters struct {
	DB    *gorm.DB
	Retry *utils.RetryConfig
}

func NewDBCounters(db *gorm.DB, retry *utils.RetryConfig) *DBCounters {
	if retry == nil {
		retry = utils.DefaultRetryConfig()
	}
	return &DBCounters{DB: db, Retry: retry}
}

func (c *DBCounters) Increment(ctx context.Context, id uuid.UUID, counter models.UpsellCounter) error {
	const op = "store.DBCounters.Increment"
	if !counter.Valid() {
		return &Error{Op: op, ID: id.String(), Err: errUnknownCounter}
	}
	column := string(counter)

	err := utils.Retry(ctx, c.Retry, func() error {
		var values []int64
		if err := c.DB.WithContext(ctx).
			Model(&models.Upsell{}).
			Where("id = ?", id).
			Limit(1).
			Pluck(column, &values).Error; err != nil {
			return err
		}
		if len(values) == 0 {
			return utils.Permanent(notFound(op, id.String()))
		}
		current := values[0]

		upd := c.DB.WithContext(ctx).
			Model(&models.Upsell{}).
			Where("id = ? AND "+column+" = ?", id, current).
			UpdateColumn(column, current+1)
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected == 0 {
			return errConflict
		}
		return nil
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	log.Printf("upsell %s: giving up on %s increment: %v", id, column, err)
	return unavailable(op, id.String(), err)
}

func (c *DBCounters) Get(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	const op = "store.DBCounters.Get"
	var u models.Upsell
	if err := c.DB.WithContext(ctx).Select("id", "views", "conversions").First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, notFound(op, id.String())
		}
		return 0, 0, unavailable(op, id.String(), err)
	}
	return u.Views, u.Conversions, nil
}

const redisCounterPrefix = "grabbi:upsell:counters:"

// RedisCounters keeps counters in one redis hash per upsell, incremented with HINCRBY.
type RedisCounters struct {
	Client *redis.Client
	Prefix string
}

func NewRedisCounters(client *redis.Client) *RedisCounters {
	return &RedisCounters{Client: client, Prefix: redisCounterPrefix}
}

func (c *RedisCounters) key(id uuid.UUID) string {
	return c.Prefix + id.String()
}

func (c *RedisCounters) Increment(ctx context.Context, id uuid.UUID, counter models.UpsellCounter) error {
	const op = "store.RedisCounters.Increment"
	if !counter.Valid() {
		return &Error{Op: op, ID: id.String(), Err: errUnknownCounter}
	}
	if err := c.Client.HIncrBy(ctx, c.key(id), string(counter), 1).Err(); err != nil {
		return unavailable(op, id.String(), err)
	}
	return nil
}

func (c *RedisCounters) Get(ctx context.Context, id uuid.UUID) (int64, int64, error) {
	const op = "store.RedisCounters.Get"
	vals, err := c.Client.HMGet(ctx, c.key(id), string(models.CounterViews), string(models.CounterConversions)).Result()
	if err != nil {
		return 0, 0, unavailable(op, id.String(), err)
	}
	views, err := counterValue(vals[0])
	if err != nil {
		return 0, 0, unavailable(op, id.String(), err)
	}
	conversions, err := counterValue(vals[1])
	if err != nil {
		return 0, 0, unavailable(op, id.String(), err)
	}
	return views, conversions, nil
}

func counterValue(v interface{}) (int64, error) {
	switch s := v.(type) {
	case nil:
		return 0, nil
	case string:
		return strconv.ParseInt(s, 10, 64)
	}
	return 0, fmt.Errorf("unexpected counter value %T", v)
}

// ConnectRedis parses a redis URL (or a bare host:port) and checks the connection.
func ConnectRedis(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		opts = &redis.Options{Addr: redisURL}
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}
