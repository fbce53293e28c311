package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/valter-silva-au/commtrack/pkg/models"
)

const (
	redisTimeout = 5 * time.Second
	// redisUpdateAttempts bounds optimistic retries when another writer
	// changes the snapshot key between WATCH and EXEC.
	redisUpdateAttempts = 5
)

// SnapshotKey returns the Redis key holding the snapshot of a namespace.
func SnapshotKey(namespace string) string {
	return fmt.Sprintf("commtrack:%s:snapshot", namespace)
}

type redisStore struct {
	rdb       *redis.Client
	namespace string
}

// NewRedisStore creates a SnapshotStore that keeps the snapshot as one JSON
// value under SnapshotKey(cfg.Namespace).
func NewRedisStore(cfg models.RedisConfig) (SnapshotStore, error) {
	if cfg.Namespace == "" {
		return nil, fmt.Errorf("redis namespace cannot be empty")
	}
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis address cannot be empty")
	}
	return &redisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		namespace: cfg.Namespace,
	}, nil
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}

func (s *redisStore) Load() (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return decodeRedisSnapshot(s.rdb.Get(ctx, SnapshotKey(s.namespace)).Bytes())
}

func decodeRedisSnapshot(data []byte, err error) (*models.Snapshot, error) {
	if errors.Is(err, redis.Nil) {
		return emptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot from redis: %w", err)
	}

	var snap models.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("loading snapshot from redis: decoding JSON: %w", err)
	}
	if err := checkVersion(&snap); err != nil {
		return nil, fmt.Errorf("loading snapshot from redis: %w", err)
	}
	fillEmpty(&snap)
	return &snap, nil
}

func (s *redisStore) Save(snap *models.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("saving snapshot to redis: encoding JSON: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.rdb.Set(ctx, SnapshotKey(s.namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("saving snapshot to redis: %w", err)
	}
	return nil
}

// Update watches the snapshot key and writes inside MULTI/EXEC, retrying
// from a fresh read when the key changed underneath.
func (s *redisStore) Update(fn func(latest *models.Snapshot) (*models.Snapshot, error)) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	key := SnapshotKey(s.namespace)
	apply := func(tx *redis.Tx) error {
		latest, err := decodeRedisSnapshot(tx.Get(ctx, key).Bytes())
		if err != nil {
			return err
		}
		next, err := fn(latest)
		if err != nil || next == nil {
			return err
		}
		data, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("saving snapshot to redis: encoding JSON: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("saving snapshot to redis: %w", err)
		}
		return nil
	}

	for attempt := 0; attempt < redisUpdateAttempts; attempt++ {
		err := s.rdb.Watch(ctx, apply, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("saving snapshot to redis: %s kept changing after %d attempts", key, redisUpdateAttempts)
}
