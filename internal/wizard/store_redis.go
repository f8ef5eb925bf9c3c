package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "dladmin/pkg/domain"
	"dladmin/pkg/platform/sentinel"
)

const (
	wizardKeyPrefix = "wizard:"
	// maxUpdateAttempts bounds optimistic retries when a WATCHed key changes.
	maxUpdateAttempts = 3
)

// RedisStore keeps sessions as JSON values with a sliding TTL so several
// server instances can share them. Updates use WATCH/MULTI transactions.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore constructs a Redis-backed session store.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func wizardKey(wizardID id.WizardID) string {
	return wizardKeyPrefix + wizardID.String()
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal wizard session: %w", err)
	}
	return s.client.Set(ctx, wizardKey(sess.ID), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, wizardID id.WizardID) (*Session, error) {
	return s.read(ctx, s.client, wizardKey(wizardID))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisStore) read(ctx context.Context, c getter, key string) (*Session, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get wizard session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("unmarshal wizard session: %w", err)
	}
	return &sess, nil
}

func (s *RedisStore) Update(ctx context.Context, wizardID id.WizardID, fn func(*Session) error) (*Session, error) {
	key := wizardKey(wizardID)
	var updated *Session

	txf := func(tx *redis.Tx) error {
		sess, err := s.read(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(sess); err != nil {
			return err
		}
		data, err := json.Marshal(sess)
		if err != nil {
			return fmt.Errorf("marshal wizard session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = sess
		return nil
	}

	for range maxUpdateAttempts {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update wizard session %s: %w", wizardID, sentinel.ErrConflict)
}

func (s *RedisStore) Delete(ctx context.Context, wizardID id.WizardID) error {
	n, err := s.client.Del(ctx, wizardKey(wizardID)).Result()
	if err != nil {
		return fmt.Errorf("delete wizard session: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
