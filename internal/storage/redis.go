package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ekabrahmaa/prakriti-bot/internal/domain/entities"
)

const scanBatch = 100

// RedisStore keeps quiz sessions in redis as JSON documents with a sliding TTL.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new RedisStore. Keys are namespaced under prefix.
func NewRedisStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisStore) sessionKey(id string) string {
	return s.prefix + ":session:" + id
}

func (s *RedisStore) userKey(userID int64) string {
	return s.prefix + ":user:" + strconv.FormatInt(userID, 10) + ":session"
}

// Save stores the session and refreshes its expiry.
func (s *RedisStore) Save(ctx context.Context, session *entities.QuizSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	userKey := s.userKey(session.UserID)

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.ID), data, s.ttl)
		if isOpen(session) {
			pipe.Set(ctx, userKey, session.ID, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}

	if !isOpen(session) {
		if err := s.dropUserIndex(ctx, session.UserID, session.ID); err != nil {
			return err
		}
	}

	return nil
}

// Get retrieves a session by ID.
func (s *RedisStore) Get(ctx context.Context, sessionID string) (*entities.QuizSession, error) {
	data, err := s.rdb.Get(ctx, s.sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session entities.QuizSession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	return &session, nil
}

// GetActiveByUser retrieves the user's open session.
func (s *RedisStore) GetActiveByUser(ctx context.Context, userID int64) (*entities.QuizSession, error) {
	id, err := s.rdb.Get(ctx, s.userKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get user session: %w", err)
	}

	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isOpen(session) {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// Delete removes a session and its user index entry.
func (s *RedisStore) Delete(ctx context.Context, sessionID string) error {
	session, err := s.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return err
	}

	if err := s.rdb.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	return s.dropUserIndex(ctx, session.UserID, sessionID)
}

// ListActive scans every stored session and returns the open ones.
func (s *RedisStore) ListActive(ctx context.Context) ([]*entities.QuizSession, error) {
	var (
		cursor uint64
		out    []*entities.QuizSession
	)

	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+":session:*", scanBatch).Result()
		if err != nil {
			return nil, fmt.Errorf("scan sessions: %w", err)
		}

		if len(keys) > 0 {
			values, err := s.rdb.MGet(ctx, keys...).Result()
			if err != nil {
				return nil, fmt.Errorf("load sessions: %w", err)
			}

			for _, v := range values {
				raw, ok := v.(string)
				if !ok {
					continue // expired between SCAN and MGET
				}
				var session entities.QuizSession
				if err := json.Unmarshal([]byte(raw), &session); err != nil {
					return nil, fmt.Errorf("unmarshal session: %w", err)
				}
				if isOpen(&session) {
					out = append(out, &session)
				}
			}
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return out, nil
}

// PurgeExpired is a no-op, redis expires keys by itself.
func (s *RedisStore) PurgeExpired(context.Context) (int, error) {
	return 0, nil
}

func (s *RedisStore) dropUserIndex(ctx context.Context, userID int64, sessionID string) error {
	key := s.userKey(userID)

	current, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("get user session: %w", err)
	}
	if current != sessionID {
		return nil
	}

	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("delete user session: %w", err)
	}

	return nil
}
