package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nimbusworks/accounts-api/internal/domain/entity"
)

func sessionKey(token string) string {
	return "session:" + token
}

// SessionStore persists sessions as Redis hashes keyed by token, with a
// TTL matching the session expiry so Redis reaps stale sessions itself.
type SessionStore struct {
	rdb *redis.Client
}

func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

func (s *SessionStore) Save(ctx context.Context, sess *entity.Session) error {
	key := sessionKey(sess.Token)
	fields := map[string]any{
		"user_id":    sess.UserID,
		"created_at": sess.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at": sess.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": sess.ExpiresAt.UTC().Format(time.RFC3339Nano),
	}
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, fields)
	pipe.ExpireAt(ctx, key, sess.ExpiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Get(ctx context.Context, token string) (*entity.Session, error) {
	data, err := s.rdb.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	sess := &entity.Session{Token: token, UserID: data["user_id"]}
	sess.CreatedAt, _ = time.Parse(time.RFC3339Nano, data["created_at"])
	sess.UpdatedAt, _ = time.Parse(time.RFC3339Nano, data["updated_at"])
	sess.ExpiresAt, _ = time.Parse(time.RFC3339Nano, data["expires_at"])
	return sess, nil
}

// Touch extends the session validity window after a sliding refresh.
func (s *SessionStore) Touch(ctx context.Context, token string, updatedAt, expiresAt time.Time) error {
	key := sessionKey(token)
	pipe := s.rdb.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"updated_at": updatedAt.UTC().Format(time.RFC3339Nano),
		"expires_at": expiresAt.UTC().Format(time.RFC3339Nano),
	})
	pipe.ExpireAt(ctx, key, expiresAt)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.rdb.Del(ctx, sessionKey(token)).Err()
}
