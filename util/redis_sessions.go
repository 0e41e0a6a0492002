package util

import (
	"context"
	"fmt"
	"time"

	"github.com/ariebrainware/physiofriend-api/config"
	"github.com/ariebrainware/physiofriend-api/model"
	"github.com/redis/go-redis/v9"
)

const removeSessionScript = `
	local removed = redis.call('SREM', KEYS[1], ARGV[1])
	if removed > 0 then
		local count = redis.call('SCARD', KEYS[1])
		if count == 0 then
			redis.call('DEL', KEYS[1])
		end
	end
	return removed
`

func sessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}

func principalSetKey(principalKey string) string {
	return fmt.Sprintf("principal_sessions:%s", principalKey)
}

// RegisterSession records an issued token so it can later be revoked. The session key
// and the per-principal set both expire with the token. No-op without Redis.
func RegisterSession(ctx context.Context, p model.Principal, ttl time.Duration) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Set(ctx, sessionKey(p.SessionID), p.Key(), ttl).Err(); err != nil {
		return err
	}
	setKey := principalSetKey(p.Key())
	if err := rdb.SAdd(ctx, setKey, p.SessionID).Err(); err != nil {
		return err
	}
	return rdb.Expire(ctx, setKey, ttl).Err()
}

// SessionActive reports whether the session is still registered. Without Redis every
// correctly signed token is accepted.
func SessionActive(ctx context.Context, sessionID string) (bool, error) {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return true, nil
	}
	n, err := rdb.Exists(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// RevokeSession deletes one session and drops it from the principal's set.
func RevokeSession(ctx context.Context, p model.Principal) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	if err := rdb.Del(ctx, sessionKey(p.SessionID)).Err(); err != nil {
		return err
	}
	return rdb.Eval(ctx, removeSessionScript, []string{principalSetKey(p.Key())}, p.SessionID).Err()
}

// InvalidatePrincipalSessions deletes every session of a principal, e.g. when a doctor is removed.
func InvalidatePrincipalSessions(ctx context.Context, principalKey string) error {
	rdb := config.GetRedisClient()
	if rdb == nil {
		return nil
	}
	setKey := principalSetKey(principalKey)
	members, err := rdb.SMembers(ctx, setKey).Result()
	if err != nil && err != redis.Nil {
		return err
	}
	for _, id := range members {
		_ = rdb.Del(ctx, sessionKey(id)).Err()
	}
	return rdb.Del(ctx, setKey).Err()
}
