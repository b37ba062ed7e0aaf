package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"authguard/internal/lockout/models"
)

// Hash fields. Times are stored as Unix milliseconds.
const (
	fieldFailureCount   = "fc"
	fieldFirstFailureAt = "ffa"
	fieldLockedUntil    = "lu"
	fieldLastAttemptAt  = "la"
)

// incrementScript reconciles a lapsed lock, counts one failure, and returns the hash.
// KEYS[1] record key; ARGV now_ms, identity, operation.
var incrementScript = redis.NewScript(`
local now = tonumber(ARGV[1])
local lu = tonumber(redis.call('HGET', KEYS[1], 'lu') or '')
if lu and lu <= now then
	redis.call('HSET', KEYS[1], 'fc', 0)
	redis.call('HDEL', KEYS[1], 'lu', 'ffa')
	redis.call('PERSIST', KEYS[1])
end
local fc = redis.call('HINCRBY', KEYS[1], 'fc', 1)
if fc == 1 then
	redis.call('HSET', KEYS[1], 'ffa', ARGV[1])
end
redis.call('HSET', KEYS[1], 'la', ARGV[1], 'id', ARGV[2], 'op', ARGV[3])
return redis.call('HGETALL', KEYS[1])
`)

// lockScript sets lu only on a record with failures and no active lock. The key
// expires retention after the lock ends, which compacts lapsed records natively.
// The reply is the applied flag (1 or 0) followed by the flattened hash.
// KEYS[1] record key; ARGV until_ms, now_ms, expire_at_ms.
var lockScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return false
end
local fc = tonumber(redis.call('HGET', KEYS[1], 'fc') or '0')
local lu = tonumber(redis.call('HGET', KEYS[1], 'lu') or '')
local now = tonumber(ARGV[2])
local applied = 0
if fc > 0 and (not lu or lu <= now) then
	redis.call('HSET', KEYS[1], 'lu', ARGV[1])
	redis.call('PEXPIREAT', KEYS[1], ARGV[3])
	applied = 1
end
local reply = {applied}
for _, v in ipairs(redis.call('HGETALL', KEYS[1])) do
	reply[#reply + 1] = v
end
return reply
`)

// RedisLedger stores one hash per AttemptKey. Lua scripts make each mutation atomic.
type RedisLedger struct {
	client    redis.UniversalClient
	retention time.Duration
}

// NewRedis creates a Redis-backed ledger. retention is how long a record
// survives past the end of its lock before Redis expires it.
func NewRedis(client redis.UniversalClient, retention time.Duration) *RedisLedger {
	return &RedisLedger{client: client, retention: retention}
}

func (l *RedisLedger) Get(ctx context.Context, key models.AttemptKey) (*models.AttemptRecord, error) {
	fields, err := l.client.HGetAll(ctx, key.String()).Result()
	if err != nil {
		return nil, storageError(err, "get")
	}
	if len(fields) == 0 {
		return nil, nil
	}
	rec, err := recordFromHash(key, fields)
	if err != nil {
		return nil, storageError(err, "get")
	}
	return rec, nil
}

func (l *RedisLedger) IncrementFailure(ctx context.Context, key models.AttemptKey, now time.Time) (*models.AttemptRecord, error) {
	res, err := incrementScript.Run(ctx, l.client, []string{key.String()},
		now.UnixMilli(), key.Identity(), string(key.Operation())).Slice()
	if err != nil {
		return nil, storageError(err, "increment")
	}
	rec, err := recordFromReply(key, res)
	if err != nil {
		return nil, storageError(err, "increment")
	}
	return rec, nil
}

func (l *RedisLedger) Clear(ctx context.Context, key models.AttemptKey) error {
	if err := l.client.Del(ctx, key.String()).Err(); err != nil {
		return storageError(err, "clear")
	}
	return nil
}

func (l *RedisLedger) ApplyLock(ctx context.Context, key models.AttemptKey, until, now time.Time) (*models.AttemptRecord, bool, error) {
	res, err := lockScript.Run(ctx, l.client, []string{key.String()},
		until.UnixMilli(), now.UnixMilli(), until.Add(l.retention).UnixMilli()).Slice()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, storageError(err, "lock")
	}
	if len(res) == 0 {
		return nil, false, storageError(errors.New("empty lock reply"), "lock")
	}
	flag, ok := res[0].(int64)
	if !ok {
		return nil, false, storageError(fmt.Errorf("unexpected lock flag type %T", res[0]), "lock")
	}
	rec, err := recordFromReply(key, res[1:])
	if err != nil {
		return nil, false, storageError(err, "lock")
	}
	return rec, flag == 1, nil
}

// CompactExpired is a no-op: locked keys carry a PEXPIREAT and Redis removes them itself.
func (l *RedisLedger) CompactExpired(_ context.Context, _ time.Time) (int, error) {
	return 0, nil
}

func recordFromReply(key models.AttemptKey, reply []any) (*models.AttemptRecord, error) {
	if len(reply)%2 != 0 {
		return nil, fmt.Errorf("malformed hash reply of length %d", len(reply))
	}
	fields := make(map[string]string, len(reply)/2)
	for i := 0; i < len(reply); i += 2 {
		k, ok := reply[i].(string)
		if !ok {
			return nil, fmt.Errorf("unexpected field type %T", reply[i])
		}
		switch v := reply[i+1].(type) {
		case string:
			fields[k] = v
		case int64:
			fields[k] = strconv.FormatInt(v, 10)
		default:
			return nil, fmt.Errorf("unexpected value type %T for %s", v, k)
		}
	}
	return recordFromHash(key, fields)
}

func recordFromHash(key models.AttemptKey, fields map[string]string) (*models.AttemptRecord, error) {
	rec := &models.AttemptRecord{
		Identity:  key.Identity(),
		Operation: key.Operation(),
	}
	if v, ok := fields[fieldFailureCount]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", fieldFailureCount, err)
		}
		rec.FailureCount = n
	}
	var err error
	if rec.FirstFailureAt, err = parseMillis(fields, fieldFirstFailureAt); err != nil {
		return nil, err
	}
	if rec.LockedUntil, err = parseMillis(fields, fieldLockedUntil); err != nil {
		return nil, err
	}
	last, err := parseMillis(fields, fieldLastAttemptAt)
	if err != nil {
		return nil, err
	}
	if last != nil {
		rec.LastAttemptAt = *last
	}
	return rec, nil
}

func parseMillis(fields map[string]string, name string) (*time.Time, error) {
	v, ok := fields[name]
	if !ok || v == "" {
		return nil, nil
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	t := time.UnixMilli(ms).UTC()
	return &t, nil
}
