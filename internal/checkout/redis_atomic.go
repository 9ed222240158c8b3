package checkout

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"ticketflow/internal/shared/constants"
)

// ErrInsufficientAvailability is returned when a requested quantity cannot be
// reserved because live holds from other sessions plus sold tickets exceed
// capacity.
var ErrInsufficientAvailability = errors.New("insufficient ticket availability")

// HoldLine is one ticket-type line of a reservation request. Available is the
// database-side headroom (quantity_total - quantity_sold) at request time.
type HoldLine struct {
	TicketTypeID uuid.UUID
	Quantity     int
	Available    int
}

// AtomicRedisOperations handles atomic Redis operations for ticket holds
type AtomicRedisOperations struct {
	redis *redis.Client
}

// NewAtomicRedisOperations creates a new atomic Redis operations handler
func NewAtomicRedisOperations(redisClient *redis.Client) *AtomicRedisOperations {
	return &AtomicRedisOperations{
		redis: redisClient,
	}
}

// Lua script for atomic ticket holding - prevents race conditions between
// concurrent checkouts. Each ticket type carries a hash of session_id ->
// "qty:expires_at" entries; expired entries are pruned lazily on every
// acquire so abandoned sessions stop counting against availability.
const luaAtomicTicketHold = `
-- KEYS[1] = session hold key
-- ARGV[1] = session_id
-- ARGV[2] = ttl_seconds
-- ARGV[3] = now_unix
-- ARGV[4..N] = ticket_type_id, qty, available (repeated triples)

local session_hold_key = KEYS[1]
local session_id = ARGV[1]
local ttl = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local expires_at = now + ttl

-- Check availability for every requested line, counting live holds from
-- other sessions. This session's own existing hold is excluded because the
-- request replaces it.
for i = 4, #ARGV, 3 do
    local ticket_type_id = ARGV[i]
    local qty = tonumber(ARGV[i + 1])
    local available = tonumber(ARGV[i + 2])
    local held_key = "ticketflow:checkout:held:" .. ticket_type_id

    local held_by_others = 0
    local entries = redis.call("HGETALL", held_key)
    for j = 1, #entries, 2 do
        local holder = entries[j]
        local qty_str, exp_str = string.match(entries[j + 1], "(%d+):(%d+)")
        if not exp_str or tonumber(exp_str) <= now then
            redis.call("HDEL", held_key, holder)
        elseif holder ~= session_id then
            held_by_others = held_by_others + tonumber(qty_str)
        end
    end

    if qty > available - held_by_others then
        return {0, ticket_type_id}
    end
end

-- Drop this session's previous hold before writing the replacement.
local previous = redis.call("HKEYS", session_hold_key)
for i = 1, #previous do
    redis.call("HDEL", "ticketflow:checkout:held:" .. previous[i], session_id)
end
redis.call("DEL", session_hold_key)

-- Record the new hold atomically.
for i = 4, #ARGV, 3 do
    local ticket_type_id = ARGV[i]
    local qty = ARGV[i + 1]
    local held_key = "ticketflow:checkout:held:" .. ticket_type_id

    redis.call("HSET", held_key, session_id, qty .. ":" .. expires_at)
    if redis.call("TTL", held_key) < ttl then
        redis.call("EXPIRE", held_key, ttl)
    end
    redis.call("HSET", session_hold_key, ticket_type_id, qty)
end
redis.call("EXPIRE", session_hold_key, ttl)

return {1, "success"}
`

// Lua script for atomic hold release
const luaAtomicTicketRelease = `
-- KEYS[1] = session hold key
-- ARGV[1] = session_id

local session_hold_key = KEYS[1]
local session_id = ARGV[1]

local lines = redis.call("HKEYS", session_hold_key)
if #lines == 0 then
    return {0, "hold_not_found"}
end

for i = 1, #lines do
    redis.call("HDEL", "ticketflow:checkout:held:" .. lines[i], session_id)
end
redis.call("DEL", session_hold_key)

return {1, #lines}
`

// Scripts are keyed by SHA so steady-state calls go through EVALSHA;
// go-redis falls back to EVAL when the digest is not loaded yet.
var (
	holdScript    = redis.NewScript(luaAtomicTicketHold)
	releaseScript = redis.NewScript(luaAtomicTicketRelease)
)

// AtomicAcquireHold atomically reserves the requested quantities, replacing
// any hold the session already has. The reservation expires ttl from now.
func (a *AtomicRedisOperations) AtomicAcquireHold(ctx context.Context, sessionID uuid.UUID, lines []HoldLine, ttl time.Duration) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}
	if len(lines) == 0 {
		return fmt.Errorf("no hold lines provided")
	}

	keys := []string{constants.SessionHoldKey(sessionID.String())}
	args := []interface{}{
		sessionID.String(),
		strconv.Itoa(int(ttl.Seconds())),
		strconv.FormatInt(time.Now().Unix(), 10),
	}
	for _, line := range lines {
		args = append(args, line.TicketTypeID.String(), strconv.Itoa(line.Quantity), strconv.Itoa(line.Available))
	}

	result, err := holdScript.Run(ctx, a.redis, keys, args...).Result()
	if err != nil {
		return fmt.Errorf("failed to execute atomic ticket hold: %w", err)
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		if conflict, ok := resultArray[1].(string); ok {
			return fmt.Errorf("%w: ticket type %s", ErrInsufficientAvailability, conflict)
		}
		return ErrInsufficientAvailability
	}

	return nil
}

// AtomicReleaseHold atomically releases a session's hold and returns the
// number of ticket-type lines released.
func (a *AtomicRedisOperations) AtomicReleaseHold(ctx context.Context, sessionID uuid.UUID) (int, error) {
	if a.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	keys := []string{constants.SessionHoldKey(sessionID.String())}
	args := []interface{}{sessionID.String()}

	result, err := releaseScript.Run(ctx, a.redis, keys, args...).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to execute atomic ticket release: %w", err)
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) != 2 {
		return 0, fmt.Errorf("unexpected result format from Lua script")
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return 0, fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		if reason, ok := resultArray[1].(string); ok {
			return 0, fmt.Errorf("failed to release hold: %s", reason)
		}
		return 0, fmt.Errorf("failed to release hold")
	}

	releasedCount, ok := resultArray[1].(int64)
	if !ok {
		return 0, fmt.Errorf("invalid released count in Lua script result")
	}

	return int(releasedCount), nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (a *AtomicRedisOperations) PreloadScripts(ctx context.Context) error {
	if a.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	if err := holdScript.Load(ctx, a.redis).Err(); err != nil {
		return fmt.Errorf("failed to load ticket hold script: %w", err)
	}
	if err := releaseScript.Load(ctx, a.redis).Err(); err != nil {
		return fmt.Errorf("failed to load ticket release script: %w", err)
	}

	return nil
}
