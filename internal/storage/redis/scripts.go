package redis

const (
	// insertEventScript stores an event and indexes it unless its natural
	// key already exists. Returns 1 when the event was new, 0 otherwise.
	insertEventScript = `
local event_key = KEYS[1]   -- {prefix}:event:{naturalKey}
local index_key = KEYS[2]   -- {prefix}:events

local timestamp = ARGV[1]
local duration = ARGV[2]
local app = ARGV[3]
local title = ARGV[4]
local platform = ARGV[5]
local score = ARGV[6]
local member = ARGV[7]

if redis.call('EXISTS', event_key) == 1 then
  return 0
end

redis.call('HSET', event_key,
  'timestamp', timestamp,
  'duration', duration,
  'app', app,
  'title', title,
  'platform', platform
)
redis.call('ZADD', index_key, score, member)

return 1
`
)
