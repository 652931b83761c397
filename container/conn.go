package container

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// Conn is the black-box Redis command interface every container wraps.
// Both *redis.Client and a redis.Pipeliner (queued or transactional)
// satisfy it, so callers choose per-command execution or batching without
// the container types knowing the difference.
type Conn = redis.Cmdable

// ErrNotFound is raised by Set.Remove when the element isn't a member.
var ErrNotFound = errors.New("container: element not found")
