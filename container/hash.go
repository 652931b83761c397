package container

import "context"

// Hash is a thin typed facade over a Redis HASH at Key.
type Hash struct {
	Key string
}

// NewHash binds a Hash wrapper to key. It performs no I/O.
func NewHash(key string) *Hash { return &Hash{Key: key} }

// Get returns the value at field.
func (h *Hash) Get(ctx context.Context, conn Conn, field string) (string, error) {
	return conn.HGet(ctx, h.Key, field).Result()
}

// Set writes every field/value pair of values into the hash; an empty map
// is a no-op.
func (h *Hash) Set(ctx context.Context, conn Conn, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(values)*2)
	for k, v := range values {
		args = append(args, k, v)
	}
	return conn.HSet(ctx, h.Key, args...).Err()
}

// Del removes the given fields from the hash.
func (h *Hash) Del(ctx context.Context, conn Conn, fields ...string) error {
	return conn.HDel(ctx, h.Key, fields...).Err()
}

// Keys returns every field name.
func (h *Hash) Keys(ctx context.Context, conn Conn) ([]string, error) {
	return conn.HKeys(ctx, h.Key).Result()
}

// Values returns every field value.
func (h *Hash) Values(ctx context.Context, conn Conn) ([]string, error) {
	return conn.HVals(ctx, h.Key).Result()
}

// All returns the full field->value mapping.
func (h *Hash) All(ctx context.Context, conn Conn) (map[string]string, error) {
	return conn.HGetAll(ctx, h.Key).Result()
}

// Contains reports whether field exists in the hash.
func (h *Hash) Contains(ctx context.Context, conn Conn, field string) (bool, error) {
	return conn.HExists(ctx, h.Key, field).Result()
}

// Len returns the number of fields in the hash.
func (h *Hash) Len(ctx context.Context, conn Conn) (int64, error) {
	return conn.HLen(ctx, h.Key).Result()
}
