package container

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// SortedSet is a thin typed facade over a Redis ZSET at Key.
type SortedSet struct {
	Key string
}

// NewSortedSet binds a SortedSet wrapper to key. It performs no I/O.
func NewSortedSet(key string) *SortedSet { return &SortedSet{Key: key} }

// Add sets member's score, inserting it if new.
func (z *SortedSet) Add(ctx context.Context, conn Conn, member string, score float64) error {
	return conn.ZAdd(ctx, z.Key, redis.Z{Score: score, Member: member}).Err()
}

// Remove removes member from the sorted set.
func (z *SortedSet) Remove(ctx context.Context, conn Conn, member string) error {
	return conn.ZRem(ctx, z.Key, member).Err()
}

// Score returns member's score.
func (z *SortedSet) Score(ctx context.Context, conn Conn, member string) (float64, error) {
	return conn.ZScore(ctx, z.Key, member).Result()
}

// Rank returns member's 0-based index in ascending score order.
func (z *SortedSet) Rank(ctx context.Context, conn Conn, member string) (int64, error) {
	return conn.ZRank(ctx, z.Key, member).Result()
}

// RevRank returns member's 0-based index in descending score order.
func (z *SortedSet) RevRank(ctx context.Context, conn Conn, member string) (int64, error) {
	return conn.ZRevRank(ctx, z.Key, member).Result()
}

// Members returns every member in ascending score order.
func (z *SortedSet) Members(ctx context.Context, conn Conn) ([]string, error) {
	return conn.ZRange(ctx, z.Key, 0, -1).Result()
}

// Len returns the cardinality of the sorted set.
func (z *SortedSet) Len(ctx context.Context, conn Conn) (int64, error) {
	return conn.ZCard(ctx, z.Key).Result()
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (z *SortedSet) rangeByScore(ctx context.Context, conn Conn, min, max string, limit, offset int64) ([]string, error) {
	opt := &redis.ZRangeBy{Min: min, Max: max}
	if limit > 0 {
		opt.Offset = offset
		opt.Count = limit
	}
	return conn.ZRangeByScore(ctx, z.Key, opt).Result()
}

// Lt returns members with score strictly less than v: [-inf, (v).
func (z *SortedSet) Lt(ctx context.Context, conn Conn, v float64, limit, offset int64) ([]string, error) {
	return z.rangeByScore(ctx, conn, "-inf", "("+formatScore(v), limit, offset)
}

// Le returns members with score less than or equal to v: [-inf, v].
func (z *SortedSet) Le(ctx context.Context, conn Conn, v float64, limit, offset int64) ([]string, error) {
	return z.rangeByScore(ctx, conn, "-inf", formatScore(v), limit, offset)
}

// Gt returns members with score strictly greater than v: ((v), +inf].
func (z *SortedSet) Gt(ctx context.Context, conn Conn, v float64, limit, offset int64) ([]string, error) {
	return z.rangeByScore(ctx, conn, "("+formatScore(v), "+inf", limit, offset)
}

// Ge returns members with score greater than or equal to v: [v, +inf].
func (z *SortedSet) Ge(ctx context.Context, conn Conn, v float64, limit, offset int64) ([]string, error) {
	return z.rangeByScore(ctx, conn, formatScore(v), "+inf", limit, offset)
}

// Between returns members with lo <= score <= hi, inclusive on both ends.
func (z *SortedSet) Between(ctx context.Context, conn Conn, lo, hi float64, limit, offset int64) ([]string, error) {
	return z.rangeByScore(ctx, conn, formatScore(lo), formatScore(hi), limit, offset)
}

// Eq returns members whose score equals v exactly.
func (z *SortedSet) Eq(ctx context.Context, conn Conn, v float64) ([]string, error) {
	return z.rangeByScore(ctx, conn, formatScore(v), formatScore(v), 0, 0)
}
