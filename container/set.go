package container

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Set is a thin typed facade over a Redis SET at Key.
type Set struct {
	Key string
}

// NewSet binds a Set wrapper to key. It performs no I/O.
func NewSet(key string) *Set { return &Set{Key: key} }

// Add adds value as a member of the set.
func (s *Set) Add(ctx context.Context, conn Conn, value string) error {
	return conn.SAdd(ctx, s.Key, value).Err()
}

// Remove removes value from the set. Returns ErrNotFound if it wasn't a
// member, matching the source's KeyError-on-missing-element contract.
func (s *Set) Remove(ctx context.Context, conn Conn, value string) error {
	n, err := conn.SRem(ctx, s.Key, value).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Discard removes value from the set if present; unlike Remove it never
// fails when the element is absent.
func (s *Set) Discard(ctx context.Context, conn Conn, value string) error {
	return conn.SRem(ctx, s.Key, value).Err()
}

// Members returns every element of the set.
func (s *Set) Members(ctx context.Context, conn Conn) ([]string, error) {
	return conn.SMembers(ctx, s.Key).Result()
}

// Contains reports whether value is a member of the set.
func (s *Set) Contains(ctx context.Context, conn Conn, value string) (bool, error) {
	return conn.SIsMember(ctx, s.Key, value).Result()
}

// Len returns the cardinality of the set.
func (s *Set) Len(ctx context.Context, conn Conn) (int64, error) {
	return conn.SCard(ctx, s.Key).Result()
}

// Union stores the union of this set and others at destKey and returns a
// Set bound to it.
func (s *Set) Union(ctx context.Context, conn Conn, destKey string, others ...*Set) (*Set, error) {
	if err := conn.SUnionStore(ctx, destKey, s.sourceKeys(others)...).Err(); err != nil {
		return nil, err
	}
	return NewSet(destKey), nil
}

// Intersection stores the intersection of this set and others at destKey
// and returns a Set bound to it.
func (s *Set) Intersection(ctx context.Context, conn Conn, destKey string, others ...*Set) (*Set, error) {
	if err := conn.SInterStore(ctx, destKey, s.sourceKeys(others)...).Err(); err != nil {
		return nil, err
	}
	return NewSet(destKey), nil
}

// Difference stores the elements in this set not present in others at
// destKey and returns a Set bound to it.
func (s *Set) Difference(ctx context.Context, conn Conn, destKey string, others ...*Set) (*Set, error) {
	if err := conn.SDiffStore(ctx, destKey, s.sourceKeys(others)...).Err(); err != nil {
		return nil, err
	}
	return NewSet(destKey), nil
}

func (s *Set) sourceKeys(others []*Set) []string {
	keys := make([]string, 0, len(others)+1)
	keys = append(keys, s.Key)
	for _, o := range others {
		keys = append(keys, o.Key)
	}
	return keys
}

// IsDisjoint reports whether the set shares no elements with other.
func (s *Set) IsDisjoint(ctx context.Context, conn Conn, other *Set) (bool, error) {
	n, err := conn.SInterCard(ctx, 0, []string{s.Key, other.Key}).Result()
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// IsSubset reports whether every element of the set is also in other.
func (s *Set) IsSubset(ctx context.Context, conn Conn, other *Set) (bool, error) {
	sl, err := s.Len(ctx, conn)
	if err != nil {
		return false, err
	}
	n, err := conn.SInterCard(ctx, 0, []string{s.Key, other.Key}).Result()
	if err != nil {
		return false, err
	}
	return n == sl, nil
}

// IsSuperset reports whether every element of other is also in the set.
func (s *Set) IsSuperset(ctx context.Context, conn Conn, other *Set) (bool, error) {
	return other.IsSubset(ctx, conn, s)
}

// Copy copies the set's members to destKey, overwriting any existing
// contents there, and returns a Set bound to destKey.
func (s *Set) Copy(ctx context.Context, conn Conn, destKey string) (*Set, error) {
	pipe := conn.TxPipeline()
	pipe.Del(ctx, destKey)
	members, err := s.Members(ctx, conn)
	if err != nil {
		return nil, err
	}
	if len(members) > 0 {
		args := make([]interface{}, len(members))
		for i, m := range members {
			args[i] = m
		}
		pipe.SAdd(ctx, destKey, args...)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, err
	}
	return NewSet(destKey), nil
}
