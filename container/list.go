package container

import "context"

// List is a thin typed facade over a Redis LIST at Key.
type List struct {
	Key string
}

// NewList binds a List wrapper to key. It performs no I/O.
func NewList(key string) *List { return &List{Key: key} }

// Append adds value to the right (tail) of the list.
func (l *List) Append(ctx context.Context, conn Conn, value string) error {
	return conn.RPush(ctx, l.Key, value).Err()
}

// Push is an alias for Append, matching the source's push==append contract.
func (l *List) Push(ctx context.Context, conn Conn, value string) error {
	return l.Append(ctx, conn, value)
}

// Extend appends every element of values, preserving order.
func (l *List) Extend(ctx context.Context, conn Conn, values []string) error {
	if len(values) == 0 {
		return nil
	}
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return conn.RPush(ctx, l.Key, args...).Err()
}

// Pop removes and returns the last (rightmost) item.
func (l *List) Pop(ctx context.Context, conn Conn) (string, error) {
	return conn.RPop(ctx, l.Key).Result()
}

// Shift removes and returns the first (leftmost) item.
func (l *List) Shift(ctx context.Context, conn Conn) (string, error) {
	return conn.LPop(ctx, l.Key).Result()
}

// Unshift adds value at the head of the list.
func (l *List) Unshift(ctx context.Context, conn Conn, value string) error {
	return conn.LPush(ctx, l.Key, value).Err()
}

// Index returns the item at the given integer index (LINDEX semantics:
// negative indices count from the tail).
func (l *List) Index(ctx context.Context, conn Conn, index int64) (string, error) {
	return conn.LIndex(ctx, l.Key, index).Result()
}

// Slice returns items from start to stop inclusive (LRANGE semantics).
func (l *List) Slice(ctx context.Context, conn Conn, start, stop int64) ([]string, error) {
	return conn.LRange(ctx, l.Key, start, stop).Result()
}

// Trim keeps only the range [start, stop], discarding the rest.
func (l *List) Trim(ctx context.Context, conn Conn, start, stop int64) error {
	return conn.LTrim(ctx, l.Key, start, stop).Err()
}

// Len returns the list's length.
func (l *List) Len(ctx context.Context, conn Conn) (int64, error) {
	return conn.LLen(ctx, l.Key).Result()
}

// Members returns every element in order.
func (l *List) Members(ctx context.Context, conn Conn) ([]string, error) {
	return l.Slice(ctx, conn, 0, -1)
}

// Count returns the number of occurrences of value in the list.
func (l *List) Count(ctx context.Context, conn Conn, value string) (int, error) {
	members, err := l.Members(ctx, conn)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, m := range members {
		if m == value {
			n++
		}
	}
	return n, nil
}

// Clear removes the list key entirely.
func (l *List) Clear(ctx context.Context, conn Conn) error {
	return conn.Del(ctx, l.Key).Err()
}

// Reverse reverses the list in place.
func (l *List) Reverse(ctx context.Context, conn Conn) error {
	members, err := l.Members(ctx, conn)
	if err != nil {
		return err
	}
	for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
		members[i], members[j] = members[j], members[i]
	}
	if err := l.Clear(ctx, conn); err != nil {
		return err
	}
	return l.Extend(ctx, conn, members)
}

// Copy copies the list's elements to destKey, clearing it first, and
// returns a List bound to destKey.
func (l *List) Copy(ctx context.Context, conn Conn, destKey string) (*List, error) {
	members, err := l.Members(ctx, conn)
	if err != nil {
		return nil, err
	}
	dest := NewList(destKey)
	if err := dest.Clear(ctx, conn); err != nil {
		return nil, err
	}
	if err := dest.Extend(ctx, conn, members); err != nil {
		return nil, err
	}
	return dest, nil
}
