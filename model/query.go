package model

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/iamteem/redisco/container"
	"github.com/iamteem/redisco/field"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// eqClause is one equality filter: the field matches any of values (a
// multi-value clause unions its aux sets before intersecting).
type eqClause struct {
	field   string
	values  []string
	indexed bool
}

// rngClause is one range filter against a field's zindex, dispatched to
// the matching container.SortedSet boundary method at materialization.
type rngClause struct {
	field string
	kind  string // lt, le, gt, ge, between, eq
	a, b  float64
}

// Query is an immutable, lazily-materialized chain of filters, range
// predicates, ordering, and limit/offset over a Schema's records — the
// Go counterpart of the source's ModelSet (spec.md §4.F).
type Query struct {
	schema *Schema

	eq  []eqClause
	rng []rngClause

	orderBy   string
	orderDesc bool

	hasLimit      bool
	offset, count int

	err error
}

func (q *Query) clone() *Query {
	nq := *q
	nq.eq = append([]eqClause(nil), q.eq...)
	nq.rng = append([]rngClause(nil), q.rng...)
	return &nq
}

// Filter narrows the query to records whose named fields equal (or, for a
// slice value, equal any of) the given values. Unindexed field names fail
// at materialization with ErrAttributeNotIndexed.
func (q *Query) Filter(criteria map[string]any) *Query {
	nq := q.clone()
	for f, value := range criteria {
		clause := eqClause{field: f}
		switch {
		case q.schema.attributes[f] != nil:
			d := q.schema.attributes[f]
			clause.indexed = d.Indexed()
			vals, err := typecastEqValues(d, value)
			if err != nil {
				nq.err = err
				return nq
			}
			clause.values = vals
		case q.schema.lists[f] != nil:
			ld := q.schema.lists[f]
			clause.indexed = ld.Indexed()
			vals, err := typecastEqValuesList(ld, value)
			if err != nil {
				nq.err = err
				return nq
			}
			clause.values = vals
		default:
			if _, ok := q.schema.computed[f]; ok {
				clause.indexed = true
				clause.values = []string{fmt.Sprint(value)}
			} else {
				nq.err = fmt.Errorf("%w: %s: unknown field %q", ErrAttributeNotIndexed, q.schema.name, f)
				return nq
			}
		}
		nq.eq = append(nq.eq, clause)
	}
	return nq
}

func typecastEqValues(d field.Descriptor, value any) ([]string, error) {
	if vs, ok := value.([]any); ok {
		out := make([]string, len(vs))
		for i, v := range vs {
			s, err := d.TypecastForStorage(v)
			if err != nil {
				return nil, err
			}
			out[i] = s
		}
		return out, nil
	}
	s, err := d.TypecastForStorage(value)
	if err != nil {
		return nil, err
	}
	return []string{s}, nil
}

func typecastEqValuesList(ld *field.ListDescriptor, value any) ([]string, error) {
	if vs, ok := value.([]any); ok {
		return ld.TypecastElementsForStorage(vs)
	}
	return ld.TypecastElementsForStorage([]any{value})
}

func (q *Query) zClause(f string, kind string, a, b any) *Query {
	nq := q.clone()
	d, ok := q.schema.attributes[f]
	if !ok || !d.Rangeable() || !d.Indexed() {
		nq.err = fmt.Errorf("%w: %s", ErrAttributeNotIndexed, f)
		return nq
	}
	switch kind {
	case "between":
		lo, err := d.Score(a)
		if err != nil {
			nq.err = err
			return nq
		}
		hi, err := d.Score(b)
		if err != nil {
			nq.err = err
			return nq
		}
		nq.rng = append(nq.rng, rngClause{field: f, kind: kind, a: lo, b: hi})
	default:
		v, err := d.Score(a)
		if err != nil {
			nq.err = err
			return nq
		}
		nq.rng = append(nq.rng, rngClause{field: f, kind: kind, a: v})
	}
	return nq
}

// Lt narrows to records whose field's score is strictly less than v.
func (q *Query) Lt(f string, v any) *Query { return q.zClause(f, "lt", v, nil) }

// Le narrows to records whose field's score is at most v.
func (q *Query) Le(f string, v any) *Query { return q.zClause(f, "le", v, nil) }

// Gt narrows to records whose field's score is strictly greater than v.
func (q *Query) Gt(f string, v any) *Query { return q.zClause(f, "gt", v, nil) }

// Ge narrows to records whose field's score is at least v.
func (q *Query) Ge(f string, v any) *Query { return q.zClause(f, "ge", v, nil) }

// Between narrows to records whose field's score falls in [lo, hi].
func (q *Query) Between(f string, lo, hi any) *Query { return q.zClause(f, "between", lo, hi) }

// Eq narrows to records whose range-indexed field's score equals v.
func (q *Query) Eq(f string, v any) *Query { return q.zClause(f, "eq", v, nil) }

// Order sorts results by field, ascending unless field is prefixed with
// "-". A later Order call replaces an earlier one.
func (q *Query) Order(f string) *Query {
	nq := q.clone()
	desc := strings.HasPrefix(f, "-")
	if desc {
		f = f[1:]
	}
	nq.orderBy = f
	nq.orderDesc = desc
	return nq
}

// Limit restricts the materialized result to count records starting at
// offset. count<=0 means "through the end".
func (q *Query) Limit(offset, count int) *Query {
	nq := q.clone()
	nq.hasLimit = true
	nq.offset = offset
	nq.count = count
	return nq
}

func (q *Query) signature() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s|", q.schema.name)
	for _, c := range q.eq {
		fmt.Fprintf(&b, "eq:%s=%v;", c.field, c.values)
	}
	for _, r := range q.rng {
		fmt.Fprintf(&b, "rng:%s:%s:%v:%v;", r.field, r.kind, r.a, r.b)
	}
	fmt.Fprintf(&b, "order:%s:%v|limit:%v:%d:%d", q.orderBy, q.orderDesc, q.hasLimit, q.offset, q.count)
	return b.String()
}

var materializeGroup singleflight.Group

// materialize resolves the query's id list, deduplicating concurrent
// identical queries via singleflight since their temp-key collisions are
// benign but redundant (spec.md §5).
func (q *Query) materialize(ctx context.Context) ([]string, error) {
	if q.err != nil {
		return nil, q.err
	}
	v, err, _ := materializeGroup.Do(q.signature(), func() (any, error) {
		return q.materializeOnce(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

func unionKeyName(keys []string) string {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)
	return "~" + strings.Join(sorted, "+")
}

func rangeKeyName(zkey string, r rngClause) string {
	return fmt.Sprintf("%s#%s:%s:%v:%v", zkey, r.field, r.kind, r.a, r.b)
}

func (q *Query) materializeOnce(ctx context.Context) ([]string, error) {
	client := q.schema.client()

	var sourceKeys []string

	for _, c := range q.eq {
		if !c.indexed {
			return nil, fmt.Errorf("%w: %s", ErrAttributeNotIndexed, c.field)
		}
	}

	for _, c := range q.eq {
		if len(c.values) == 0 {
			return nil, nil
		}
		auxKeys := make([]string, len(c.values))
		for i, v := range c.values {
			auxKeys[i] = q.schema.auxKey(c.field, encodeAuxValue(v))
		}
		if len(auxKeys) == 1 {
			sourceKeys = append(sourceKeys, auxKeys[0])
			continue
		}
		dest := unionKeyName(auxKeys)
		if err := client.SUnionStore(ctx, dest, auxKeys...).Err(); err != nil {
			return nil, wrapStorage("sunionstore", err)
		}
		sourceKeys = append(sourceKeys, dest)
	}

	for _, r := range q.rng {
		zkey := q.schema.zindexKey(r.field)
		z := container.NewSortedSet(zkey)

		var ids []string
		var err error
		switch r.kind {
		case "lt":
			ids, err = z.Lt(ctx, client, r.a, 0, 0)
		case "le":
			ids, err = z.Le(ctx, client, r.a, 0, 0)
		case "gt":
			ids, err = z.Gt(ctx, client, r.a, 0, 0)
		case "ge":
			ids, err = z.Ge(ctx, client, r.a, 0, 0)
		case "between":
			ids, err = z.Between(ctx, client, r.a, r.b, 0, 0)
		case "eq":
			ids, err = z.Eq(ctx, client, r.a)
		}
		if err != nil {
			return nil, wrapStorage("zrangebyscore", err)
		}

		dest := rangeKeyName(zkey, r)
		destSet := container.NewSet(dest)
		client.Del(ctx, dest) // container.Set has no Clear; this is a temp key, not a domain one
		if len(ids) == 0 {
			return nil, nil
		}
		for _, id := range ids {
			if err := destSet.Add(ctx, client, id); err != nil {
				return nil, wrapStorage("sadd range temp", err)
			}
		}
		sourceKeys = append(sourceKeys, dest)
	}

	var base string
	switch len(sourceKeys) {
	case 0:
		base = q.schema.allKey()
	case 1:
		base = sourceKeys[0]
	default:
		base = unionKeyName(sourceKeys)
		if err := client.SInterStore(ctx, base, sourceKeys...).Err(); err != nil {
			return nil, wrapStorage("sinterstore", err)
		}
	}

	var ids []string
	var err error
	if q.orderBy != "" {
		ids, err = q.sortedIDs(ctx, client, base)
	} else {
		ids, err = container.NewSet(base).Members(ctx, client)
	}
	if err != nil {
		return nil, wrapStorage("materialize", err)
	}

	if q.hasLimit {
		ids = applyLimit(ids, q.offset, q.count)
	}
	return ids, nil
}

func (q *Query) sortedIDs(ctx context.Context, client *redis.Client, base string) ([]string, error) {
	alpha := true
	if d, ok := q.schema.attributes[q.orderBy]; ok {
		switch d.Kind() {
		case field.KindInteger, field.KindFloat, field.KindDateTime, field.KindDate:
			alpha = false
		}
	} else if _, ok := q.schema.computed[q.orderBy]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrAttributeNotIndexed, q.orderBy)
	}

	order := "ASC"
	if q.orderDesc {
		order = "DESC"
	}
	pattern := fmt.Sprintf("%s:*->%s", q.schema.key.String(), q.orderBy)

	return client.Sort(ctx, base, &redis.Sort{
		By:    pattern,
		Get:   []string{"#"},
		Alpha: alpha,
		Order: order,
	}).Result()
}

func applyLimit(ids []string, offset, count int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	end := len(ids)
	if count > 0 && offset+count < end {
		end = offset + count
	}
	return ids[offset:end]
}

// All materializes and hydrates every matching record.
func (q *Query) All(ctx context.Context) ([]*Instance, error) {
	ids, err := q.materialize(ctx)
	if err != nil {
		return nil, err
	}
	return hydrate(ctx, q.schema.client(), q.schema, ids)
}

// IDs materializes the matching id list without hydrating instances.
func (q *Query) IDs(ctx context.Context) ([]string, error) { return q.materialize(ctx) }

// Len reports the number of matching records.
func (q *Query) Len(ctx context.Context) (int, error) {
	ids, err := q.materialize(ctx)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// Contains reports whether id is among the matching records.
func (q *Query) Contains(ctx context.Context, id string) (bool, error) {
	ids, err := q.materialize(ctx)
	if err != nil {
		return false, err
	}
	for _, v := range ids {
		if v == id {
			return true, nil
		}
	}
	return false, nil
}

// At hydrates the record at position index in the materialized order.
func (q *Query) At(ctx context.Context, index int) (*Instance, error) {
	ids, err := q.materialize(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(ids) {
		return nil, ErrNotFound
	}
	return hydrateOne(ctx, q.schema.client(), q.schema, ids[index])
}

// First hydrates the first matching record.
func (q *Query) First(ctx context.Context) (*Instance, error) { return q.At(ctx, 0) }
