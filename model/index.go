package model

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/iamteem/redisco/container"
	"github.com/iamteem/redisco/field"
	"github.com/redis/go-redis/v9"
)

func (s *Schema) idCounterKey() string              { return s.key.At("id").String() }
func (s *Schema) allKey() string                    { return s.key.At("all").String() }
func (s *Schema) instanceKey(id string) string      { return s.key.At(id).String() }
func (s *Schema) listKey(id, name string) string    { return s.key.At(id).At(name).String() }
func (s *Schema) indicesKey(id string) string       { return s.key.At(id).At("_indices").String() }
func (s *Schema) auxKey(att, encoded string) string { return s.key.At(att).At(encoded).String() }
func (s *Schema) zindexKey(att string) string       { return s.key.At("_zindex").At(att).String() }

// encodeAuxValue renders a filtered value safe for use as a key segment,
// base64-encoded with embedded newlines stripped (spec.md §6).
func encodeAuxValue(v string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(v))
	return strings.ReplaceAll(enc, "\n", "")
}

// auxValuesFor returns the raw storage-form string(s) an equality index
// entry keys against for the named indexed field: one value for a scalar
// attribute, one per element for a list field, or the computed string for
// a Meta-registered computed index.
func auxValuesFor(s *Schema, name string, i *Instance) ([]string, error) {
	if d, ok := s.attributes[name]; ok {
		sv, err := d.TypecastForStorage(i.values[name])
		if err != nil {
			return nil, err
		}
		return []string{sv}, nil
	}
	if ld, ok := s.lists[name]; ok {
		return ld.TypecastElementsForStorage(i.lists[name])
	}
	if fn, ok := s.computed[name]; ok {
		return []string{fn(i)}, nil
	}
	return nil, fmt.Errorf("model: %s: unknown index field %q", s.name, name)
}

// applyAutoTimestamps stamps AutoNow/AutoNowAdd date(time) fields with the
// current time before storage, matching the source's save()-time handling
// of auto_now/auto_now_add (spec.md §6 supplement).
func applyAutoTimestamps(s *Schema, i *Instance, wasNew bool) {
	now := time.Now().UTC()
	for name, d := range s.attributes {
		switch f := d.(type) {
		case *field.DateTimeField:
			if f.AutoNow || (f.AutoNowAdd && wasNew) {
				i.values[name] = now
			}
		case *field.DateField:
			if f.AutoNow || (f.AutoNowAdd && wasNew) {
				i.values[name] = now
			}
		}
	}
}

// saveInstance is the write path of the index engine (spec.md §4.E): it
// allocates an id on first save, writes the hash and list fields, then
// rebuilds every equality and range index entry.
func saveInstance(ctx context.Context, client *redis.Client, s *Schema, i *Instance) error {
	wasNew := i.IsNew()
	if wasNew {
		id, err := client.Incr(ctx, s.idCounterKey()).Result()
		if err != nil {
			return wrapStorage("incr", err)
		}
		i.id = strconv.FormatInt(id, 10)
		if err := container.NewSet(s.allKey()).Add(ctx, client, i.id); err != nil {
			return wrapStorage("sadd all", err)
		}
	}

	applyAutoTimestamps(s, i, wasNew)

	h := make(map[string]string, len(s.attributes)+len(s.computed))
	for name, d := range s.attributes {
		sv, err := d.TypecastForStorage(i.values[name])
		if err != nil {
			return err
		}
		h[name] = sv
	}
	for name, fn := range s.computed {
		h[name] = fn(i)
	}
	if err := container.NewHash(s.instanceKey(i.id)).Set(ctx, client, h); err != nil {
		return wrapStorage("hset", err)
	}

	for name, ld := range s.lists {
		l := container.NewList(s.listKey(i.id, name))
		if err := l.Clear(ctx, client); err != nil {
			return wrapStorage("del list", err)
		}
		vals := i.lists[name]
		if len(vals) == 0 {
			continue
		}
		strs, err := ld.TypecastElementsForStorage(vals)
		if err != nil {
			return err
		}
		if err := l.Extend(ctx, client, strs); err != nil {
			return wrapStorage("rpush", err)
		}
	}

	if err := refreshEqualityIndices(ctx, client, s, i); err != nil {
		return err
	}
	if err := refreshRangeIndices(ctx, client, s, i); err != nil {
		return err
	}
	return nil
}

// refreshEqualityIndices deletes every aux-set membership this instance
// previously held (tracked in M:<id>:_indices) and rebuilds it from
// scratch, making repeated saves idempotent (spec.md Invariant 5). Both
// passes run inside one TxPipeline, the same batching shape the teacher
// uses for multi-command channel writes.
func refreshEqualityIndices(ctx context.Context, client *redis.Client, s *Schema, i *Instance) error {
	indices := container.NewSet(s.indicesKey(i.id))
	oldAux, err := indices.Members(ctx, client)
	if err != nil {
		return wrapStorage("smembers indices", err)
	}

	newAux := map[string]bool{}
	for _, name := range s.Indices() {
		vals, err := auxValuesFor(s, name, i)
		if err != nil {
			return err
		}
		for _, v := range vals {
			newAux[s.auxKey(name, encodeAuxValue(v))] = true
		}
	}

	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, aux := range oldAux {
			_ = container.NewSet(aux).Discard(ctx, pipe, i.id)
		}
		pipe.Del(ctx, indices.Key)
		for aux := range newAux {
			_ = container.NewSet(aux).Add(ctx, pipe, i.id)
			_ = indices.Add(ctx, pipe, aux)
		}
		return nil
	})
	if err != nil {
		return wrapStorage("equality index refresh", err)
	}
	return nil
}

// refreshRangeIndices keeps every range-indexed field's zindex member
// score current, removing the member entirely when the field is unset.
func refreshRangeIndices(ctx context.Context, client *redis.Client, s *Schema, i *Instance) error {
	for _, name := range s.ZIndices() {
		z := container.NewSortedSet(s.zindexKey(name))
		v, ok := i.values[name]
		if !ok || v == nil {
			if err := z.Remove(ctx, client, i.id); err != nil {
				return wrapStorage("zrem", err)
			}
			continue
		}
		score, err := s.attributes[name].Score(v)
		if err != nil {
			return err
		}
		if err := z.Add(ctx, client, i.id, score); err != nil {
			return wrapStorage("zadd", err)
		}
	}
	return nil
}

// deleteInstance removes every trace of id: its aux-set memberships, its
// _indices bookkeeping set, its zindex entries, its list keys, its hash,
// and its membership in M:all (spec.md Invariant 4).
func deleteInstance(ctx context.Context, client *redis.Client, s *Schema, id string) error {
	indices := container.NewSet(s.indicesKey(id))
	auxKeys, err := indices.Members(ctx, client)
	if err != nil {
		return wrapStorage("smembers indices", err)
	}

	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, aux := range auxKeys {
			_ = container.NewSet(aux).Discard(ctx, pipe, id)
		}
		pipe.Del(ctx, indices.Key)
		for _, z := range s.ZIndices() {
			_ = container.NewSortedSet(s.zindexKey(z)).Remove(ctx, pipe, id)
		}
		for name := range s.lists {
			_ = container.NewList(s.listKey(id, name)).Clear(ctx, pipe)
		}
		pipe.Del(ctx, s.instanceKey(id))
		_ = container.NewSet(s.allKey()).Discard(ctx, pipe, id)
		return nil
	})
	if err != nil {
		return wrapStorage("delete pipeline", err)
	}
	return nil
}
