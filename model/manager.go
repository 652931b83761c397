package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/iamteem/redisco/container"
	"github.com/redis/go-redis/v9"
)

// Manager is a model's query/creation façade, returned by Schema.Objects()
// (spec.md §4.G).
type Manager struct {
	schema *Schema
}

// New builds an unsaved instance of the manager's schema.
func (m *Manager) New() *Instance { return m.schema.New() }

// Create builds an instance from values, validates, and saves it.
func (m *Manager) Create(ctx context.Context, values map[string]any) (*Instance, error) {
	inst := m.New()
	for k, v := range values {
		inst.Set(k, v)
	}
	if err := inst.Save(ctx); err != nil {
		return nil, err
	}
	return inst, nil
}

// GetByID hydrates the instance with the given id, or ErrNotFound.
func (m *Manager) GetByID(ctx context.Context, id string) (*Instance, error) {
	return hydrateOne(ctx, m.schema.client(), m.schema, id)
}

// All returns a query over every record of this model.
func (m *Manager) All() *Query { return &Query{schema: m.schema} }

// Filter is shorthand for All().Filter(criteria).
func (m *Manager) Filter(criteria map[string]any) *Query { return m.All().Filter(criteria) }

// Count returns the number of persisted records (len of M:all).
func (m *Manager) Count(ctx context.Context) (int64, error) {
	n, err := container.NewSet(m.schema.allKey()).Len(ctx, m.schema.client())
	if err != nil {
		return 0, wrapStorage("scard", err)
	}
	return n, nil
}

// hydrate resolves each id to an Instance, skipping (rather than failing
// the whole batch on) an id whose hash has already been deleted — index
// auxiliaries can transiently lag behind a deleted hash under concurrent
// mutation, and a stale id should simply drop out of the result set.
func hydrate(ctx context.Context, client *redis.Client, s *Schema, ids []string) ([]*Instance, error) {
	out := make([]*Instance, 0, len(ids))
	for _, id := range ids {
		inst, err := hydrateOne(ctx, client, s, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, inst)
	}
	return out, nil
}

func hydrateOne(ctx context.Context, client *redis.Client, s *Schema, id string) (*Instance, error) {
	h, err := container.NewHash(s.instanceKey(id)).All(ctx, client)
	if err != nil {
		return nil, wrapStorage("hgetall", err)
	}
	if len(h) == 0 {
		return nil, ErrNotFound
	}

	inst := &Instance{schema: s, id: id, values: map[string]any{}, lists: map[string][]any{}}
	for name, d := range s.attributes {
		raw, ok := h[name]
		if !ok {
			continue
		}
		v, err := d.TypecastForRead(raw)
		if err != nil {
			return nil, fmt.Errorf("model %s: field %s: %w", s.name, name, err)
		}
		inst.values[name] = v
	}
	for name, ld := range s.lists {
		raws, err := container.NewList(s.listKey(id, name)).Members(ctx, client)
		if err != nil {
			return nil, wrapStorage("lrange", err)
		}
		vals, err := ld.TypecastElementsForRead(raws)
		if err != nil {
			return nil, fmt.Errorf("model %s: field %s: %w", s.name, name, err)
		}
		inst.lists[name] = vals
	}
	return inst, nil
}
