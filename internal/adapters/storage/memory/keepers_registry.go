package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"conservation-registry/internal/domain/keepers"
)

type keeperRegistry struct {
	mu     sync.RWMutex
	byID   map[int64]keepers.Keeper
	nextID int64
}

func NewKeeperRegistry() keepers.Registry {
	return &keeperRegistry{
		byID:   make(map[int64]keepers.Keeper),
		nextID: 1,
	}
}

func cloneKeeper(k keepers.Keeper) keepers.Keeper {
	k.CageIDs = slices.Clone(k.CageIDs)
	return k
}

func (r *keeperRegistry) Add(ctx context.Context, k keepers.Keeper) (keepers.Keeper, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if k.ID != 0 {
		return keepers.Keeper{}, errors.New("keeper id is assigned by the registry")
	}

	k.ID = r.nextID
	r.nextID++
	r.byID[k.ID] = cloneKeeper(k)
	return cloneKeeper(k), nil
}

func (r *keeperRegistry) GetByID(ctx context.Context, id int64) (keepers.Keeper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.byID[id]
	if !ok {
		return keepers.Keeper{}, keepers.ErrNotFound
	}
	return cloneKeeper(k), nil
}

func (r *keeperRegistry) List(ctx context.Context) ([]keepers.Keeper, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]keepers.Keeper, 0, len(r.byID))
	for _, k := range r.byID {
		out = append(out, cloneKeeper(k))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *keeperRegistry) Update(ctx context.Context, k keepers.Keeper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[k.ID]; !exists {
		return keepers.ErrNotFound
	}
	r.byID[k.ID] = cloneKeeper(k)
	return nil
}

func (r *keeperRegistry) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.byID[id]
	delete(r.byID, id)
	return existed, nil
}

func (r *keeperRegistry) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *keeperRegistry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[int64]keepers.Keeper)
	return nil
}

func (r *keeperRegistry) Restore(ctx context.Context, items []keepers.Keeper) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[int64]keepers.Keeper, len(items))
	for _, k := range items {
		if k.ID <= 0 {
			return errors.New("restored keeper without id")
		}
		r.byID[k.ID] = cloneKeeper(k)
		if k.ID >= r.nextID {
			r.nextID = k.ID + 1
		}
	}
	return nil
}
