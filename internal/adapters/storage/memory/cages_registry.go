package memory

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"

	"conservation-registry/internal/domain/cages"
)

type cageRegistry struct {
	mu     sync.RWMutex
	byID   map[int64]cages.Cage
	nextID int64
}

func NewCageRegistry() cages.Registry {
	return &cageRegistry{
		byID:   make(map[int64]cages.Cage),
		nextID: 1,
	}
}

// cloneCage aísla el slice de ocupantes: lo que devuelve el registry es
// una copia, mutarla no toca el store.
func cloneCage(c cages.Cage) cages.Cage {
	c.AnimalIDs = slices.Clone(c.AnimalIDs)
	return c
}

func (r *cageRegistry) Add(ctx context.Context, c cages.Cage) (cages.Cage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c.ID != 0 {
		return cages.Cage{}, errors.New("cage id is assigned by the registry")
	}

	c.ID = r.nextID
	r.nextID++
	r.byID[c.ID] = cloneCage(c)
	return cloneCage(c), nil
}

func (r *cageRegistry) GetByID(ctx context.Context, id int64) (cages.Cage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return cages.Cage{}, cages.ErrNotFound
	}
	return cloneCage(c), nil
}

func (r *cageRegistry) List(ctx context.Context) ([]cages.Cage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]cages.Cage, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, cloneCage(c))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *cageRegistry) Update(ctx context.Context, c cages.Cage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[c.ID]; !exists {
		return cages.ErrNotFound
	}
	r.byID[c.ID] = cloneCage(c)
	return nil
}

func (r *cageRegistry) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.byID[id]
	delete(r.byID, id)
	return existed, nil
}

func (r *cageRegistry) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *cageRegistry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[int64]cages.Cage)
	return nil
}

func (r *cageRegistry) Restore(ctx context.Context, items []cages.Cage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[int64]cages.Cage, len(items))
	for _, c := range items {
		if c.ID <= 0 {
			return errors.New("restored cage without id")
		}
		r.byID[c.ID] = cloneCage(c)
		if c.ID >= r.nextID {
			r.nextID = c.ID + 1
		}
	}
	return nil
}
