package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"conservation-registry/internal/domain/animals"
)

type animalRegistry struct {
	mu     sync.RWMutex
	byID   map[int64]animals.Animal
	nextID int64
}

func NewAnimalRegistry() animals.Registry {
	return &animalRegistry{
		byID:   make(map[int64]animals.Animal),
		nextID: 1,
	}
}

func (r *animalRegistry) Add(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if a.ID != 0 {
		return animals.Animal{}, errors.New("animal id is assigned by the registry")
	}

	a.ID = r.nextID
	r.nextID++
	r.byID[a.ID] = a
	return a, nil
}

func (r *animalRegistry) GetByID(ctx context.Context, id int64) (animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byID[id]
	if !ok {
		return animals.Animal{}, animals.ErrNotFound
	}
	return a, nil
}

func (r *animalRegistry) List(ctx context.Context) ([]animals.Animal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]animals.Animal, 0, len(r.byID))
	for _, a := range r.byID {
		out = append(out, a)
	}

	// Orden estable por ID (solo para salida consistente)
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *animalRegistry) Update(ctx context.Context, a animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[a.ID]; !exists {
		return animals.ErrNotFound
	}
	r.byID[a.ID] = a
	return nil
}

func (r *animalRegistry) Remove(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.byID[id]
	delete(r.byID, id)
	return existed, nil
}

func (r *animalRegistry) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}

func (r *animalRegistry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID = make(map[int64]animals.Animal)
	return nil
}

func (r *animalRegistry) Restore(ctx context.Context, items []animals.Animal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byID = make(map[int64]animals.Animal, len(items))
	for _, a := range items {
		if a.ID <= 0 {
			return errors.New("restored animal without id")
		}
		r.byID[a.ID] = a
		// el contador avanza más allá del máximo restaurado para que las
		// altas nuevas nunca colisionen
		if a.ID >= r.nextID {
			r.nextID = a.ID + 1
		}
	}
	return nil
}
