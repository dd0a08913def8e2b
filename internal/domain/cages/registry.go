package cages

import "context"

// Registry es el almacén en memoria de jaulas.
type Registry interface {
	Add(ctx context.Context, c Cage) (Cage, error)
	GetByID(ctx context.Context, id int64) (Cage, error)
	List(ctx context.Context) ([]Cage, error)
	Update(ctx context.Context, c Cage) error
	Remove(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Restore(ctx context.Context, items []Cage) error
}
