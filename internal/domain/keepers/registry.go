package keepers

import "context"

// Registry es el almacén en memoria de cuidadores.
type Registry interface {
	Add(ctx context.Context, k Keeper) (Keeper, error)
	GetByID(ctx context.Context, id int64) (Keeper, error)
	List(ctx context.Context) ([]Keeper, error)
	Update(ctx context.Context, k Keeper) error
	Remove(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
	Restore(ctx context.Context, items []Keeper) error
}
