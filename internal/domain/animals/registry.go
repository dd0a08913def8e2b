package animals

import "context"

// Registry es el almacén en memoria de animales.
// Add asigna un ID entero creciente que nunca se reutiliza.
type Registry interface {
	Add(ctx context.Context, a Animal) (Animal, error)
	GetByID(ctx context.Context, id int64) (Animal, error)
	List(ctx context.Context) ([]Animal, error)
	Update(ctx context.Context, a Animal) error
	Remove(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error

	// Restore rehidrata el registry desde persistencia y avanza el
	// contador de IDs más allá del máximo visto.
	Restore(ctx context.Context, items []Animal) error
}
