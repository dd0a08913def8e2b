package conservation

import (
	"context"

	"conservation-registry/internal/domain/animals"
	"conservation-registry/internal/domain/cages"
	"conservation-registry/internal/domain/keepers"
)

// Snapshot es el estado completo de los tres registries, tal como se
// entrega al proveedor de persistencia al apagar y se recibe al arrancar.
type Snapshot struct {
	Animals []animals.Animal
	Cages   []cages.Cage
	Keepers []keepers.Keeper
}

// SnapshotStore es el colaborador de persistencia. El core no define el
// formato en disco; cada adapter decide el suyo.
type SnapshotStore interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
}
