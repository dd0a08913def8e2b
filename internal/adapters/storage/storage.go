package storage

import (
	"context"
	"fmt"

	"conservation-registry/internal/adapters/storage/postgres"
	"conservation-registry/internal/adapters/storage/sqlite"
	"conservation-registry/internal/config"
	"conservation-registry/internal/domain/conservation"
)

// OpenSnapshotStore abre el proveedor de persistencia según el driver
// configurado. Con memory el sistema arranca vacío y no persiste nada.
func OpenSnapshotStore(cfg config.StorageConfig) (conservation.SnapshotStore, func() error, error) {
	switch cfg.Driver {
	case "memory":
		return noopStore{}, func() error { return nil }, nil
	case "sqlite":
		st, err := sqlite.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return st, st.Close, nil
	case "postgres":
		db, err := postgres.Open(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		st, err := postgres.NewStore(db)
		if err != nil {
			db.Close()
			return nil, nil, err
		}
		return st, st.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

type noopStore struct{}

func (noopStore) Load(ctx context.Context) (conservation.Snapshot, error) {
	return conservation.Snapshot{}, nil
}

func (noopStore) Save(ctx context.Context, snap conservation.Snapshot) error {
	return nil
}
