package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"conservation-registry/internal/domain/animals"
	"conservation-registry/internal/domain/cages"
	"conservation-registry/internal/domain/conservation"
	"conservation-registry/internal/domain/keepers"
)

const schema = `
CREATE TABLE IF NOT EXISTS animals (
    id            BIGINT PRIMARY KEY,
    name          TEXT NOT NULL,
    species       TEXT NOT NULL,
    category      TEXT NOT NULL CHECK (category IN ('predator', 'prey')),
    sex           TEXT NOT NULL CHECK (sex IN ('male', 'female', 'unknown')),
    birth_date    DATE NOT NULL,
    acquired_date DATE NOT NULL
);

CREATE TABLE IF NOT EXISTS cages (
    id          BIGINT PRIMARY KEY,
    number      TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    capacity    INTEGER NOT NULL CHECK (capacity > 0),
    keeper_id   BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS keepers (
    id             BIGINT PRIMARY KEY,
    first_name     TEXT NOT NULL,
    surname        TEXT NOT NULL,
    address        TEXT NOT NULL DEFAULT '',
    contact_number TEXT NOT NULL DEFAULT '',
    position       TEXT NOT NULL CHECK (position IN ('head_keeper', 'assistant_keeper'))
);

CREATE TABLE IF NOT EXISTS cage_animals (
    cage_id   BIGINT NOT NULL REFERENCES cages(id),
    animal_id BIGINT NOT NULL REFERENCES animals(id),
    PRIMARY KEY (cage_id, animal_id)
);

CREATE TABLE IF NOT EXISTS keeper_cages (
    keeper_id BIGINT NOT NULL REFERENCES keepers(id),
    cage_id   BIGINT NOT NULL REFERENCES cages(id),
    ord       INTEGER NOT NULL,
    PRIMARY KEY (keeper_id, cage_id)
);

CREATE TABLE IF NOT EXISTS snapshots (
    id       UUID PRIMARY KEY,
    taken_at TIMESTAMPTZ NOT NULL
);
`

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore asegura el schema sobre una conexión ya abierta.
func NewStore(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Save reemplaza el estado guardado por el snapshot completo en una sola
// transacción y registra la toma.
func (s *Store) Save(ctx context.Context, snap conservation.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"cage_animals", "keeper_cages", "animals", "cages", "keepers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	for _, a := range snap.Animals {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO animals (id, name, species, category, sex, birth_date, acquired_date)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
		`, a.ID, a.Name, a.Species, string(a.Category), string(a.Sex), a.BirthDate, a.AcquiredDate); err != nil {
			return err
		}
	}

	for _, c := range snap.Cages {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cages (id, number, description, capacity, keeper_id)
			VALUES ($1,$2,$3,$4,$5)
		`, c.ID, c.Number, c.Description, c.Capacity, c.KeeperID); err != nil {
			return err
		}
		for _, animalID := range c.AnimalIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO cage_animals (cage_id, animal_id) VALUES ($1,$2)
			`, c.ID, animalID); err != nil {
				return err
			}
		}
	}

	for _, k := range snap.Keepers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO keepers (id, first_name, surname, address, contact_number, position)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, k.ID, k.FirstName, k.Surname, k.Address, k.ContactNumber, string(k.Position)); err != nil {
			return err
		}
		for i, cageID := range k.CageIDs {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO keeper_cages (keeper_id, cage_id, ord) VALUES ($1,$2,$3)
			`, k.ID, cageID, i); err != nil {
				return err
			}
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, taken_at) VALUES ($1,$2)
	`, uuid.NewString(), s.now().UTC()); err != nil {
		return err
	}

	return tx.Commit()
}

// Load devuelve el estado guardado completo (vacío si nunca se guardó).
func (s *Store) Load(ctx context.Context) (conservation.Snapshot, error) {
	var snap conservation.Snapshot

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, species, category, sex, birth_date, acquired_date
		FROM animals ORDER BY id ASC
	`)
	if err != nil {
		return conservation.Snapshot{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var a animals.Animal
		var cat, sex string
		if err := rows.Scan(&a.ID, &a.Name, &a.Species, &cat, &sex, &a.BirthDate, &a.AcquiredDate); err != nil {
			return conservation.Snapshot{}, err
		}
		a.Category = animals.Category(cat)
		a.Sex = animals.Sex(sex)
		snap.Animals = append(snap.Animals, a)
	}
	if err := rows.Err(); err != nil {
		return conservation.Snapshot{}, err
	}

	cageRows, err := s.db.QueryContext(ctx, `
		SELECT id, number, description, capacity, keeper_id
		FROM cages ORDER BY id ASC
	`)
	if err != nil {
		return conservation.Snapshot{}, err
	}
	defer cageRows.Close()

	cageIdx := map[int64]int{}
	for cageRows.Next() {
		var c cages.Cage
		if err := cageRows.Scan(&c.ID, &c.Number, &c.Description, &c.Capacity, &c.KeeperID); err != nil {
			return conservation.Snapshot{}, err
		}
		cageIdx[c.ID] = len(snap.Cages)
		snap.Cages = append(snap.Cages, c)
	}
	if err := cageRows.Err(); err != nil {
		return conservation.Snapshot{}, err
	}

	keeperRows, err := s.db.QueryContext(ctx, `
		SELECT id, first_name, surname, address, contact_number, position
		FROM keepers ORDER BY id ASC
	`)
	if err != nil {
		return conservation.Snapshot{}, err
	}
	defer keeperRows.Close()

	keeperIdx := map[int64]int{}
	for keeperRows.Next() {
		var k keepers.Keeper
		var pos string
		if err := keeperRows.Scan(&k.ID, &k.FirstName, &k.Surname, &k.Address, &k.ContactNumber, &pos); err != nil {
			return conservation.Snapshot{}, err
		}
		k.Position = keepers.Position(pos)
		keeperIdx[k.ID] = len(snap.Keepers)
		snap.Keepers = append(snap.Keepers, k)
	}
	if err := keeperRows.Err(); err != nil {
		return conservation.Snapshot{}, err
	}

	caRows, err := s.db.QueryContext(ctx, `
		SELECT cage_id, animal_id FROM cage_animals ORDER BY cage_id, animal_id
	`)
	if err != nil {
		return conservation.Snapshot{}, err
	}
	defer caRows.Close()

	for caRows.Next() {
		var cageID, animalID int64
		if err := caRows.Scan(&cageID, &animalID); err != nil {
			return conservation.Snapshot{}, err
		}
		if i, ok := cageIdx[cageID]; ok {
			snap.Cages[i].AnimalIDs = append(snap.Cages[i].AnimalIDs, animalID)
		}
	}
	if err := caRows.Err(); err != nil {
		return conservation.Snapshot{}, err
	}

	kcRows, err := s.db.QueryContext(ctx, `
		SELECT keeper_id, cage_id FROM keeper_cages ORDER BY keeper_id, ord
	`)
	if err != nil {
		return conservation.Snapshot{}, err
	}
	defer kcRows.Close()

	for kcRows.Next() {
		var keeperID, cageID int64
		if err := kcRows.Scan(&keeperID, &cageID); err != nil {
			return conservation.Snapshot{}, err
		}
		if i, ok := keeperIdx[keeperID]; ok {
			snap.Keepers[i].CageIDs = append(snap.Keepers[i].CageIDs, cageID)
		}
	}
	if err := kcRows.Err(); err != nil {
		return conservation.Snapshot{}, err
	}

	return snap, nil
}
