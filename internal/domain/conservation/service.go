package conservation

import (
	"context"
	"fmt"
	"slices"
	"time"

	"conservation-registry/internal/domain/animals"
	"conservation-registry/internal/domain/cages"
	"conservation-registry/internal/domain/keepers"
)

// Service orquesta resolver → validar → mutar. Toda la mutación ocurre en
// un solo bloque después de que la validación pasa: un lookup fallido o
// una regla violada nunca dejan mutación parcial.
type Service struct {
	animals animals.Registry
	cages   cages.Registry
	keepers keepers.Registry
	rules   Rules
	now     func() time.Time
}

func NewService(ar animals.Registry, cr cages.Registry, kr keepers.Registry, rules Rules) *Service {
	return &Service{
		animals: ar,
		cages:   cr,
		keepers: kr,
		rules:   rules,
		now:     time.Now,
	}
}

// -------------------------
// Resolución (eje not-found)
// -------------------------

func (s *Service) animal(ctx context.Context, id int64) (animals.Animal, error) {
	a, err := s.animals.GetByID(ctx, id)
	if err != nil {
		return animals.Animal{}, fmt.Errorf("%w: animal %d", ErrNotFound, id)
	}
	return a, nil
}

func (s *Service) cage(ctx context.Context, id int64) (cages.Cage, error) {
	c, err := s.cages.GetByID(ctx, id)
	if err != nil {
		return cages.Cage{}, fmt.Errorf("%w: cage %d", ErrNotFound, id)
	}
	return c, nil
}

func (s *Service) keeper(ctx context.Context, id int64) (keepers.Keeper, error) {
	k, err := s.keepers.GetByID(ctx, id)
	if err != nil {
		return keepers.Keeper{}, fmt.Errorf("%w: keeper %d", ErrNotFound, id)
	}
	return k, nil
}

// occupantsOf resuelve los ocupantes actuales de una jaula. Un ID huérfano
// acá es estado corrupto, no una violación de regla.
func (s *Service) occupantsOf(ctx context.Context, c cages.Cage) ([]animals.Animal, error) {
	out := make([]animals.Animal, 0, len(c.AnimalIDs))
	for _, id := range c.AnimalIDs {
		a, err := s.animal(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("cage %s occupant: %w", c.Number, err)
		}
		out = append(out, a)
	}
	return out, nil
}

// -------------------------
// Altas, bajas y updates de entidades
// -------------------------

func (s *Service) RegisterAnimal(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	if v := s.rules.CheckAnimal(a, s.now()); v != nil {
		return animals.Animal{}, v
	}
	return s.animals.Add(ctx, a)
}

func (s *Service) GetAnimal(ctx context.Context, id int64) (animals.Animal, error) {
	return s.animal(ctx, id)
}

func (s *Service) ListAnimals(ctx context.Context) ([]animals.Animal, error) {
	return s.animals.List(ctx)
}

func (s *Service) UpdateAnimal(ctx context.Context, a animals.Animal) (animals.Animal, error) {
	if _, err := s.animal(ctx, a.ID); err != nil {
		return animals.Animal{}, err
	}
	if v := s.rules.CheckAnimal(a, s.now()); v != nil {
		return animals.Animal{}, v
	}
	if err := s.animals.Update(ctx, a); err != nil {
		return animals.Animal{}, err
	}
	return a, nil
}

// RemoveAnimal da de baja al animal del sistema. Si está alojado, primero
// lo saca de la jaula: sacar de una jaula y borrar del sistema son
// operaciones distintas, pero la baja completa implica la primera.
func (s *Service) RemoveAnimal(ctx context.Context, id int64) error {
	if _, err := s.animal(ctx, id); err != nil {
		return err
	}

	all, err := s.cages.List(ctx)
	if err != nil {
		return err
	}
	for _, c := range all {
		if !c.Holds(id) {
			continue
		}
		c.AnimalIDs = slices.DeleteFunc(c.AnimalIDs, func(v int64) bool { return v == id })
		if err := s.cages.Update(ctx, c); err != nil {
			return err
		}
	}

	_, err = s.animals.Remove(ctx, id)
	return err
}

func (s *Service) RegisterCage(ctx context.Context, c cages.Cage) (cages.Cage, error) {
	c.AnimalIDs = nil
	c.KeeperID = 0
	if v := s.rules.CheckCage(c); v != nil {
		return cages.Cage{}, v
	}
	return s.cages.Add(ctx, c)
}

func (s *Service) GetCage(ctx context.Context, id int64) (cages.Cage, error) {
	return s.cage(ctx, id)
}

func (s *Service) ListCages(ctx context.Context) ([]cages.Cage, error) {
	return s.cages.List(ctx)
}

// UpdateCage cambia número, descripción y capacidad. Las relaciones se
// preservan siempre desde el estado almacenado; bajar la capacidad por
// debajo de la ocupación actual es INVALID_CAGE_DATA.
func (s *Service) UpdateCage(ctx context.Context, c cages.Cage) (cages.Cage, error) {
	current, err := s.cage(ctx, c.ID)
	if err != nil {
		return cages.Cage{}, err
	}

	current.Number = c.Number
	current.Description = c.Description
	current.Capacity = c.Capacity

	if v := s.rules.CheckCage(current); v != nil {
		return cages.Cage{}, v
	}
	if err := s.cages.Update(ctx, current); err != nil {
		return cages.Cage{}, err
	}
	return current, nil
}

// RemoveCage borra la jaula solo si está vacía. Si tenía cuidador
// asignado, lo desvincula: la jaula deja de existir, así que el mínimo de
// carga no aplica (mismo estado terminal que la baja de cuidador).
func (s *Service) RemoveCage(ctx context.Context, id int64) error {
	c, err := s.cage(ctx, id)
	if err != nil {
		return err
	}
	if c.Occupancy() > 0 {
		return fmt.Errorf("%w: cage %s still holds %d animal(s)", ErrStateConflict, c.Number, c.Occupancy())
	}

	if c.KeeperID != 0 {
		k, err := s.keeper(ctx, c.KeeperID)
		if err != nil {
			return err
		}
		k.CageIDs = slices.DeleteFunc(k.CageIDs, func(v int64) bool { return v == id })
		if err := s.keepers.Update(ctx, k); err != nil {
			return err
		}
	}

	_, err = s.cages.Remove(ctx, id)
	return err
}

func (s *Service) RegisterKeeper(ctx context.Context, k keepers.Keeper) (keepers.Keeper, error) {
	k.CageIDs = nil
	if v := s.rules.CheckKeeper(k); v != nil {
		return keepers.Keeper{}, v
	}
	return s.keepers.Add(ctx, k)
}

func (s *Service) GetKeeper(ctx context.Context, id int64) (keepers.Keeper, error) {
	return s.keeper(ctx, id)
}

func (s *Service) ListKeepers(ctx context.Context) ([]keepers.Keeper, error) {
	return s.keepers.List(ctx)
}

func (s *Service) UpdateKeeper(ctx context.Context, k keepers.Keeper) (keepers.Keeper, error) {
	current, err := s.keeper(ctx, k.ID)
	if err != nil {
		return keepers.Keeper{}, err
	}

	current.FirstName = k.FirstName
	current.Surname = k.Surname
	current.Address = k.Address
	current.ContactNumber = k.ContactNumber
	current.Position = k.Position

	if v := s.rules.CheckKeeper(current); v != nil {
		return keepers.Keeper{}, v
	}
	if err := s.keepers.Update(ctx, current); err != nil {
		return keepers.Keeper{}, err
	}
	return current, nil
}

// RemoveKeeper da de baja al cuidador solo si no tiene jaulas asignadas.
func (s *Service) RemoveKeeper(ctx context.Context, id int64) error {
	k, err := s.keeper(ctx, id)
	if err != nil {
		return err
	}
	if k.Workload() > 0 {
		return fmt.Errorf("%w: keeper %s %s still manages %d cage(s)",
			ErrStateConflict, k.FirstName, k.Surname, k.Workload())
	}
	_, err = s.keepers.Remove(ctx, id)
	return err
}

// -------------------------
// Asignaciones
// -------------------------

// AllocateAnimal aloja un animal en una jaula.
func (s *Service) AllocateAnimal(ctx context.Context, animalID, cageID int64) error {
	a, err := s.animal(ctx, animalID)
	if err != nil {
		return err
	}
	c, err := s.cage(ctx, cageID)
	if err != nil {
		return err
	}
	occupants, err := s.occupantsOf(ctx, c)
	if err != nil {
		return err
	}

	if v := s.rules.AnimalToCage(a, c, occupants); v != nil {
		return v
	}

	c.AnimalIDs = append(c.AnimalIDs, animalID)
	return s.cages.Update(ctx, c)
}

// ReleaseAnimal saca un animal de una jaula (el animal sigue registrado).
func (s *Service) ReleaseAnimal(ctx context.Context, animalID, cageID int64) error {
	a, err := s.animal(ctx, animalID)
	if err != nil {
		return err
	}
	c, err := s.cage(ctx, cageID)
	if err != nil {
		return err
	}

	if v := s.rules.AnimalRemoval(a, c); v != nil {
		return v
	}

	c.AnimalIDs = slices.DeleteFunc(c.AnimalIDs, func(v int64) bool { return v == animalID })
	return s.cages.Update(ctx, c)
}

// AssignKeeper asigna un cuidador a una jaula. Si la jaula ya tenía otro
// cuidador, primero lo desvincula: asignar funciona también como
// reasignación.
func (s *Service) AssignKeeper(ctx context.Context, keeperID, cageID int64) error {
	k, err := s.keeper(ctx, keeperID)
	if err != nil {
		return err
	}
	c, err := s.cage(ctx, cageID)
	if err != nil {
		return err
	}

	var prev *keepers.Keeper
	if c.KeeperID != 0 && c.KeeperID != keeperID {
		p, err := s.keeper(ctx, c.KeeperID)
		if err != nil {
			return err
		}
		prev = &p
	}

	if v := s.rules.KeeperToCage(k, c); v != nil {
		return v
	}

	if prev != nil {
		prev.CageIDs = slices.DeleteFunc(prev.CageIDs, func(v int64) bool { return v == cageID })
		if err := s.keepers.Update(ctx, *prev); err != nil {
			return err
		}
	}

	c.KeeperID = keeperID
	if err := s.cages.Update(ctx, c); err != nil {
		return err
	}

	k.CageIDs = append(k.CageIDs, cageID)
	return s.keepers.Update(ctx, k)
}

// UnassignKeeper quita la jaula del cuidador. Si la jaula no estaba
// asignada a ese cuidador, es un no-op (quitar una asignación inexistente
// es idempotente); la regla de underload igual se valida antes.
func (s *Service) UnassignKeeper(ctx context.Context, keeperID, cageID int64, allowUnderload bool) error {
	k, err := s.keeper(ctx, keeperID)
	if err != nil {
		return err
	}
	c, err := s.cage(ctx, cageID)
	if err != nil {
		return err
	}

	if v := s.rules.KeeperRemoval(k, allowUnderload); v != nil {
		return v
	}

	if c.KeeperID != keeperID {
		return nil
	}

	c.KeeperID = 0
	if err := s.cages.Update(ctx, c); err != nil {
		return err
	}

	k.CageIDs = slices.DeleteFunc(k.CageIDs, func(v int64) bool { return v == cageID })
	return s.keepers.Update(ctx, k)
}

// -------------------------
// Vistas derivadas (recalculadas por llamada, sin cache)
// -------------------------

// AvailableAnimals devuelve los animales que no están en ninguna jaula.
func (s *Service) AvailableAnimals(ctx context.Context) ([]animals.Animal, error) {
	all, err := s.animals.List(ctx)
	if err != nil {
		return nil, err
	}
	cgs, err := s.cages.List(ctx)
	if err != nil {
		return nil, err
	}

	housed := map[int64]struct{}{}
	for _, c := range cgs {
		for _, id := range c.AnimalIDs {
			housed[id] = struct{}{}
		}
	}

	out := make([]animals.Animal, 0)
	for _, a := range all {
		if _, ok := housed[a.ID]; !ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// AvailableCages devuelve las jaulas que no están a capacidad.
func (s *Service) AvailableCages(ctx context.Context) ([]cages.Cage, error) {
	all, err := s.cages.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]cages.Cage, 0)
	for _, c := range all {
		if c.Status() != cages.StatusFull {
			out = append(out, c)
		}
	}
	return out, nil
}

// AvailableKeepers devuelve los cuidadores por debajo de la carga máxima.
func (s *Service) AvailableKeepers(ctx context.Context) ([]keepers.Keeper, error) {
	all, err := s.keepers.List(ctx)
	if err != nil {
		return nil, err
	}
	max := s.rules.cfg.KeeperConstraints().MaxCages
	out := make([]keepers.Keeper, 0)
	for _, k := range all {
		if k.WorkloadStatus(max) == keepers.WorkloadAvailable {
			out = append(out, k)
		}
	}
	return out, nil
}

// -------------------------
// Puente de persistencia
// -------------------------

func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	as, err := s.animals.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	cs, err := s.cages.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	ks, err := s.keepers.List(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{Animals: as, Cages: cs, Keepers: ks}, nil
}

// Restore rehidrata los registries desde un snapshot persistido,
// sanity-checkeando cada entidad cargada con las mismas reglas de campos
// que usan las altas.
func (s *Service) Restore(ctx context.Context, snap Snapshot) error {
	now := s.now()
	for _, a := range snap.Animals {
		if v := s.rules.CheckAnimal(a, now); v != nil {
			return fmt.Errorf("restore animal %d: %w", a.ID, v)
		}
	}
	for _, c := range snap.Cages {
		if v := s.rules.CheckCage(c); v != nil {
			return fmt.Errorf("restore cage %d: %w", c.ID, v)
		}
	}
	for _, k := range snap.Keepers {
		if v := s.rules.CheckKeeper(k); v != nil {
			return fmt.Errorf("restore keeper %d: %w", k.ID, v)
		}
	}

	if err := s.animals.Restore(ctx, snap.Animals); err != nil {
		return err
	}
	if err := s.cages.Restore(ctx, snap.Cages); err != nil {
		return err
	}
	return s.keepers.Restore(ctx, snap.Keepers)
}
