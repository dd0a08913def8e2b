package conservation

import (
	"time"

	"conservation-registry/internal/domain/animals"
	"conservation-registry/internal/domain/cages"
	"conservation-registry/internal/domain/keepers"
)

// KeeperConstraints acota la carga de trabajo de un cuidador.
type KeeperConstraints struct {
	MinCages int
	MaxCages int
}

// AnimalRules configura la convivencia entre categorías.
type AnimalRules struct {
	PredatorShareable bool
	PreyShareable     bool
}

// ConstraintSource entrega las restricciones configuradas. Se consulta en
// cada validación, nunca se cachea.
type ConstraintSource interface {
	KeeperConstraints() KeeperConstraints
	AnimalRules() AnimalRules
}

// Rules es el motor de reglas de asignación: funciones puras sobre
// entidades ya resueltas. No hace I/O ni muta registries; cada chequeo
// devuelve su propio resultado (nil = pasa).
type Rules struct {
	cfg ConstraintSource
}

func NewRules(cfg ConstraintSource) Rules {
	return Rules{cfg: cfg}
}

// AnimalToCage valida alojar un animal en una jaula. Los chequeos van en
// orden y cortan en el primero que falla. Capacidad se chequea al final:
// si la jaula además está llena, la violación de convivencia es el
// diagnóstico más accionable y es el que se reporta.
//
// occupants son los ocupantes actuales de la jaula ya resueltos por el
// caller (la jaula solo guarda IDs).
func (r Rules) AnimalToCage(a animals.Animal, c cages.Cage, occupants []animals.Animal) *Violation {
	if a.ID <= 0 {
		return violationf(KindInvalidAnimalData, "animal is not registered")
	}
	if c.ID <= 0 {
		return violationf(KindInvalidCageData, "cage is not registered")
	}

	if c.Holds(a.ID) {
		return violationf(KindInvalidAnimalData,
			"animal %q (id %d) is already housed in cage %s", a.Name, a.ID, c.Number)
	}

	rules := r.cfg.AnimalRules()
	if a.IsPredator() {
		if !rules.PredatorShareable && c.Occupancy() > 0 {
			return violationf(KindPredatorPreyMix,
				"predator %q (id %d) must be housed alone; cage %s holds %d animal(s)",
				a.Name, a.ID, c.Number, c.Occupancy())
		}
		for _, occ := range occupants {
			if !occ.IsPredator() {
				return violationf(KindPredatorPreyMix,
					"predator %q (id %d) cannot share cage %s with prey %q (id %d)",
					a.Name, a.ID, c.Number, occ.Name, occ.ID)
			}
		}
	} else {
		for _, occ := range occupants {
			if occ.IsPredator() {
				return violationf(KindPredatorPreyMix,
					"prey %q (id %d) cannot share cage %s with predator %q (id %d)",
					a.Name, a.ID, c.Number, occ.Name, occ.ID)
			}
		}
		if !rules.PreyShareable && c.Occupancy() > 0 {
			return violationf(KindPredatorPreyMix,
				"animal %q (id %d) must be housed alone; cage %s holds %d animal(s)",
				a.Name, a.ID, c.Number, c.Occupancy())
		}
	}

	if c.Occupancy() >= c.Capacity {
		return violationf(KindCageCapacityExceeded,
			"cage %s (id %d) is at capacity: %d/%d", c.Number, c.ID, c.Occupancy(), c.Capacity)
	}

	return nil
}

// KeeperToCage valida asignar un cuidador a una jaula.
func (r Rules) KeeperToCage(k keepers.Keeper, c cages.Cage) *Violation {
	if k.ID <= 0 {
		return violationf(KindInvalidKeeperData, "keeper is not registered")
	}
	if c.ID <= 0 {
		return violationf(KindInvalidCageData, "cage is not registered")
	}

	if k.Holds(c.ID) {
		return violationf(KindInvalidKeeperData,
			"keeper %s %s (id %d) is already assigned to cage %s", k.FirstName, k.Surname, k.ID, c.Number)
	}

	max := r.cfg.KeeperConstraints().MaxCages
	if k.Workload() >= max {
		return violationf(KindKeeperOverload,
			"keeper %s %s (id %d) already manages %d cage(s), max is %d",
			k.FirstName, k.Surname, k.ID, k.Workload(), max)
	}

	return nil
}

// KeeperRemoval valida quitarle una jaula a un cuidador. Con cero jaulas
// es trivialmente válido. Quedar por debajo del mínimo configurado se
// bloquea salvo allowUnderload: el flag existe para el estado terminal
// legítimo (llegar a cero jaulas antes de dar de baja al cuidador). El
// contrato es uniforme para ambos roles.
func (r Rules) KeeperRemoval(k keepers.Keeper, allowUnderload bool) *Violation {
	if k.ID <= 0 {
		return violationf(KindInvalidKeeperData, "keeper is not registered")
	}
	if k.Workload() == 0 {
		return nil
	}

	min := r.cfg.KeeperConstraints().MinCages
	after := k.Workload() - 1
	if after < min && !allowUnderload {
		return violationf(KindKeeperUnderload,
			"keeper %s %s (id %d) would drop to %d cage(s), min is %d",
			k.FirstName, k.Surname, k.ID, after, min)
	}

	return nil
}

// AnimalRemoval valida sacar un animal de una jaula: tiene que ser
// ocupante actual.
func (r Rules) AnimalRemoval(a animals.Animal, c cages.Cage) *Violation {
	if a.ID <= 0 {
		return violationf(KindInvalidAnimalData, "animal is not registered")
	}
	if c.ID <= 0 {
		return violationf(KindInvalidCageData, "cage is not registered")
	}
	if !c.Holds(a.ID) {
		return violationf(KindInvalidAnimalData,
			"animal %q (id %d) is not housed in cage %s", a.Name, a.ID, c.Number)
	}
	return nil
}

// CheckAnimal valida los campos de un animal al registrarlo o al cargar
// estado persistido.
func (r Rules) CheckAnimal(a animals.Animal, now time.Time) *Violation {
	if a.Name == "" {
		return violationf(KindInvalidAnimalData, "animal name is required")
	}
	if a.Species == "" {
		return violationf(KindInvalidAnimalData, "animal %q: species is required", a.Name)
	}
	if a.Category != animals.CategoryPredator && a.Category != animals.CategoryPrey {
		return violationf(KindInvalidAnimalData, "animal %q: category must be predator or prey", a.Name)
	}
	if a.Sex != animals.SexMale && a.Sex != animals.SexFemale && a.Sex != animals.SexUnknown {
		return violationf(KindInvalidAnimalData, "animal %q: invalid sex %q", a.Name, a.Sex)
	}
	if a.BirthDate.IsZero() || a.AcquiredDate.IsZero() {
		return violationf(KindInvalidAnimalData, "animal %q: birth and acquisition dates are required", a.Name)
	}
	if a.AcquiredDate.Before(a.BirthDate) {
		return violationf(KindInvalidAnimalData,
			"animal %q: acquired %s before birth %s",
			a.Name, a.AcquiredDate.Format("2006-01-02"), a.BirthDate.Format("2006-01-02"))
	}
	if a.BirthDate.After(now) || a.AcquiredDate.After(now) {
		return violationf(KindInvalidAnimalData, "animal %q: dates cannot be in the future", a.Name)
	}
	return nil
}

// CheckKeeper valida los campos de un cuidador.
func (r Rules) CheckKeeper(k keepers.Keeper) *Violation {
	if k.FirstName == "" || k.Surname == "" {
		return violationf(KindInvalidKeeperData, "keeper first name and surname are required")
	}
	if k.Position != keepers.PositionHead && k.Position != keepers.PositionAssistant {
		return violationf(KindInvalidKeeperData,
			"keeper %s %s: invalid position %q", k.FirstName, k.Surname, k.Position)
	}
	return nil
}

// CheckCage valida los campos de una jaula, incluyendo que la ocupación
// actual no exceda la capacidad (la capacidad solo puede bajar si la
// ocupación lo permite).
func (r Rules) CheckCage(c cages.Cage) *Violation {
	if c.Number == "" {
		return violationf(KindInvalidCageData, "cage number is required")
	}
	if c.Capacity <= 0 {
		return violationf(KindInvalidCageData, "cage %s: capacity must be positive", c.Number)
	}
	if c.Occupancy() > c.Capacity {
		return violationf(KindInvalidCageData,
			"cage %s: %d occupant(s) exceed capacity %d", c.Number, c.Occupancy(), c.Capacity)
	}
	seen := map[int64]struct{}{}
	for _, id := range c.AnimalIDs {
		if _, dup := seen[id]; dup {
			return violationf(KindInvalidCageData, "cage %s: duplicate occupant id %d", c.Number, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
