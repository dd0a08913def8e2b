package cages

import (
	"errors"
	"slices"
)

var (
	ErrNotFound = errors.New("cage not found")
)

// Status es el estado derivado de la jaula (solo reporte, no se almacena).
// @Enum empty, available, full
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusAvailable Status = "available"
	StatusFull      Status = "full"
)

// Cage representa una jaula de las instalaciones.
// Guarda solo IDs de animales y del cuidador asignado (nunca referencias);
// la consistencia de ambos lados de la relación la mantiene el service.
type Cage struct {
	ID int64

	Number      string
	Description string
	Capacity    int

	// AnimalIDs es el conjunto de ocupantes actuales (sin duplicados,
	// tamaño <= Capacity).
	AnimalIDs []int64

	// KeeperID es el cuidador asignado; 0 = sin asignar.
	KeeperID int64
}

func (c Cage) Occupancy() int { return len(c.AnimalIDs) }

func (c Cage) AvailableSpace() int { return c.Capacity - len(c.AnimalIDs) }

func (c Cage) Holds(animalID int64) bool { return slices.Contains(c.AnimalIDs, animalID) }

func (c Cage) Status() Status {
	switch {
	case len(c.AnimalIDs) == 0:
		return StatusEmpty
	case len(c.AnimalIDs) >= c.Capacity:
		return StatusFull
	default:
		return StatusAvailable
	}
}
