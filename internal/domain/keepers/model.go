package keepers

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrNotFound = errors.New("keeper not found")
)

// Position define el rol del cuidador. Es un tag sobre un único tipo
// Keeper (sin jerarquía de clases): la única diferencia real entre roles
// es el permiso de gestión.
// @Enum head_keeper, assistant_keeper
type Position string

const (
	PositionHead      Position = "head_keeper"
	PositionAssistant Position = "assistant_keeper"
)

func ParsePosition(s string) (Position, bool) {
	switch Position(strings.ToLower(strings.TrimSpace(s))) {
	case PositionHead:
		return PositionHead, true
	case PositionAssistant:
		return PositionAssistant, true
	default:
		return "", false
	}
}

// HasManagementPermissions indica si el rol tiene capacidad de gestión
// completa sobre las instalaciones.
func (p Position) HasManagementPermissions() bool { return p == PositionHead }

// WorkloadStatus es el estado derivado de carga del cuidador.
// @Enum available, overloaded
type WorkloadStatus string

const (
	WorkloadAvailable  WorkloadStatus = "available"
	WorkloadOverloaded WorkloadStatus = "overloaded"
)

// Keeper representa un cuidador. CageIDs es la lista ordenada de jaulas
// asignadas; su tamaño lo acotan las reglas de carga configuradas.
type Keeper struct {
	ID int64

	FirstName     string
	Surname       string
	Address       string
	ContactNumber string
	Position      Position

	CageIDs []int64
}

func (k Keeper) Workload() int { return len(k.CageIDs) }

func (k Keeper) Holds(cageID int64) bool { return slices.Contains(k.CageIDs, cageID) }

func (k Keeper) WorkloadStatus(maxCages int) WorkloadStatus {
	if len(k.CageIDs) >= maxCages {
		return WorkloadOverloaded
	}
	return WorkloadAvailable
}
