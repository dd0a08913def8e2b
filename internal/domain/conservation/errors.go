package conservation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound es el eje de fallo "entidad no existe": siempre fatal
	// para la operación pedida, nunca se reintenta.
	ErrNotFound = errors.New("not found")

	// ErrStateConflict es la clase de violación de estado de los paths de
	// baja completa (borrar jaula ocupada, cuidador con jaulas). Es
	// recuperable: el caller debe vaciar la relación primero.
	ErrStateConflict = errors.New("state conflict")
)

// Kind clasifica una violación de regla de negocio.
type Kind string

const (
	KindCageCapacityExceeded Kind = "CAGE_CAPACITY_EXCEEDED"
	KindPredatorPreyMix      Kind = "INVALID_PREDATOR_PREY_MIX"
	KindKeeperOverload       Kind = "KEEPER_OVERLOAD"
	KindKeeperUnderload      Kind = "KEEPER_UNDERLOAD"
	KindInvalidAnimalData    Kind = "INVALID_ANIMAL_DATA"
	KindInvalidKeeperData    Kind = "INVALID_KEEPER_DATA"
	KindInvalidCageData      Kind = "INVALID_CAGE_DATA"
	KindInvalidInput         Kind = "INVALID_INPUT"
)

// Violation es el resultado clasificado de una regla que no pasó.
// El mensaje se arma por llamada con el estado vivo de las entidades
// (ids, nombres, conteos) para que el operador pueda actuar directo.
type Violation struct {
	Kind    Kind
	Message string
}

func (v *Violation) Error() string { return v.Message }

func violationf(kind Kind, format string, args ...any) *Violation {
	return &Violation{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// AsViolation extrae la violación clasificada de un error, si la hay.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
