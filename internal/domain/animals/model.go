package animals

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound = errors.New("animal not found")
)

// Category define la clasificación de convivencia del animal.
// @Enum predator, prey
type Category string

const (
	CategoryPredator Category = "predator"
	CategoryPrey     Category = "prey"
)

// Sex define el sexo del animal.
// @Enum male, female, unknown
type Sex string

const (
	SexMale    Sex = "male"
	SexFemale  Sex = "female"
	SexUnknown Sex = "unknown"
)

// Animal representa un animal registrado en las instalaciones.
// El ID lo asigna el registry al agregarlo; 0 = aún no registrado.
type Animal struct {
	ID int64

	Name     string
	Species  string
	Category Category // predator, prey
	Sex      Sex

	BirthDate    time.Time
	AcquiredDate time.Time
}

func ParseCategory(s string) (Category, bool) {
	switch Category(strings.ToLower(strings.TrimSpace(s))) {
	case CategoryPredator:
		return CategoryPredator, true
	case CategoryPrey:
		return CategoryPrey, true
	default:
		return "", false
	}
}

func ParseSex(s string) (Sex, bool) {
	switch Sex(strings.ToLower(strings.TrimSpace(s))) {
	case SexMale:
		return SexMale, true
	case SexFemale:
		return SexFemale, true
	case SexUnknown, "":
		return SexUnknown, true
	default:
		return "", false
	}
}

// IsPredator es azúcar para las reglas de convivencia.
func (a Animal) IsPredator() bool { return a.Category == CategoryPredator }
