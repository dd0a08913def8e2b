package conservation

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"conservation-registry/internal/domain/animals"
)

type animalRequest struct {
	Name         string `json:"name"`
	Species      string `json:"species"`
	Category     string `json:"category"` // predator | prey
	Sex          string `json:"sex"`
	BirthDate    string `json:"birth_date"`    // YYYY-MM-DD
	AcquiredDate string `json:"acquired_date"` // YYYY-MM-DD
}

type animalResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Species      string `json:"species"`
	Category     string `json:"category"`
	Sex          string `json:"sex"`
	BirthDate    string `json:"birth_date"`
	AcquiredDate string `json:"acquired_date"`
}

func toAnimalResponse(a animals.Animal) animalResponse {
	return animalResponse{
		ID:           a.ID,
		Name:         a.Name,
		Species:      a.Species,
		Category:     string(a.Category),
		Sex:          string(a.Sex),
		BirthDate:    a.BirthDate.Format("2006-01-02"),
		AcquiredDate: a.AcquiredDate.Format("2006-01-02"),
	}
}

// decodeAnimal arma el Animal desde el request; el chequeo de reglas de
// campos lo hace el service, acá solo parseamos.
func decodeAnimal(r *http.Request) (animals.Animal, string) {
	var req animalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return animals.Animal{}, "invalid json"
	}

	cat, ok := animals.ParseCategory(req.Category)
	if !ok {
		return animals.Animal{}, "category must be predator or prey"
	}
	sex, ok := animals.ParseSex(req.Sex)
	if !ok {
		return animals.Animal{}, "sex must be male, female or unknown"
	}

	a := animals.Animal{
		Name:     strings.TrimSpace(req.Name),
		Species:  strings.TrimSpace(req.Species),
		Category: cat,
		Sex:      sex,
	}

	if strings.TrimSpace(req.BirthDate) != "" {
		t, err := time.Parse("2006-01-02", req.BirthDate)
		if err != nil {
			return animals.Animal{}, "birth_date must be YYYY-MM-DD"
		}
		a.BirthDate = t
	}
	if strings.TrimSpace(req.AcquiredDate) != "" {
		t, err := time.Parse("2006-01-02", req.AcquiredDate)
		if err != nil {
			return animals.Animal{}, "acquired_date must be YYYY-MM-DD"
		}
		a.AcquiredDate = t
	}

	return a, ""
}

func createAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, msg := decodeAnimal(r)
		if msg != "" {
			writeInvalidInput(w, msg)
			return
		}

		created, err := svc.RegisterAnimal(r.Context(), a)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAnimalResponse(created))
	}
}

func listAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListAnimals(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func availableAnimalsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.AvailableAnimals(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]animalResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnimalResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "animalID")
		if !ok {
			writeInvalidInput(w, "animal id must be a positive integer")
			return
		}
		a, err := svc.GetAnimal(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(a))
	}
}

func updateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "animalID")
		if !ok {
			writeInvalidInput(w, "animal id must be a positive integer")
			return
		}
		a, msg := decodeAnimal(r)
		if msg != "" {
			writeInvalidInput(w, msg)
			return
		}
		a.ID = id

		updated, err := svc.UpdateAnimal(r.Context(), a)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAnimalResponse(updated))
	}
}

func deleteAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "animalID")
		if !ok {
			writeInvalidInput(w, "animal id must be a positive integer")
			return
		}
		if err := svc.RemoveAnimal(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
