package conservation

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/animals", func(ar chi.Router) {
		ar.Post("/", createAnimalHandler(svc))
		ar.Get("/", listAnimalsHandler(svc))
		ar.Get("/available", availableAnimalsHandler(svc))
		ar.Get("/{animalID}", getAnimalHandler(svc))
		ar.Put("/{animalID}", updateAnimalHandler(svc))
		ar.Delete("/{animalID}", deleteAnimalHandler(svc))
	})

	r.Route("/cages", func(cr chi.Router) {
		cr.Post("/", createCageHandler(svc))
		cr.Get("/", listCagesHandler(svc))
		cr.Get("/available", availableCagesHandler(svc))
		cr.Get("/{cageID}", getCageHandler(svc))
		cr.Put("/{cageID}", updateCageHandler(svc))
		cr.Delete("/{cageID}", deleteCageHandler(svc))

		// Asignaciones: ambos lados de la relación los mantiene el service
		cr.Post("/{cageID}/animals/{animalID}", allocateAnimalHandler(svc))
		cr.Delete("/{cageID}/animals/{animalID}", releaseAnimalHandler(svc))
		cr.Post("/{cageID}/keeper/{keeperID}", assignKeeperHandler(svc))
		cr.Delete("/{cageID}/keeper/{keeperID}", unassignKeeperHandler(svc))
	})

	r.Route("/keepers", func(kr chi.Router) {
		kr.Post("/", createKeeperHandler(svc))
		kr.Get("/", listKeepersHandler(svc))
		kr.Get("/available", availableKeepersHandler(svc))
		kr.Get("/{keeperID}", getKeeperHandler(svc))
		kr.Put("/{keeperID}", updateKeeperHandler(svc))
		kr.Delete("/{keeperID}", deleteKeeperHandler(svc))
	})
}

func urlID(r *http.Request, key string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, key), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

// writeErr mapea los tres ejes de fallo a HTTP:
// - not-found → 404
// - violación de regla → 400 (datos inválidos) o 409 (capacidad, mezcla,
//   carga); el diagnóstico viaja textual para que el operador lo vea tal cual
// - violación de estado (bajas completas) → 409
func writeErr(w http.ResponseWriter, err error) {
	if v, ok := AsViolation(err); ok {
		status := http.StatusConflict
		switch v.Kind {
		case KindInvalidAnimalData, KindInvalidKeeperData, KindInvalidCageData, KindInvalidInput:
			status = http.StatusBadRequest
		}
		writeJSON(w, status, errorResponse{Error: v.Message, Kind: string(v.Kind)})
		return
	}

	switch {
	case errors.Is(err, ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, ErrStateConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeInvalidInput(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: msg, Kind: string(KindInvalidInput)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
