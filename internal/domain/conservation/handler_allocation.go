package conservation

import (
	"errors"
	"net/http"

	"conservation-registry/internal/observability"
)

// allocationOutcome etiqueta el resultado para métricas: success, el kind
// de la violación, not_found o error.
func allocationOutcome(err error) string {
	if err == nil {
		return "success"
	}
	if v, ok := AsViolation(err); ok {
		return string(v.Kind)
	}
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "error"
}

func allocateAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cageID, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		animalID, ok := urlID(r, "animalID")
		if !ok {
			writeInvalidInput(w, "animal id must be a positive integer")
			return
		}

		err := svc.AllocateAnimal(r.Context(), animalID, cageID)
		observability.RecordAllocation("allocate_animal", allocationOutcome(err))
		if err != nil {
			writeErr(w, err)
			return
		}

		c, err := svc.GetCage(r.Context(), cageID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCageResponse(c))
	}
}

func releaseAnimalHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cageID, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		animalID, ok := urlID(r, "animalID")
		if !ok {
			writeInvalidInput(w, "animal id must be a positive integer")
			return
		}

		err := svc.ReleaseAnimal(r.Context(), animalID, cageID)
		observability.RecordAllocation("release_animal", allocationOutcome(err))
		if err != nil {
			writeErr(w, err)
			return
		}

		c, err := svc.GetCage(r.Context(), cageID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCageResponse(c))
	}
}

func assignKeeperHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cageID, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		keeperID, ok := urlID(r, "keeperID")
		if !ok {
			writeInvalidInput(w, "keeper id must be a positive integer")
			return
		}

		err := svc.AssignKeeper(r.Context(), keeperID, cageID)
		observability.RecordAllocation("assign_keeper", allocationOutcome(err))
		if err != nil {
			writeErr(w, err)
			return
		}

		k, err := svc.GetKeeper(r.Context(), keeperID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toKeeperResponse(k))
	}
}

func unassignKeeperHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cageID, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		keeperID, ok := urlID(r, "keeperID")
		if !ok {
			writeInvalidInput(w, "keeper id must be a positive integer")
			return
		}

		// allow_underload habilita el estado terminal (quedar en cero
		// jaulas antes de dar de baja al cuidador)
		allowUnderload := r.URL.Query().Get("allow_underload") == "true"

		err := svc.UnassignKeeper(r.Context(), keeperID, cageID, allowUnderload)
		observability.RecordAllocation("unassign_keeper", allocationOutcome(err))
		if err != nil {
			writeErr(w, err)
			return
		}

		k, err := svc.GetKeeper(r.Context(), keeperID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toKeeperResponse(k))
	}
}
