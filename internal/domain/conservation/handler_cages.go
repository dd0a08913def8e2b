package conservation

import (
	"encoding/json"
	"net/http"
	"strings"

	"conservation-registry/internal/domain/cages"
)

type cageRequest struct {
	Number      string `json:"number"`
	Description string `json:"description"`
	Capacity    int    `json:"capacity"`
}

type cageResponse struct {
	ID          int64   `json:"id"`
	Number      string  `json:"number"`
	Description string  `json:"description"`
	Capacity    int     `json:"capacity"`
	AnimalIDs   []int64 `json:"animal_ids"`
	KeeperID    int64   `json:"keeper_id,omitempty"`
	Status      string  `json:"status"`
	FreeSpace   int     `json:"free_space"`
}

func toCageResponse(c cages.Cage) cageResponse {
	ids := c.AnimalIDs
	if ids == nil {
		ids = []int64{}
	}
	return cageResponse{
		ID:          c.ID,
		Number:      c.Number,
		Description: c.Description,
		Capacity:    c.Capacity,
		AnimalIDs:   ids,
		KeeperID:    c.KeeperID,
		Status:      string(c.Status()),
		FreeSpace:   c.AvailableSpace(),
	}
}

func decodeCage(r *http.Request) (cages.Cage, string) {
	var req cageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return cages.Cage{}, "invalid json"
	}
	return cages.Cage{
		Number:      strings.TrimSpace(req.Number),
		Description: strings.TrimSpace(req.Description),
		Capacity:    req.Capacity,
	}, ""
}

func createCageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, msg := decodeCage(r)
		if msg != "" {
			writeInvalidInput(w, msg)
			return
		}

		created, err := svc.RegisterCage(r.Context(), c)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toCageResponse(created))
	}
}

func listCagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListCages(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]cageResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCageResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func availableCagesHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.AvailableCages(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]cageResponse, 0, len(items))
		for _, c := range items {
			out = append(out, toCageResponse(c))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getCageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		c, err := svc.GetCage(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCageResponse(c))
	}
}

func updateCageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		c, msg := decodeCage(r)
		if msg != "" {
			writeInvalidInput(w, msg)
			return
		}
		c.ID = id

		updated, err := svc.UpdateCage(r.Context(), c)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toCageResponse(updated))
	}
}

func deleteCageHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "cageID")
		if !ok {
			writeInvalidInput(w, "cage id must be a positive integer")
			return
		}
		if err := svc.RemoveCage(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
