package conservation

import (
	"encoding/json"
	"net/http"
	"strings"

	"conservation-registry/internal/domain/keepers"
)

type keeperRequest struct {
	FirstName     string `json:"first_name"`
	Surname       string `json:"surname"`
	Address       string `json:"address"`
	ContactNumber string `json:"contact_number"`
	Position      string `json:"position"` // head_keeper | assistant_keeper
}

type keeperResponse struct {
	ID            int64   `json:"id"`
	FirstName     string  `json:"first_name"`
	Surname       string  `json:"surname"`
	Address       string  `json:"address"`
	ContactNumber string  `json:"contact_number"`
	Position      string  `json:"position"`
	Management    bool    `json:"management_permissions"`
	CageIDs       []int64 `json:"cage_ids"`
}

func toKeeperResponse(k keepers.Keeper) keeperResponse {
	ids := k.CageIDs
	if ids == nil {
		ids = []int64{}
	}
	return keeperResponse{
		ID:            k.ID,
		FirstName:     k.FirstName,
		Surname:       k.Surname,
		Address:       k.Address,
		ContactNumber: k.ContactNumber,
		Position:      string(k.Position),
		Management:    k.Position.HasManagementPermissions(),
		CageIDs:       ids,
	}
}

func decodeKeeper(r *http.Request) (keepers.Keeper, string) {
	var req keeperRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return keepers.Keeper{}, "invalid json"
	}
	pos, ok := keepers.ParsePosition(req.Position)
	if !ok {
		return keepers.Keeper{}, "position must be head_keeper or assistant_keeper"
	}
	return keepers.Keeper{
		FirstName:     strings.TrimSpace(req.FirstName),
		Surname:       strings.TrimSpace(req.Surname),
		Address:       strings.TrimSpace(req.Address),
		ContactNumber: strings.TrimSpace(req.ContactNumber),
		Position:      pos,
	}, ""
}

func createKeeperHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		k, msg := decodeKeeper(r)
		if msg != "" {
			writeInvalidInput(w, msg)
			return
		}

		created, err := svc.RegisterKeeper(r.Context(), k)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toKeeperResponse(created))
	}
}

func listKeepersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.ListKeepers(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]keeperResponse, 0, len(items))
		for _, k := range items {
			out = append(out, toKeeperResponse(k))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func availableKeepersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := svc.AvailableKeepers(r.Context())
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]keeperResponse, 0, len(items))
		for _, k := range items {
			out = append(out, toKeeperResponse(k))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getKeeperHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "keeperID")
		if !ok {
			writeInvalidInput(w, "keeper id must be a positive integer")
			return
		}
		k, err := svc.GetKeeper(r.Context(), id)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toKeeperResponse(k))
	}
}

func updateKeeperHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "keeperID")
		if !ok {
			writeInvalidInput(w, "keeper id must be a positive integer")
			return
		}
		k, msg := decodeKeeper(r)
		if msg != "" {
			writeInvalidInput(w, msg)
			return
		}
		k.ID = id

		updated, err := svc.UpdateKeeper(r.Context(), k)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toKeeperResponse(updated))
	}
}

func deleteKeeperHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := urlID(r, "keeperID")
		if !ok {
			writeInvalidInput(w, "keeper id must be a positive integer")
			return
		}
		if err := svc.RemoveKeeper(r.Context(), id); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
