package devapi

import (
	"net/http"
	"strings"

	"parkdesk.app/internal/services"
)

func validVehicleType(t services.VehicleType) bool {
	return t == services.VehicleCar || t == services.VehicleMotorcycle
}

func (a *API) ListVehicles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Vehicles())
}

func (a *API) SearchVehicle(w http.ResponseWriter, r *http.Request) {
	plate := r.URL.Query().Get("plateNumber")
	if plate == "" {
		writeBadRequest(w, "plateNumber is required")
		return
	}
	v, err := a.store.VehicleByPlate(plate)
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var draft services.VehicleDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	draft.Plate = strings.ToUpper(strings.TrimSpace(draft.Plate))
	if draft.Plate == "" {
		writeBadRequest(w, "plateNumber is required")
		return
	}
	if !validVehicleType(draft.Type) {
		writeBadRequest(w, "vehicleType must be car or motorcycle")
		return
	}
	if _, err := a.store.VehicleByPlate(draft.Plate); err == nil {
		writeError(w, http.StatusConflict, "Conflict", "plate already registered")
		return
	}

	p, _ := principalFromContext(r.Context())
	v := a.store.CreateVehicle(services.Vehicle{
		Plate:      draft.Plate,
		Type:       draft.Type,
		BusinessID: p.User.Business,
	})
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var draft services.VehicleDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if draft.Type != "" && !validVehicleType(draft.Type) {
		writeBadRequest(w, "vehicleType must be car or motorcycle")
		return
	}
	v, err := a.store.UpdateVehicle(r.PathValue("id"), func(v *services.Vehicle) {
		if draft.Plate != "" {
			v.Plate = strings.ToUpper(strings.TrimSpace(draft.Plate))
		}
		if draft.Type != "" {
			v.Type = draft.Type
		}
	})
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (a *API) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteVehicle(r.PathValue("id")); err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

// --- vehicle logs ---

func (a *API) ListLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Logs())
}

func (a *API) ActiveLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.ActiveLogs())
}

func (a *API) LogsByPlate(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.LogsByPlate(r.PathValue("plate")))
}

func (a *API) LastLogByPlate(w http.ResponseWriter, r *http.Request) {
	log, err := a.store.LastLogByPlate(r.PathValue("plate"))
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, log)
}

func (a *API) FilterLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	businessID := q.Get("businessId")
	if businessID == "" {
		writeBadRequest(w, "businessId is required")
		return
	}
	writeJSON(w, http.StatusOK, a.store.FilterLogs(businessID, q.Get("dateStart"), q.Get("dateEnd")))
}

func (a *API) VehicleEntry(w http.ResponseWriter, r *http.Request) {
	var req services.EntryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Plate) == "" {
		writeBadRequest(w, "plateNumber is required")
		return
	}
	if !validVehicleType(req.Type) {
		writeBadRequest(w, "vehicleType must be car or motorcycle")
		return
	}

	p, _ := principalFromContext(r.Context())
	log, err := a.store.OpenLog(req.Plate, req.Type, p.User.Business)
	if err != nil {
		writeError(w, http.StatusConflict, "Conflict", err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, log)
}

func (a *API) VehicleCheckout(w http.ResponseWriter, r *http.Request) {
	var req services.CheckoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	log, err := a.store.CloseLog(r.PathValue("id"), req.Cost)
	if err != nil {
		if err == errNotFound {
			writeNotFound(w)
			return
		}
		writeError(w, http.StatusConflict, "Conflict", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, log)
}
