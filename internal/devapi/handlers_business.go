package devapi

import (
	"net/http"

	"parkdesk.app/internal/services"
)

func (a *API) ListBusinesses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Businesses())
}

func (a *API) MyBusinesses(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	writeJSON(w, http.StatusOK, a.store.BusinessesForUser(p.User.ID))
}

func (a *API) GetBusiness(w http.ResponseWriter, r *http.Request) {
	b, err := a.store.BusinessByID(r.PathValue("id"))
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) CreateBusiness(w http.ResponseWriter, r *http.Request) {
	var draft services.BusinessDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	if draft.BusinessName == "" {
		writeBadRequest(w, "businessName is required")
		return
	}
	p, _ := principalFromContext(r.Context())
	b := a.store.CreateBusiness(applyBusinessDraft(services.Business{UserID: p.User.ID}, draft))
	writeJSON(w, http.StatusCreated, b)
}

func (a *API) UpdateBusiness(w http.ResponseWriter, r *http.Request) {
	var draft services.BusinessDraft
	if !decodeBody(w, r, &draft) {
		return
	}
	b, err := a.store.UpdateBusiness(r.PathValue("id"), func(b *services.Business) {
		*b = applyBusinessDraft(*b, draft)
	})
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// SetBusinessUser attaches the calling user to the business and points their
// user document at it.
func (a *API) SetBusinessUser(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	id := r.PathValue("id")

	b, err := a.store.UpdateBusiness(id, func(b *services.Business) {
		if !containsString(b.Users, p.User.ID) {
			b.Users = append(b.Users, p.User.ID)
		}
	})
	if err != nil {
		writeNotFound(w)
		return
	}
	if _, err := a.store.UpdateUser(p.User.ID, func(rec *userRecord) {
		rec.Business = id
	}); err != nil {
		a.log.Warn().Err(err).Str("user", p.User.ID).Msg("attach business to user failed")
	}
	writeJSON(w, http.StatusOK, b)
}

func (a *API) DeleteBusiness(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteBusiness(r.PathValue("id")); err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func applyBusinessDraft(b services.Business, d services.BusinessDraft) services.Business {
	b.Name = d.Name
	b.BusinessName = d.BusinessName
	b.BusinessBrand = d.BusinessBrand
	b.CarHourCost = d.CarHourCost
	b.MotorcycleHourCost = d.MotorcycleHourCost
	b.CarMonthlyCost = d.CarMonthlyCost
	b.MotorcycleMonthlyCost = d.MotorcycleMonthlyCost
	b.CarDayCost = d.CarDayCost
	b.MotorcycleDayCost = d.MotorcycleDayCost
	b.CarNightCost = d.CarNightCost
	b.MotorcycleNightCost = d.MotorcycleNightCost
	b.StudentMotorcycleHourCost = d.StudentMotorcycleHourCost
	b.BusinessNIT = d.BusinessNIT
	b.BusinessResolution = d.BusinessResolution
	b.Address = d.Address
	b.Schedule = d.Schedule
	return b
}
