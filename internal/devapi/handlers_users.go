package devapi

import (
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"parkdesk.app/internal/services"
)

var knownRoles = map[string]bool{
	roleAdmin:  true,
	roleUser:   true,
	roleWorker: true,
}

func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.Users())
}

func (a *API) UsersByBusiness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.store.UsersByBusiness(r.PathValue("id")))
}

func (a *API) UsersInMyBusiness(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	if p.User.Business == "" {
		writeJSON(w, http.StatusOK, []services.User{})
		return
	}
	writeJSON(w, http.StatusOK, a.store.UsersByBusiness(p.User.Business))
}

func (a *API) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req services.CreateUser
	if !decodeBody(w, r, &req) {
		return
	}
	req.User = strings.TrimSpace(req.User)
	if req.User == "" || req.Password == "" {
		writeBadRequest(w, "user and password are required")
		return
	}
	if _, _, err := a.store.UserByLogin(req.User); err == nil {
		writeError(w, http.StatusConflict, "Conflict", "user already exists")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.log.Error().Err(err).Msg("hash password failed")
		writeError(w, http.StatusInternalServerError, "Internal", "could not create user")
		return
	}

	// New accounts start as workers in the caller's business.
	p, _ := principalFromContext(r.Context())
	u := a.store.CreateUser(services.User{
		User:     req.User,
		Business: p.User.Business,
		Role:     roleWorker,
		Enabled:  true,
	}, hash)
	writeJSON(w, http.StatusCreated, u)
}

func (a *API) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var req services.UpdateUser
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Role != "" && !knownRoles[req.Role] {
		writeBadRequest(w, "unknown role")
		return
	}

	var hash []byte
	if req.Password != "" {
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			a.log.Error().Err(err).Msg("hash password failed")
			writeError(w, http.StatusInternalServerError, "Internal", "could not update user")
			return
		}
	}

	u, err := a.store.UpdateUser(r.PathValue("id"), func(rec *userRecord) {
		if req.User != "" {
			rec.User.User = req.User
		}
		if req.Role != "" {
			rec.Role = req.Role
		}
		if hash != nil {
			rec.PasswordHash = hash
		}
	})
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) SetUserRole(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if !knownRoles[req.Role] {
		writeBadRequest(w, "unknown role")
		return
	}
	u, err := a.store.UpdateUser(r.PathValue("id"), func(rec *userRecord) {
		rec.Role = req.Role
	})
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) SetUserStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	u, err := a.store.UpdateUser(r.PathValue("id"), func(rec *userRecord) {
		rec.Enabled = req.Enabled
	})
	if err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, _ := principalFromContext(r.Context())
	id := r.PathValue("id")
	if id == p.User.ID {
		writeBadRequest(w, "cannot delete the calling user")
		return
	}
	if err := a.store.DeleteUser(id); err != nil {
		writeNotFound(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": true})
}
