package devapi

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"parkdesk.app/internal/services"
)

// Login verifies credentials and issues a token. Invalid credentials return a
// 401 whose error label is deliberately NOT "Unauthorized" so clients do not
// confuse a failed sign-in with an expired session.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	var req services.SignInRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.User == "" || req.Password == "" {
		writeBadRequest(w, "user and password are required")
		return
	}

	user, hash, err := a.store.UserByLogin(req.User)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "InvalidCredentials", "wrong user or password")
		return
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "InvalidCredentials", "wrong user or password")
		return
	}
	if !user.Enabled {
		writeError(w, http.StatusForbidden, "Disabled", "account is disabled")
		return
	}

	token, err := a.signer.Generate(user.ID, user.Role, user.Business)
	if err != nil {
		a.log.Error().Err(err).Msg("token generation failed")
		writeError(w, http.StatusInternalServerError, "Internal", "could not issue token")
		return
	}

	writeJSON(w, http.StatusOK, services.SignInResponse{
		Token:    token,
		ID:       user.ID,
		Business: user.Business,
		Email:    user.Email,
		Name:     user.Name,
		LastName: user.LastName,
		Role:     user.Role,
	})
}

// SignOut is stateless on the server side; tokens simply age out.
func (a *API) SignOut(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "signed out"})
}

func (a *API) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := principalFromContext(r.Context())
	if !ok {
		writeNoToken(w)
		return
	}
	writeJSON(w, http.StatusOK, services.CurrentUser{
		ID:       p.User.ID,
		User:     p.User.User,
		Email:    p.User.Email,
		Business: p.User.Business,
		Name:     p.User.Name,
		LastName: p.User.LastName,
		Role:     p.User.Role,
		Enabled:  p.User.Enabled,
	})
}
