// Package devapi is an in-memory stand-in for the production backend. It
// speaks the same wire contract the client SDK expects, so the console and
// the integration tests can run against a local process.
package devapi

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"parkdesk.app/internal/auth"
	"parkdesk.app/internal/obs"
)

const (
	roleAdmin  = "admin"
	roleUser   = "user"
	roleWorker = "worker"
)

// Options tunes the server. Zero values fall back to sane defaults.
type Options struct {
	LoginRate  float64
	LoginBurst int
	Version    string
}

// API is the development server. All state lives in the store.
type API struct {
	mux     *http.ServeMux
	store   *Store
	signer  *auth.Signer
	log     zerolog.Logger
	version string
}

func New(store *Store, signer *auth.Signer, log zerolog.Logger, opts Options) *API {
	if opts.LoginRate <= 0 {
		opts.LoginRate = 1
	}
	if opts.LoginBurst <= 0 {
		opts.LoginBurst = 5
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	a := &API{
		mux:     http.NewServeMux(),
		store:   store,
		signer:  signer,
		log:     log,
		version: opts.Version,
	}

	adminOnly := a.requireRole(roleAdmin)
	staff := a.requireRole(roleAdmin, roleUser, roleWorker)
	owners := a.requireRole(roleAdmin, roleUser)

	// Sign-in is the only brute-forceable endpoint; it gets its own limiter.
	a.mux.Handle("POST /auth/login",
		rateLimit(opts.LoginRate, opts.LoginBurst, http.HandlerFunc(a.Login)))
	a.mux.HandleFunc("POST /auth/signout", a.SignOut)
	a.mux.HandleFunc("GET /auth/me", a.Me)

	a.mux.HandleFunc("GET /business/all", adminOnly(a.ListBusinesses))
	a.mux.HandleFunc("GET /business/my-businesses", owners(a.MyBusinesses))
	a.mux.HandleFunc("GET /business/{id}", staff(a.GetBusiness))
	a.mux.HandleFunc("POST /business", owners(a.CreateBusiness))
	a.mux.HandleFunc("PATCH /business/{id}", owners(a.UpdateBusiness))
	a.mux.HandleFunc("PATCH /business/{id}/set-user", owners(a.SetBusinessUser))
	a.mux.HandleFunc("DELETE /business/{id}", adminOnly(a.DeleteBusiness))

	a.mux.HandleFunc("GET /users", adminOnly(a.ListUsers))
	a.mux.HandleFunc("GET /users/business/{id}", owners(a.UsersByBusiness))
	a.mux.HandleFunc("GET /users/my-business", owners(a.UsersInMyBusiness))
	a.mux.HandleFunc("POST /users", adminOnly(a.CreateUser))
	a.mux.HandleFunc("PATCH /users/{id}", adminOnly(a.UpdateUser))
	a.mux.HandleFunc("PATCH /users/{id}/role", adminOnly(a.SetUserRole))
	a.mux.HandleFunc("PATCH /users/{id}/status", adminOnly(a.SetUserStatus))
	a.mux.HandleFunc("DELETE /users/{id}", adminOnly(a.DeleteUser))

	a.mux.HandleFunc("GET /vehicles", staff(a.ListVehicles))
	a.mux.HandleFunc("GET /vehicles/search", staff(a.SearchVehicle))
	a.mux.HandleFunc("POST /vehicles", staff(a.CreateVehicle))
	a.mux.HandleFunc("PATCH /vehicles/{id}", staff(a.UpdateVehicle))
	a.mux.HandleFunc("DELETE /vehicles/{id}", owners(a.DeleteVehicle))

	a.mux.HandleFunc("GET /vehicle-log", staff(a.ListLogs))
	a.mux.HandleFunc("GET /vehicle-log/active", staff(a.ActiveLogs))
	a.mux.HandleFunc("GET /vehicle-log/vehicle/{plate}/logs", staff(a.LogsByPlate))
	a.mux.HandleFunc("GET /vehicle-log/vehicle/{plate}/last", staff(a.LastLogByPlate))
	a.mux.HandleFunc("GET /vehicle-log/filter", owners(a.FilterLogs))
	a.mux.HandleFunc("POST /vehicle-log", staff(a.VehicleEntry))
	a.mux.HandleFunc("PATCH /vehicle-log/{id}/checkout", staff(a.VehicleCheckout))

	for _, root := range []string{"body-parts", "muscles"} {
		a.mux.HandleFunc("GET /"+root, staff(a.listCatalog(root)))
		a.mux.HandleFunc("POST /"+root, adminOnly(a.createCatalog(root)))
		a.mux.HandleFunc("PATCH /"+root+"/{id}", adminOnly(a.updateCatalog(root)))
		a.mux.HandleFunc("DELETE /"+root+"/{id}", adminOnly(a.deleteCatalog(root)))
	}

	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.Handle("GET /metrics", obs.Handler())

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = accessLog(a.log, h)
	h = requestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "parkdesk-devapi",
		"version": a.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
