package session

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"parkdesk.app/internal/api"
	"parkdesk.app/internal/credstore"
	"parkdesk.app/internal/services"
)

// AuthAPI is the slice of the auth endpoints the manager needs.
type AuthAPI interface {
	SignIn(ctx context.Context, user, password string) (services.SignInResponse, error)
	SignOut(ctx context.Context) error
	Me(ctx context.Context) (services.CurrentUser, error)
}

// BusinessFetcher hydrates the business record attached to an identity.
type BusinessFetcher interface {
	ByID(ctx context.Context, id string) (*services.Business, error)
}

// Manager owns the session lifecycle: sign-in/out, restore from a stored
// credential, and business hydration. It re-evaluates the hydration state
// machine after every state change and runs at most one fetch at a time.
type Manager struct {
	state    *State
	creds    credstore.Store
	auth     AuthAPI
	business BusinessFetcher
	log      zerolog.Logger

	hydrating atomic.Bool

	cbMu          sync.Mutex
	onInvalidated func()
}

// NewManager wires a manager to the given state and collaborators.
func NewManager(state *State, creds credstore.Store, auth AuthAPI, business BusinessFetcher, log zerolog.Logger) *Manager {
	m := &Manager{
		state:    state,
		creds:    creds,
		auth:     auth,
		business: business,
		log:      log,
	}
	state.onChange(m.evaluate)
	return m
}

// Snapshot exposes the current session state.
func (m *Manager) Snapshot() Snapshot {
	return m.state.Snapshot()
}

// State returns the underlying state container for consumers that need to
// wait on changes.
func (m *Manager) State() *State {
	return m.state
}

// OnSessionInvalidated registers the callback fired after a 401-driven global
// logout. Exactly one callback is active; the last registration wins.
func (m *Manager) OnSessionInvalidated(fn func()) {
	m.cbMu.Lock()
	m.onInvalidated = fn
	m.cbMu.Unlock()
}

// HandleUnauthorized reacts to the API client's session-invalidated signal:
// the credential store is already cleared by the client, so only local state
// remains to reset. Clearing twice is harmless.
func (m *Manager) HandleUnauthorized() {
	m.state.Clear()
	m.cbMu.Lock()
	fn := m.onInvalidated
	m.cbMu.Unlock()
	if fn != nil {
		fn()
	}
}

// SignIn authenticates against the backend. On success the credential is
// persisted and the identity installed, which triggers business hydration.
// Failures are reported through the state's error field; SignIn never returns
// an error to the caller.
func (m *Manager) SignIn(ctx context.Context, user, password string) bool {
	m.state.SetLoading(true)
	m.state.ClearError()

	resp, err := m.auth.SignIn(ctx, user, password)
	if err != nil {
		m.state.SetError(signInErrorMessage(err))
		m.state.SetLoading(false)
		return false
	}

	if err := m.creds.Save(resp.Token); err != nil {
		// Durable storage is best-effort: the session still works until the
		// process exits.
		m.log.Warn().Err(err).Msg("persist credential failed")
	}

	m.state.SetIdentity(Identity{
		ID:          resp.ID,
		Username:    resp.Email,
		Enabled:     true,
		BusinessRef: resp.Business,
		Role:        ParseRole(resp.Role),
	}, resp.Token, nil)
	m.state.SetLoading(false)
	return true
}

// SignOut notifies the backend best-effort, then unconditionally clears the
// local credential and session state.
func (m *Manager) SignOut(ctx context.Context) {
	m.state.SetLoading(true)
	if err := m.auth.SignOut(ctx); err != nil {
		m.log.Warn().Err(err).Msg("remote sign-out failed")
	}
	if err := m.creds.Clear(); err != nil {
		m.log.Warn().Err(err).Msg("clear credential failed")
	}
	m.state.Clear()
}

// CheckAuthStatus restores the session from a stored credential by validating
// it against the backend. An invalid or expired credential is discarded.
func (m *Manager) CheckAuthStatus(ctx context.Context) {
	token, err := m.creds.Read()
	if err != nil {
		m.log.Warn().Err(err).Msg("credential read failed")
		token = ""
	}
	if token == "" {
		m.state.Clear()
		return
	}

	me, err := m.auth.Me(ctx)
	if err != nil {
		// The API client may already have cleared the store on a structured
		// 401; clearing again is a no-op.
		if clearErr := m.creds.Clear(); clearErr != nil {
			m.log.Warn().Err(clearErr).Msg("clear credential failed")
		}
		m.state.Clear()
		return
	}

	username := me.User
	if username == "" {
		username = me.Email
	}
	m.state.SetIdentity(Identity{
		ID:          me.ID,
		Username:    username,
		Enabled:     me.Enabled,
		BusinessRef: me.Business,
		Role:        ParseRole(me.Role),
	}, token, nil)
}

// WaitSettled blocks until no auth or hydration work is pending, so access
// decisions computed afterwards are not Pending for in-flight reasons.
func (m *Manager) WaitSettled(ctx context.Context) error {
	for {
		snap, changed := m.state.snapshotAndWaitCh()
		if sessionSettled(snap) {
			return nil
		}
		select {
		case <-changed:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func sessionSettled(snap Snapshot) bool {
	if snap.Loading {
		return false
	}
	if !snap.Authenticated || snap.Identity == nil {
		return true
	}
	return snap.Business.ResolvedFor(snap.Identity.BusinessRef)
}

// evaluate runs the hydration state machine against the current snapshot. It
// is invoked after every state change.
func (m *Manager) evaluate() {
	snap := m.state.Snapshot()
	if !snap.Authenticated || snap.Identity == nil {
		// Unauthenticated is terminal until a sign-in occurs.
		return
	}

	ref := snap.Identity.BusinessRef
	if ref == "" {
		// No business reference: "no business" is a valid final state.
		if !snap.Business.Checked() {
			m.state.SetBusiness(BusinessNone(""))
		}
		return
	}

	if snap.Business.ResolvedFor(ref) {
		return
	}

	// One fetch at a time; concurrent triggers are dropped, not queued.
	if !m.hydrating.CompareAndSwap(false, true) {
		return
	}
	go m.hydrate(ref)
}

func (m *Manager) hydrate(ref string) {
	record, err := m.business.ByID(context.Background(), ref)

	var res BusinessResolution
	if err != nil {
		// A failed hydration settles to "no business" so access decisions are
		// never stuck pending on a transient network error.
		m.log.Warn().Err(err).Str("business", ref).Msg("business hydration failed")
		res = BusinessNone(ref)
	} else {
		res = BusinessLoaded(ref, record)
	}

	applied := m.state.setBusinessIf(func(snap Snapshot) bool {
		return snap.Authenticated && snap.Identity != nil && snap.Identity.BusinessRef == ref
	}, res)
	if !applied {
		m.log.Debug().Str("business", ref).Msg("stale hydration result discarded")
	}

	m.hydrating.Store(false)
	// Triggers that arrived while the fetch was in flight were dropped;
	// re-evaluate so a changed business ref still gets hydrated.
	m.evaluate()
}

func signInErrorMessage(err error) string {
	var reqErr *api.RequestError
	if errors.As(err, &reqErr) {
		if msg := reqErr.Message(); msg != "" {
			return msg
		}
	}
	return "authentication failed"
}
