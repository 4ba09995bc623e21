// Package session holds the authenticated identity and coordinates the
// asynchronous effects around it: credential persistence, identity restore,
// and business hydration.
package session

import (
	"strings"
	"sync"

	"parkdesk.app/internal/services"
)

// Role is the closed set of user roles known to the backend.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleWorker Role = "worker"
)

// ParseRole normalizes a backend role string. Unknown values map to the empty
// role, which every access check denies.
func ParseRole(raw string) Role {
	switch Role(strings.TrimSpace(strings.ToLower(raw))) {
	case RoleAdmin:
		return RoleAdmin
	case RoleUser:
		return RoleUser
	case RoleWorker:
		return RoleWorker
	default:
		return ""
	}
}

// Identity is the authenticated user's resolved profile.
type Identity struct {
	ID          string
	Username    string
	Enabled     bool
	BusinessRef string
	Role        Role
}

type businessStatus int

const (
	businessNotChecked businessStatus = iota
	businessNone
	businessLoaded
)

// BusinessResolution is the tri-state business field: not checked yet,
// resolved to "no business", or resolved to a record. The distinction between
// "not checked" and "no business" is load-bearing for access decisions, so it
// is a tagged variant rather than a nilable pointer.
type BusinessResolution struct {
	status businessStatus
	ref    string
	record *services.Business
}

// BusinessNotChecked is the initial, unresolved value.
func BusinessNotChecked() BusinessResolution {
	return BusinessResolution{status: businessNotChecked}
}

// BusinessNone marks hydration as settled with no business for the given ref.
func BusinessNone(ref string) BusinessResolution {
	return BusinessResolution{status: businessNone, ref: ref}
}

// BusinessLoaded wraps a fetched record, bound to the reference it was
// requested for. The binding uses the requested ref, not the record's own ID:
// the record is backend data and may carry a missing or mismatched ID, and a
// resolution that never matches the identity's ref would keep hydration
// unsettled forever.
func BusinessLoaded(ref string, record *services.Business) BusinessResolution {
	return BusinessResolution{status: businessLoaded, ref: ref, record: record}
}

// Checked reports whether hydration has settled at all.
func (r BusinessResolution) Checked() bool {
	return r.status != businessNotChecked
}

// ResolvedFor reports whether hydration has settled for this specific business
// reference. A resolution for a different ref counts as unresolved, so
// switching businesses re-triggers hydration instead of short-circuiting.
func (r BusinessResolution) ResolvedFor(ref string) bool {
	return r.Checked() && r.ref == ref
}

// Record returns the resolved business record, if one exists.
func (r BusinessResolution) Record() (*services.Business, bool) {
	if r.status != businessLoaded || r.record == nil {
		return nil, false
	}
	return r.record, true
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	Identity      *Identity
	Credential    string
	Authenticated bool
	Loading       bool
	ErrorMessage  string
	Business      BusinessResolution
}

// State is the single source of truth for session data. All mutation goes
// through its named operations; readers take snapshots.
type State struct {
	mu       sync.Mutex
	snap     Snapshot
	changed  chan struct{}
	listener func()
}

// NewState returns an empty, unauthenticated state.
func NewState() *State {
	return &State{
		snap:    Snapshot{Business: BusinessNotChecked()},
		changed: make(chan struct{}),
	}
}

// onChange registers the single mutation listener (the bootstrapper). It runs
// synchronously after every mutation, outside the state lock.
func (s *State) onChange(fn func()) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Snapshot returns a copy of the current state.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySnap()
}

func (s *State) copySnap() Snapshot {
	snap := s.snap
	if s.snap.Identity != nil {
		identity := *s.snap.Identity
		snap.Identity = &identity
	}
	return snap
}

// snapshotAndWaitCh returns the current snapshot together with the channel
// that closes on the next change, taken under one lock so no change between
// the two can be missed.
func (s *State) snapshotAndWaitCh() (Snapshot, <-chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copySnap(), s.changed
}

// mutate applies fn under the lock, then broadcasts and runs the listener.
func (s *State) mutate(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	close(s.changed)
	s.changed = make(chan struct{})
	listener := s.listener
	s.mu.Unlock()
	if listener != nil {
		listener()
	}
}

// SetIdentity installs the authenticated identity and credential, marking the
// session authenticated and clearing any error. The business resolution is
// touched only when explicitly supplied, so restoring an identity does not
// clobber an already-settled resolution.
func (s *State) SetIdentity(identity Identity, credential string, business *BusinessResolution) {
	s.mutate(func(snap *Snapshot) {
		id := identity
		snap.Identity = &id
		snap.Credential = credential
		snap.Authenticated = true
		snap.ErrorMessage = ""
		if business != nil {
			snap.Business = *business
		}
	})
}

// SetBusiness records the hydration outcome.
func (s *State) SetBusiness(res BusinessResolution) {
	s.mutate(func(snap *Snapshot) {
		snap.Business = res
	})
}

// setBusinessIf applies the resolution only while guard holds, atomically with
// the read. Hydration results that arrive after sign-out or an identity switch
// are discarded here.
func (s *State) setBusinessIf(guard func(Snapshot) bool, res BusinessResolution) bool {
	applied := false
	s.mutate(func(snap *Snapshot) {
		probe := *snap
		if snap.Identity != nil {
			identity := *snap.Identity
			probe.Identity = &identity
		}
		if !guard(probe) {
			return
		}
		snap.Business = res
		applied = true
	})
	return applied
}

// SetLoading flips the auth-operation-in-progress flag.
func (s *State) SetLoading(loading bool) {
	s.mutate(func(snap *Snapshot) {
		snap.Loading = loading
	})
}

// SetError records an operation failure and terminates the loading flag.
func (s *State) SetError(message string) {
	s.mutate(func(snap *Snapshot) {
		snap.ErrorMessage = message
		snap.Loading = false
	})
}

// ClearError drops a previously recorded error.
func (s *State) ClearError() {
	s.mutate(func(snap *Snapshot) {
		snap.ErrorMessage = ""
	})
}

// Clear resets every field to its initial value. It serves both explicit
// sign-out and credential invalidation and is safe to call repeatedly.
func (s *State) Clear() {
	s.mutate(func(snap *Snapshot) {
		*snap = Snapshot{Business: BusinessNotChecked()}
	})
}
