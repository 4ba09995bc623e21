// Package access computes the tri-state gate decision for protected views.
package access

import (
	"parkdesk.app/internal/credstore"
	"parkdesk.app/internal/session"
)

// Decision is the outcome of an access check. It is derived on every
// evaluation, never stored.
type Decision int

const (
	// Pending means an auth check or hydration is presumably in flight;
	// consumers must not redirect yet.
	Pending Decision = iota
	// Denied means the view must not be shown.
	Denied
	// Allowed means the identity's role is in the required set.
	Allowed
)

func (d Decision) String() string {
	switch d {
	case Pending:
		return "pending"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	default:
		return "unknown"
	}
}

// Evaluate applies the gate rules in precedence order; the first matching rule
// wins. hasStoredCredential reflects the credential store at evaluation time:
// a stored credential without an authenticated identity means a restore is
// still in flight, so the decision stays Pending instead of bouncing the user
// to sign-in.
func Evaluate(snap session.Snapshot, hasStoredCredential bool, allowed []session.Role) Decision {
	if snap.Loading || (hasStoredCredential && !snap.Authenticated) {
		return Pending
	}
	if !snap.Authenticated || snap.Identity == nil {
		return Denied
	}
	if ref := snap.Identity.BusinessRef; ref != "" && !snap.Business.ResolvedFor(ref) {
		return Pending
	}
	if snap.Identity.Role == "" {
		return Denied
	}
	for _, role := range allowed {
		if snap.Identity.Role == role {
			return Allowed
		}
	}
	return Denied
}

// Resolver binds the evaluation to live state and credential sources so
// callers can gate views with a single call. Resolve is side-effect free and
// safe to call on every render.
type Resolver struct {
	state *session.State
	creds credstore.Store
}

func NewResolver(state *session.State, creds credstore.Store) *Resolver {
	return &Resolver{state: state, creds: creds}
}

func (r *Resolver) Resolve(allowed ...session.Role) Decision {
	token, err := r.creds.Read()
	if err != nil {
		// Unreadable storage degrades to "no stored credential".
		token = ""
	}
	return Evaluate(r.state.Snapshot(), token != "", allowed)
}
