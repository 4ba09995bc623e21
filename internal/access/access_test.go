package access

import (
	"testing"

	"parkdesk.app/internal/credstore"
	"parkdesk.app/internal/services"
	"parkdesk.app/internal/session"
)

func identity(role session.Role, businessRef string) *session.Identity {
	return &session.Identity{
		ID:          "u1",
		Username:    "alice",
		Enabled:     true,
		BusinessRef: businessRef,
		Role:        role,
	}
}

func TestEvaluatePrecedence(t *testing.T) {
	business := &services.Business{ID: "b1", BusinessName: "Central Parking"}

	tests := []struct {
		name      string
		snap      session.Snapshot
		hasToken  bool
		allowed   []session.Role
		want      Decision
	}{
		{
			name:    "loading beats denied",
			snap:    session.Snapshot{Loading: true},
			allowed: []session.Role{session.RoleAdmin},
			want:    Pending,
		},
		{
			name:     "stored token without identity is pending",
			snap:     session.Snapshot{Business: session.BusinessNotChecked()},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin},
			want:     Pending,
		},
		{
			name:    "unauthenticated without token is denied",
			snap:    session.Snapshot{Business: session.BusinessNotChecked()},
			allowed: []session.Role{session.RoleAdmin},
			want:    Denied,
		},
		{
			name: "unresolved business with ref is pending",
			snap: session.Snapshot{
				Identity:      identity(session.RoleAdmin, "b1"),
				Authenticated: true,
				Business:      session.BusinessNotChecked(),
			},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin},
			want:     Pending,
		},
		{
			name: "business resolved for a different ref is pending",
			snap: session.Snapshot{
				Identity:      identity(session.RoleAdmin, "b2"),
				Authenticated: true,
				Business:      session.BusinessLoaded("b1", business),
			},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin},
			want:     Pending,
		},
		{
			name: "missing role is denied even with resolved business",
			snap: session.Snapshot{
				Identity:      identity("", ""),
				Authenticated: true,
				Business:      session.BusinessNone(""),
			},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin, session.RoleUser, session.RoleWorker},
			want:     Denied,
		},
		{
			name: "worker denied where admin required",
			snap: session.Snapshot{
				Identity:      identity(session.RoleWorker, ""),
				Authenticated: true,
				Business:      session.BusinessNone(""),
			},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin},
			want:     Denied,
		},
		{
			name: "matching role allowed",
			snap: session.Snapshot{
				Identity:      identity(session.RoleWorker, "b1"),
				Authenticated: true,
				Business:      session.BusinessLoaded("b1", business),
			},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin, session.RoleWorker},
			want:     Allowed,
		},
		{
			name: "no-business identity allowed once settled",
			snap: session.Snapshot{
				Identity:      identity(session.RoleAdmin, ""),
				Authenticated: true,
				Business:      session.BusinessNone(""),
			},
			hasToken: true,
			allowed:  []session.Role{session.RoleAdmin},
			want:     Allowed,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Evaluate(test.snap, test.hasToken, test.allowed); got != test.want {
				t.Fatalf("Evaluate = %v, want %v", got, test.want)
			}
		})
	}
}

func TestResolverReadsFreshCredential(t *testing.T) {
	state := session.NewState()
	creds := credstore.NewMemStore()
	resolver := NewResolver(state, creds)

	if got := resolver.Resolve(session.RoleAdmin); got != Denied {
		t.Fatalf("empty store Resolve = %v, want Denied", got)
	}

	// A credential appearing in the store flips the decision to Pending while
	// the identity restore is outstanding.
	_ = creds.Save("t1")
	if got := resolver.Resolve(session.RoleAdmin); got != Pending {
		t.Fatalf("stored-token Resolve = %v, want Pending", got)
	}
}

func TestDecisionString(t *testing.T) {
	if Pending.String() != "pending" || Denied.String() != "denied" || Allowed.String() != "allowed" {
		t.Fatal("unexpected Decision string values")
	}
}
