package session

import (
	"testing"

	"parkdesk.app/internal/services"
)

func TestClearIsIdempotent(t *testing.T) {
	state := NewState()
	state.SetIdentity(Identity{ID: "u1", Role: RoleAdmin, BusinessRef: "b1"}, "t1", nil)
	state.SetBusiness(BusinessLoaded("b1", &services.Business{ID: "b1"}))
	state.SetError("boom")

	state.Clear()
	first := state.Snapshot()
	state.Clear()
	second := state.Snapshot()

	for _, snap := range []Snapshot{first, second} {
		if snap.Identity != nil || snap.Credential != "" || snap.Authenticated {
			t.Fatalf("state not reset: %+v", snap)
		}
		if snap.ErrorMessage != "" || snap.Loading {
			t.Fatalf("flags not reset: %+v", snap)
		}
		if snap.Business.Checked() {
			t.Fatal("business resolution survived Clear")
		}
	}
}

func TestAuthenticatedIffIdentity(t *testing.T) {
	state := NewState()

	check := func(op string) {
		t.Helper()
		snap := state.Snapshot()
		if snap.Authenticated != (snap.Identity != nil) {
			t.Fatalf("after %s: authenticated=%v identity=%v", op, snap.Authenticated, snap.Identity)
		}
	}

	check("init")
	state.SetLoading(true)
	check("SetLoading")
	state.SetIdentity(Identity{ID: "u1"}, "t1", nil)
	check("SetIdentity")
	state.SetError("boom")
	check("SetError")
	state.SetBusiness(BusinessNone(""))
	check("SetBusiness")
	state.Clear()
	check("Clear")
}

func TestSetIdentityPreservesBusinessUnlessSupplied(t *testing.T) {
	state := NewState()
	loaded := BusinessLoaded("b1", &services.Business{ID: "b1", BusinessName: "Central Parking"})

	state.SetIdentity(Identity{ID: "u1", BusinessRef: "b1"}, "t1", nil)
	state.SetBusiness(loaded)

	// Identity refresh without a business value keeps the resolved record.
	state.SetIdentity(Identity{ID: "u1", BusinessRef: "b1", Role: RoleAdmin}, "t1", nil)
	if rec, ok := state.Snapshot().Business.Record(); !ok || rec.ID != "b1" {
		t.Fatalf("business clobbered by identity refresh: %+v", state.Snapshot().Business)
	}

	// An explicit business value replaces it.
	none := BusinessNone("b1")
	state.SetIdentity(Identity{ID: "u1", BusinessRef: "b1"}, "t1", &none)
	snap := state.Snapshot()
	if _, ok := snap.Business.Record(); ok {
		t.Fatal("explicit business value was ignored")
	}
	if !snap.Business.ResolvedFor("b1") {
		t.Fatalf("explicit resolution lost: %+v", snap.Business)
	}
}

func TestSetIdentityClearsError(t *testing.T) {
	state := NewState()
	state.SetError("bad credentials")
	state.SetIdentity(Identity{ID: "u1"}, "t1", nil)
	if snap := state.Snapshot(); snap.ErrorMessage != "" {
		t.Fatalf("error survived SetIdentity: %q", snap.ErrorMessage)
	}
}

func TestBusinessResolutionVariants(t *testing.T) {
	unchecked := BusinessNotChecked()
	if unchecked.Checked() || unchecked.ResolvedFor("") {
		t.Fatal("unchecked resolution reports as resolved")
	}

	none := BusinessNone("b1")
	if !none.Checked() || !none.ResolvedFor("b1") {
		t.Fatal("none resolution should be settled for its ref")
	}
	if none.ResolvedFor("b2") {
		t.Fatal("resolution for b1 must not satisfy b2")
	}
	if _, ok := none.Record(); ok {
		t.Fatal("none resolution must not carry a record")
	}

	loaded := BusinessLoaded("b2", &services.Business{ID: "b2"})
	if !loaded.ResolvedFor("b2") || loaded.ResolvedFor("b1") {
		t.Fatal("loaded resolution bound to wrong ref")
	}
	if rec, ok := loaded.Record(); !ok || rec.ID != "b2" {
		t.Fatal("loaded resolution lost its record")
	}

	// The binding follows the requested ref even when the record disagrees.
	loose := BusinessLoaded("b3", &services.Business{BusinessName: "No ID Parking"})
	if !loose.ResolvedFor("b3") {
		t.Fatal("resolution must bind to the requested ref, not the record's ID")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	state := NewState()
	state.SetIdentity(Identity{ID: "u1", Role: RoleUser}, "t1", nil)

	snap := state.Snapshot()
	snap.Identity.Role = RoleAdmin

	if state.Snapshot().Identity.Role != RoleUser {
		t.Fatal("mutating a snapshot leaked into state")
	}
}

func TestParseRole(t *testing.T) {
	cases := map[string]Role{
		"admin":  RoleAdmin,
		"Admin":  RoleAdmin,
		" user ": RoleUser,
		"worker": RoleWorker,
		"root":   "",
		"":       "",
	}
	for raw, want := range cases {
		if got := ParseRole(raw); got != want {
			t.Fatalf("ParseRole(%q) = %q, want %q", raw, got, want)
		}
	}
}
