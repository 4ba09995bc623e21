package services

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"
)

// fakeDoer records calls and replays canned JSON responses per path.
type fakeDoer struct {
	calls     []call
	responses map[string]string
	err       error
}

type call struct {
	method string
	path   string
	query  url.Values
	body   any
}

func newFakeDoer() *fakeDoer {
	return &fakeDoer{responses: make(map[string]string)}
}

func (f *fakeDoer) record(method, path string, query url.Values, body, out any) error {
	f.calls = append(f.calls, call{method: method, path: path, query: query, body: body})
	if f.err != nil {
		return f.err
	}
	if raw, ok := f.responses[path]; ok && out != nil {
		return json.Unmarshal([]byte(raw), out)
	}
	return nil
}

func (f *fakeDoer) Get(ctx context.Context, path string, query url.Values, out any) error {
	return f.record("GET", path, query, nil, out)
}
func (f *fakeDoer) Post(ctx context.Context, path string, body, out any) error {
	return f.record("POST", path, nil, body, out)
}
func (f *fakeDoer) Patch(ctx context.Context, path string, body, out any) error {
	return f.record("PATCH", path, nil, body, out)
}
func (f *fakeDoer) Put(ctx context.Context, path string, body, out any) error {
	return f.record("PUT", path, nil, body, out)
}
func (f *fakeDoer) Delete(ctx context.Context, path string, body, out any) error {
	return f.record("DELETE", path, nil, body, out)
}

func (f *fakeDoer) lastCall(t *testing.T) call {
	t.Helper()
	if len(f.calls) == 0 {
		t.Fatal("no calls recorded")
	}
	return f.calls[len(f.calls)-1]
}

func TestBusinessServicePaths(t *testing.T) {
	doer := newFakeDoer()
	doer.responses["/business/b1"] = `{"_id":"b1","businessName":"Central Parking","carHourCost":3500}`
	svc := NewBusinessService(doer)

	biz, err := svc.ByID(context.Background(), "b1")
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if biz.ID != "b1" || biz.BusinessName != "Central Parking" || biz.CarHourCost != 3500 {
		t.Fatalf("decoded %+v", biz)
	}
	if got := doer.lastCall(t); got.method != "GET" || got.path != "/business/b1" {
		t.Fatalf("call = %+v", got)
	}

	if _, err := svc.SetUser(context.Background(), "b1"); err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if got := doer.lastCall(t); got.method != "PATCH" || got.path != "/business/b1/set-user" {
		t.Fatalf("call = %+v", got)
	}
}

func TestAuthServiceSignIn(t *testing.T) {
	doer := newFakeDoer()
	doer.responses["/auth/login"] = `{"token":"t1","id":"u1","business":"b1","role":"admin"}`
	svc := NewAuthService(doer)

	resp, err := svc.SignIn(context.Background(), "alice", "pw")
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if resp.Token != "t1" || resp.ID != "u1" || resp.Business != "b1" || resp.Role != "admin" {
		t.Fatalf("decoded %+v", resp)
	}
	got := doer.lastCall(t)
	if got.method != "POST" || got.path != "/auth/login" {
		t.Fatalf("call = %+v", got)
	}
	req, ok := got.body.(SignInRequest)
	if !ok || req.User != "alice" || req.Password != "pw" {
		t.Fatalf("body = %+v", got.body)
	}
}

func TestVehicleLogsFilterQuery(t *testing.T) {
	doer := newFakeDoer()
	svc := NewVehicleLogsService(doer)

	if _, err := svc.Filter(context.Background(), "b1", "2026-01-01", "2026-01-31"); err != nil {
		t.Fatalf("Filter: %v", err)
	}
	got := doer.lastCall(t)
	if got.path != "/vehicle-log/filter" {
		t.Fatalf("path = %s", got.path)
	}
	if got.query.Get("businessId") != "b1" || got.query.Get("dateStart") != "2026-01-01" {
		t.Fatalf("query = %v", got.query)
	}
}

func TestCatalogServiceRoots(t *testing.T) {
	doer := newFakeDoer()
	active := true

	if _, err := NewBodyPartsService(doer).List(context.Background(), CatalogFilters{Active: &active}); err != nil {
		t.Fatalf("body parts List: %v", err)
	}
	if got := doer.lastCall(t); got.path != "/body-parts" || got.query.Get("active") != "true" {
		t.Fatalf("call = %+v", got)
	}

	if _, err := NewMusclesService(doer).Create(context.Background(), CatalogDraft{Name: "Biceps"}); err != nil {
		t.Fatalf("muscles Create: %v", err)
	}
	if got := doer.lastCall(t); got.method != "POST" || got.path != "/muscles" {
		t.Fatalf("call = %+v", got)
	}
}
