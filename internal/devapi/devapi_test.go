package devapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"parkdesk.app/internal/auth"
	"parkdesk.app/internal/services"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	signer, err := auth.NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	store := NewStore()
	if _, err := Seed(store); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	api := New(store, signer, zerolog.Nop(), Options{LoginRate: 100, LoginBurst: 100})
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, token string, body any) (*http.Response, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var out bytes.Buffer
	_, _ = out.ReadFrom(resp.Body)
	return resp, out.Bytes()
}

func login(t *testing.T, srv *httptest.Server, user, password string) services.SignInResponse {
	t.Helper()
	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		services.SignInRequest{User: user, Password: password})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %q: status %d, body %s", user, resp.StatusCode, body)
	}
	var out services.SignInResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	return out
}

func TestMissingTokenEnvelope(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/vehicles", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Error != "Unauthorized" || env.Message != "No token provided" || env.StatusCode != 401 {
		t.Fatalf("envelope = %+v", env)
	}
}

func TestInvalidTokenRejected(t *testing.T) {
	srv := newTestServer(t)

	for name, header := range map[string]string{
		"garbage token": "Bearer not.a.jwt",
		"wrong scheme":  "Basic abc",
	} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/vehicles", nil)
		req.Header.Set("Authorization", header)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: status = %d, want 401", name, resp.StatusCode)
		}
	}
}

func TestPublicPathsSkipAuth(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/healthz", "/metrics"} {
		resp, _ := doJSON(t, http.MethodGet, srv.URL+path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("GET %s: status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestLoginAndMe(t *testing.T) {
	srv := newTestServer(t)
	signIn := login(t, srv, "admin", "admin123")

	if signIn.Token == "" || signIn.ID == "" {
		t.Fatalf("incomplete sign-in response: %+v", signIn)
	}
	if signIn.Role != "admin" || signIn.Business == "" {
		t.Fatalf("unexpected sign-in fields: %+v", signIn)
	}

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/auth/me", signIn.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me: status %d, body %s", resp.StatusCode, body)
	}
	var me services.CurrentUser
	if err := json.Unmarshal(body, &me); err != nil {
		t.Fatalf("decode me: %v", err)
	}
	if me.ID != signIn.ID || me.User != "admin" || !me.Enabled {
		t.Fatalf("me = %+v", me)
	}
}

func TestLoginWrongPasswordIsNotSessionInvalidation(t *testing.T) {
	srv := newTestServer(t)

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		services.SignInRequest{User: "admin", Password: "wrong"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.Error == "Unauthorized" || env.Message == "No token provided" {
		t.Fatalf("failed sign-in must not look like an expired session: %+v", env)
	}
}

func TestRoleGating(t *testing.T) {
	srv := newTestServer(t)
	worker := login(t, srv, "worker", "worker123")

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/business/all", worker.Token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("worker on /business/all: status = %d, want 403", resp.StatusCode)
	}

	// Workers still run the parking desk.
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/vehicles", worker.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("worker on /vehicles: status = %d, want 200", resp.StatusCode)
	}
}

func TestBusinessLookup(t *testing.T) {
	srv := newTestServer(t)
	admin := login(t, srv, "admin", "admin123")

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/business/"+admin.Business, admin.Token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d, body %s", resp.StatusCode, body)
	}
	var b services.Business
	if err := json.Unmarshal(body, &b); err != nil {
		t.Fatalf("decode business: %v", err)
	}
	if b.ID != admin.Business || b.BusinessName == "" {
		t.Fatalf("business = %+v", b)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/business/nope", admin.Token, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing business: status = %d, want 404", resp.StatusCode)
	}
}

func TestVehicleEntryAndCheckout(t *testing.T) {
	srv := newTestServer(t)
	worker := login(t, srv, "worker", "worker123")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/vehicle-log", worker.Token,
		services.EntryRequest{Plate: "NEW001", Type: services.VehicleCar})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("entry: status %d, body %s", resp.StatusCode, body)
	}
	var entry services.VehicleLog
	if err := json.Unmarshal(body, &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	if entry.ExitTime != nil || entry.Plate != "NEW001" {
		t.Fatalf("entry = %+v", entry)
	}

	// A second entry for the same plate must be refused while it is parked.
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/vehicle-log", worker.Token,
		services.EntryRequest{Plate: "NEW001", Type: services.VehicleCar})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double entry: status = %d, want 409", resp.StatusCode)
	}

	resp, body = doJSON(t, http.MethodPatch, srv.URL+"/vehicle-log/"+entry.ID+"/checkout", worker.Token,
		services.CheckoutRequest{Cost: 3500})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("checkout: status %d, body %s", resp.StatusCode, body)
	}
	var closed services.VehicleLog
	if err := json.Unmarshal(body, &closed); err != nil {
		t.Fatalf("decode checkout: %v", err)
	}
	if closed.ExitTime == nil || closed.Cost != 3500 {
		t.Fatalf("closed log = %+v", closed)
	}

	// Closing twice is a conflict.
	resp, _ = doJSON(t, http.MethodPatch, srv.URL+"/vehicle-log/"+entry.ID+"/checkout", worker.Token,
		services.CheckoutRequest{Cost: 3500})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("double checkout: status = %d, want 409", resp.StatusCode)
	}
}

func TestLoginRateLimit(t *testing.T) {
	signer, err := auth.NewSigner("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	store := NewStore()
	if _, err := Seed(store); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	api := New(store, signer, zerolog.Nop(), Options{LoginRate: 0.001, LoginBurst: 1})
	srv := httptest.NewServer(api.Handler())
	defer srv.Close()

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		services.SignInRequest{User: "admin", Password: "admin123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first login: status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/auth/login", "",
		services.SignInRequest{User: "admin", Password: "admin123"})
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second login: status = %d, want 429", resp.StatusCode)
	}
}
