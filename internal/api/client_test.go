package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"parkdesk.app/internal/credstore"
)

func TestClientInjectsFreshToken(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("missing X-Request-Id header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemStore()
	client := New(srv.URL, creds)

	if err := client.Get(context.Background(), "/business/all", nil, nil); err != nil {
		t.Fatalf("unauthenticated Get: %v", err)
	}
	_ = creds.Save("tok-1")
	if err := client.Get(context.Background(), "/business/all", nil, nil); err != nil {
		t.Fatalf("authenticated Get: %v", err)
	}
	_ = creds.Save("tok-2")
	if err := client.Get(context.Background(), "/business/all", nil, nil); err != nil {
		t.Fatalf("re-authenticated Get: %v", err)
	}

	want := []string{"", "Bearer tok-1", "Bearer tok-2"}
	if len(seen) != len(want) {
		t.Fatalf("request count = %d, want %d", len(seen), len(want))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("request %d Authorization = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestClientDecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("plate"); got != "ABC123" {
			t.Errorf("query plate = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"_id":"v1","plateNumber":"ABC123"}`))
	}))
	defer srv.Close()

	client := New(srv.URL, credstore.NewMemStore())
	var out struct {
		ID    string `json:"_id"`
		Plate string `json:"plateNumber"`
	}
	query := url.Values{"plate": {"ABC123"}}
	if err := client.Get(context.Background(), "/vehicles/search", query, &out); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if out.ID != "v1" || out.Plate != "ABC123" {
		t.Fatalf("decoded %+v", out)
	}
}

func TestClientUnauthorizedTriggersGlobalLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid token","error":"Unauthorized","statusCode":401}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemStore()
	_ = creds.Save("stale")
	client := New(srv.URL, creds)

	var calls atomic.Int32
	client.OnUnauthorized(func() { calls.Add(1) })

	err := client.Get(context.Background(), "/auth/me", nil, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error type %T, want *RequestError", err)
	}
	if reqErr.Status != http.StatusUnauthorized {
		t.Fatalf("status = %d", reqErr.Status)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("callback fired %d times, want 1", got)
	}
	if tok, _ := creds.Read(); tok != "" {
		t.Fatalf("credential not cleared: %q", tok)
	}
}

func TestClientArbitrary401DoesNotLogout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"password mismatch","error":"BadCredentials","statusCode":401}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemStore()
	_ = creds.Save("tok")
	client := New(srv.URL, creds)

	fired := false
	client.OnUnauthorized(func() { fired = true })

	err := client.Post(context.Background(), "/auth/login", map[string]string{"user": "x"}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if fired {
		t.Fatal("callback fired for non-session 401")
	}
	if tok, _ := creds.Read(); tok != "tok" {
		t.Fatalf("credential cleared for non-session 401, got %q", tok)
	}
}

func TestClientLastCallbackRegistrationWins(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"No token provided","error":"Unauthorized","statusCode":401}`))
	}))
	defer srv.Close()

	client := New(srv.URL, credstore.NewMemStore())
	var first, second int
	client.OnUnauthorized(func() { first++ })
	client.OnUnauthorized(func() { second++ })

	_ = client.Get(context.Background(), "/users", nil, nil)
	if first != 0 || second != 1 {
		t.Fatalf("callbacks fired first=%d second=%d, want 0/1", first, second)
	}
}

func TestRequestErrorMessage(t *testing.T) {
	e := newRequestError(422, []byte(`{"message":"plate already registered","error":"Conflict","statusCode":422}`))
	if e.Message() != "plate already registered" {
		t.Fatalf("Message = %q", e.Message())
	}
	if e.Code() != "Conflict" {
		t.Fatalf("Code = %q", e.Code())
	}

	plain := newRequestError(500, []byte("boom"))
	if plain.Message() != "" {
		t.Fatalf("Message for junk body = %q, want empty", plain.Message())
	}
	if plain.Error() == "" {
		t.Fatal("Error() should describe the status")
	}
}
