package session

import (
	"context"
	"sync"

	"parkdesk.app/internal/services"
)

// fakeAuth is a scriptable AuthAPI.
type fakeAuth struct {
	mu           sync.Mutex
	signInResp   services.SignInResponse
	signInErr    error
	me           services.CurrentUser
	meErr        error
	signOutErr   error
	signOutCalls int
}

func (f *fakeAuth) SignIn(ctx context.Context, user, password string) (services.SignInResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.signInErr != nil {
		return services.SignInResponse{}, f.signInErr
	}
	return f.signInResp, nil
}

func (f *fakeAuth) SignOut(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCalls++
	return f.signOutErr
}

func (f *fakeAuth) Me(ctx context.Context) (services.CurrentUser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.meErr != nil {
		return services.CurrentUser{}, f.meErr
	}
	return f.me, nil
}

// fakeBusiness counts hydration fetches and can hold them open on a gate.
type fakeBusiness struct {
	mu     sync.Mutex
	calls  int
	refs   []string
	gate   chan struct{}
	err    error
	record *services.Business
}

func (f *fakeBusiness) ByID(ctx context.Context, id string) (*services.Business, error) {
	f.mu.Lock()
	f.calls++
	f.refs = append(f.refs, id)
	gate := f.gate
	err := f.err
	record := f.record
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if record != nil {
		rec := *record
		return &rec, nil
	}
	return &services.Business{ID: id, BusinessName: "Business " + id}, nil
}

func (f *fakeBusiness) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBusiness) fetchedRefs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.refs...)
}
