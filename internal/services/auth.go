package services

import "context"

// SignInRequest is the credentials payload for /auth/login.
type SignInRequest struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

// SignInResponse is the backend's successful sign-in document.
type SignInResponse struct {
	Token    string `json:"token"`
	ID       string `json:"id"`
	Business string `json:"business"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Role     string `json:"role"`
}

// CurrentUser is the /auth/me document.
type CurrentUser struct {
	ID       string `json:"_id"`
	User     string `json:"user"`
	Email    string `json:"email"`
	Business string `json:"business,omitempty"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Role     string `json:"role"`
	Enabled  bool   `json:"enabled"`
}

// AuthService talks to the /auth endpoints.
type AuthService struct {
	api Doer
}

func NewAuthService(api Doer) *AuthService {
	return &AuthService{api: api}
}

func (s *AuthService) SignIn(ctx context.Context, user, password string) (SignInResponse, error) {
	var out SignInResponse
	err := s.api.Post(ctx, "/auth/login", SignInRequest{User: user, Password: password}, &out)
	return out, err
}

func (s *AuthService) SignOut(ctx context.Context) error {
	return s.api.Post(ctx, "/auth/signout", struct{}{}, nil)
}

func (s *AuthService) Me(ctx context.Context) (CurrentUser, error) {
	var out CurrentUser
	err := s.api.Get(ctx, "/auth/me", nil, &out)
	return out, err
}
