package services

import (
	"context"
	"fmt"
)

// User is the backend's user document as shown in the users screen.
type User struct {
	ID        string `json:"_id"`
	User      string `json:"user"`
	Email     string `json:"email"`
	Business  string `json:"business,omitempty"`
	Name      string `json:"name"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Enabled   bool   `json:"enabled"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type CreateUser struct {
	User     string `json:"user"`
	Password string `json:"password"`
}

type UpdateUser struct {
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Role     string `json:"role,omitempty"`
}

type updateUserRole struct {
	Role string `json:"role"`
}

type updateUserStatus struct {
	Enabled bool `json:"enabled"`
}

// UsersService talks to the /users endpoints.
type UsersService struct {
	api Doer
}

func NewUsersService(api Doer) *UsersService {
	return &UsersService{api: api}
}

func (s *UsersService) All(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.api.Get(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UsersService) ByBusiness(ctx context.Context, businessID string) ([]User, error) {
	var out []User
	if err := s.api.Get(ctx, fmt.Sprintf("/users/business/%s", businessID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UsersService) MyBusiness(ctx context.Context) ([]User, error) {
	var out []User
	if err := s.api.Get(ctx, "/users/my-business", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *UsersService) Create(ctx context.Context, req CreateUser) (*User, error) {
	var out User
	if err := s.api.Post(ctx, "/users", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) Update(ctx context.Context, id string, req UpdateUser) (*User, error) {
	var out User
	if err := s.api.Patch(ctx, fmt.Sprintf("/users/%s", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) SetRole(ctx context.Context, id, role string) (*User, error) {
	var out User
	if err := s.api.Patch(ctx, fmt.Sprintf("/users/%s/role", id), updateUserRole{Role: role}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) SetEnabled(ctx context.Context, id string, enabled bool) (*User, error) {
	var out User
	if err := s.api.Patch(ctx, fmt.Sprintf("/users/%s/status", id), updateUserStatus{Enabled: enabled}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *UsersService) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, fmt.Sprintf("/users/%s", id), nil, nil)
}
