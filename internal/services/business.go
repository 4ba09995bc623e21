// Package services provides typed, constructor-injected clients for the
// backend's resource endpoints. Each service wraps the shared api.Client; none
// of them hold session state.
package services

import (
	"context"
	"fmt"
)

// Business is the parking tariff card the backend keeps per operation.
type Business struct {
	ID                        string   `json:"_id"`
	Name                      string   `json:"name,omitempty"`
	UserID                    string   `json:"userId"`
	Users                     []string `json:"users"`
	BusinessName              string   `json:"businessName"`
	BusinessBrand             string   `json:"businessBrand"`
	CarHourCost               float64  `json:"carHourCost"`
	MotorcycleHourCost        float64  `json:"motorcycleHourCost"`
	CarMonthlyCost            float64  `json:"carMonthlyCost"`
	MotorcycleMonthlyCost     float64  `json:"motorcycleMonthlyCost"`
	CarDayCost                float64  `json:"carDayCost"`
	MotorcycleDayCost         float64  `json:"motorcycleDayCost"`
	CarNightCost              float64  `json:"carNightCost"`
	MotorcycleNightCost       float64  `json:"motorcycleNightCost"`
	StudentMotorcycleHourCost float64  `json:"studentMotorcycleHourCost"`
	BusinessNIT               string   `json:"businessNit"`
	BusinessResolution        string   `json:"businessResolution"`
	Address                   string   `json:"address"`
	Schedule                  string   `json:"schedule"`
	CreatedAt                 string   `json:"createdAt"`
	UpdatedAt                 string   `json:"updatedAt"`
}

// BusinessDraft carries the writable business fields for create and update.
type BusinessDraft struct {
	Name                      string  `json:"name,omitempty"`
	BusinessName              string  `json:"businessName"`
	BusinessBrand             string  `json:"businessBrand"`
	CarHourCost               float64 `json:"carHourCost"`
	MotorcycleHourCost        float64 `json:"motorcycleHourCost"`
	CarMonthlyCost            float64 `json:"carMonthlyCost"`
	MotorcycleMonthlyCost     float64 `json:"motorcycleMonthlyCost"`
	CarDayCost                float64 `json:"carDayCost"`
	MotorcycleDayCost         float64 `json:"motorcycleDayCost"`
	CarNightCost              float64 `json:"carNightCost"`
	MotorcycleNightCost       float64 `json:"motorcycleNightCost"`
	StudentMotorcycleHourCost float64 `json:"studentMotorcycleHourCost"`
	BusinessNIT               string  `json:"businessNit"`
	BusinessResolution        string  `json:"businessResolution"`
	Address                   string  `json:"address"`
	Schedule                  string  `json:"schedule"`
}

// BusinessService talks to the /business endpoints.
type BusinessService struct {
	api Doer
}

func NewBusinessService(api Doer) *BusinessService {
	return &BusinessService{api: api}
}

func (s *BusinessService) All(ctx context.Context) ([]Business, error) {
	var out []Business
	if err := s.api.Get(ctx, "/business/all", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BusinessService) Mine(ctx context.Context) ([]Business, error) {
	var out []Business
	if err := s.api.Get(ctx, "/business/my-businesses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *BusinessService) ByID(ctx context.Context, id string) (*Business, error) {
	var out Business
	if err := s.api.Get(ctx, fmt.Sprintf("/business/%s", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BusinessService) Create(ctx context.Context, draft BusinessDraft) (*Business, error) {
	var out Business
	if err := s.api.Post(ctx, "/business", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BusinessService) Update(ctx context.Context, id string, draft BusinessDraft) (*Business, error) {
	var out Business
	if err := s.api.Patch(ctx, fmt.Sprintf("/business/%s", id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BusinessService) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, fmt.Sprintf("/business/%s", id), nil, nil)
}

// SetUser attaches the calling user to the business.
func (s *BusinessService) SetUser(ctx context.Context, id string) (*Business, error) {
	var out Business
	if err := s.api.Patch(ctx, fmt.Sprintf("/business/%s/set-user", id), struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
