package services

import (
	"context"
	"fmt"
	"net/url"
)

// VehicleType is the closed set of parked vehicle kinds.
type VehicleType string

const (
	VehicleCar        VehicleType = "car"
	VehicleMotorcycle VehicleType = "motorcycle"
)

// Vehicle is a registered vehicle as listed in the vehicles screen.
type Vehicle struct {
	ID         string      `json:"_id"`
	Plate      string      `json:"plateNumber"`
	Type       VehicleType `json:"vehicleType"`
	InParking  bool        `json:"inParking"`
	LastLog    string      `json:"lastLog"`
	BusinessID string      `json:"businessId"`
	UserName   string      `json:"userName"`
	Phone      string      `json:"phone"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
}

type VehicleDraft struct {
	Plate string      `json:"plateNumber"`
	Type  VehicleType `json:"vehicleType"`
}

// VehiclesService talks to the /vehicles endpoints.
type VehiclesService struct {
	api Doer
}

func NewVehiclesService(api Doer) *VehiclesService {
	return &VehiclesService{api: api}
}

func (s *VehiclesService) All(ctx context.Context) ([]Vehicle, error) {
	var out []Vehicle
	if err := s.api.Get(ctx, "/vehicles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VehiclesService) ByPlate(ctx context.Context, plate string) (*Vehicle, error) {
	var out Vehicle
	query := url.Values{"plateNumber": {plate}}
	if err := s.api.Get(ctx, "/vehicles/search", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VehiclesService) Create(ctx context.Context, draft VehicleDraft) (*Vehicle, error) {
	var out Vehicle
	if err := s.api.Post(ctx, "/vehicles", draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VehiclesService) Update(ctx context.Context, id string, draft VehicleDraft) (*Vehicle, error) {
	var out Vehicle
	if err := s.api.Patch(ctx, fmt.Sprintf("/vehicles/%s", id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VehiclesService) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, fmt.Sprintf("/vehicles/%s", id), nil, nil)
}
