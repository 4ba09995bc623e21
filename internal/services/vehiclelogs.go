package services

import (
	"context"
	"fmt"
	"net/url"
)

// VehicleLog is one entry/exit record. ExitTime is nil while the vehicle is
// still in the parking lot.
type VehicleLog struct {
	ID            string      `json:"_id"`
	VehicleID     string      `json:"vehicleId"`
	BusinessID    string      `json:"businessId"`
	EntryTime     string      `json:"entryTime"`
	ExitTime      *string     `json:"exitTime"`
	Duration      float64     `json:"duration"`
	Cost          float64     `json:"cost"`
	PaymentMethod *int        `json:"paymentMethod"`
	HasMembership bool        `json:"hasMembership"`
	MembershipID  *string     `json:"membershipId"`
	VehicleType   VehicleType `json:"vehicleType,omitempty"`
	Plate         string      `json:"plateNumber,omitempty"`
	CreatedAt     string      `json:"createdAt"`
	UpdatedAt     string      `json:"updatedAt"`
}

// EntryRequest opens a log for a vehicle entering the lot.
type EntryRequest struct {
	Plate string      `json:"plateNumber"`
	Type  VehicleType `json:"vehicleType"`
}

// CheckoutRequest closes the active log for a vehicle leaving the lot.
type CheckoutRequest struct {
	Plate string  `json:"plateNumber,omitempty"`
	Cost  float64 `json:"cost"`
}

// VehicleLogsService talks to the /vehicle-log endpoints.
type VehicleLogsService struct {
	api Doer
}

func NewVehicleLogsService(api Doer) *VehicleLogsService {
	return &VehicleLogsService{api: api}
}

func (s *VehicleLogsService) All(ctx context.Context) ([]VehicleLog, error) {
	var out []VehicleLog
	if err := s.api.Get(ctx, "/vehicle-log", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VehicleLogsService) Active(ctx context.Context) ([]VehicleLog, error) {
	var out []VehicleLog
	if err := s.api.Get(ctx, "/vehicle-log/active", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VehicleLogsService) ByPlate(ctx context.Context, plate string) ([]VehicleLog, error) {
	var out []VehicleLog
	if err := s.api.Get(ctx, fmt.Sprintf("/vehicle-log/vehicle/%s/logs", plate), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VehicleLogsService) LastByPlate(ctx context.Context, plate string) (*VehicleLog, error) {
	var out VehicleLog
	if err := s.api.Get(ctx, fmt.Sprintf("/vehicle-log/vehicle/%s/last", plate), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Filter lists closed logs for a business inside a date range.
func (s *VehicleLogsService) Filter(ctx context.Context, businessID, dateStart, dateEnd string) ([]VehicleLog, error) {
	var out []VehicleLog
	query := url.Values{
		"businessId": {businessID},
		"dateStart":  {dateStart},
		"dateEnd":    {dateEnd},
	}
	if err := s.api.Get(ctx, "/vehicle-log/filter", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *VehicleLogsService) Entry(ctx context.Context, req EntryRequest) (*VehicleLog, error) {
	var out VehicleLog
	if err := s.api.Post(ctx, "/vehicle-log", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *VehicleLogsService) Checkout(ctx context.Context, id string, req CheckoutRequest) (*VehicleLog, error) {
	var out VehicleLog
	if err := s.api.Patch(ctx, fmt.Sprintf("/vehicle-log/%s/checkout", id), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
