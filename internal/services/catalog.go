package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// CatalogEntry is a bilingual reference item (body parts and muscles share the
// same document shape on the backend).
type CatalogEntry struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	NameEnglish string `json:"nameEnglish"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type CatalogDraft struct {
	Name        string `json:"name"`
	NameEnglish string `json:"nameEnglish"`
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
}

// CatalogFilters narrows catalog listings.
type CatalogFilters struct {
	Active *bool
	Name   string
}

// CatalogService serves one catalog resource root (/body-parts or /muscles).
type CatalogService struct {
	api  Doer
	root string
}

func NewBodyPartsService(api Doer) *CatalogService {
	return &CatalogService{api: api, root: "/body-parts"}
}

func NewMusclesService(api Doer) *CatalogService {
	return &CatalogService{api: api, root: "/muscles"}
}

func (s *CatalogService) List(ctx context.Context, filters CatalogFilters) ([]CatalogEntry, error) {
	query := url.Values{}
	if filters.Active != nil {
		query.Set("active", strconv.FormatBool(*filters.Active))
	}
	if filters.Name != "" {
		query.Set("name", filters.Name)
	}
	var out []CatalogEntry
	if err := s.api.Get(ctx, s.root, query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *CatalogService) Create(ctx context.Context, draft CatalogDraft) (*CatalogEntry, error) {
	var out CatalogEntry
	if err := s.api.Post(ctx, s.root, draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CatalogService) Update(ctx context.Context, id string, draft CatalogDraft) (*CatalogEntry, error) {
	var out CatalogEntry
	if err := s.api.Patch(ctx, fmt.Sprintf("%s/%s", s.root, id), draft, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	return s.api.Delete(ctx, fmt.Sprintf("%s/%s", s.root, id), nil, nil)
}
