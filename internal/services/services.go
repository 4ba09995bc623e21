package services

import (
	"context"
	"net/url"
)

// Doer is the slice of the API client the services need. Narrowing it here
// keeps the services testable with in-package fakes.
type Doer interface {
	Get(ctx context.Context, path string, query url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Patch(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string, body, out any) error
}
