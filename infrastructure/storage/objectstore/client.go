// Package objectstore stores reports in a cloud object bucket.
package objectstore

import (
	"context"
	"errors"
)

// Errors returned by Client implementations.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
)

// Client is the subset of bucket operations the report store needs.
// Implementations bind to a single bucket or container.
type Client interface {
	// Create uploads an object, failing with ErrObjectExists when the name is taken.
	Create(ctx context.Context, object string, data []byte, contentType string) error

	// Put uploads an object, replacing any existing one.
	Put(ctx context.Context, object string, data []byte, contentType string) error

	// Get downloads an object.
	Get(ctx context.Context, object string) ([]byte, error)

	// Delete removes an object, failing with ErrObjectNotFound when absent.
	Delete(ctx context.Context, object string) error

	// List returns the names of objects under prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}
