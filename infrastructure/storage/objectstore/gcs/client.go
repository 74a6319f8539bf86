// Package gcs adapts a Google Cloud Storage bucket to objectstore.Client.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore"
)

// Config configures the GCS client.
type Config struct {
	Bucket string

	// CredentialsFile is a service account key file; empty uses
	// application default credentials.
	CredentialsFile string

	// Endpoint overrides the API endpoint (for emulators).
	Endpoint string
}

// Client is an objectstore.Client backed by one GCS bucket.
type Client struct {
	client *storage.Client
	bucket *storage.BucketHandle
}

// New creates a GCS client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("gcs: bucket name is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}

	return &Client{
		client: client,
		bucket: client.Bucket(cfg.Bucket),
	}, nil
}

// Create implements objectstore.Client.Create with a does-not-exist precondition.
func (c *Client) Create(ctx context.Context, object string, data []byte, contentType string) error {
	obj := c.bucket.Object(object).If(storage.Conditions{DoesNotExist: true})
	err := c.write(ctx, obj, data, contentType)
	if apiStatus(err) == http.StatusPreconditionFailed {
		return objectstore.ErrObjectExists
	}
	return err
}

// Put implements objectstore.Client.Put.
func (c *Client) Put(ctx context.Context, object string, data []byte, contentType string) error {
	return c.write(ctx, c.bucket.Object(object), data, contentType)
}

func (c *Client) write(ctx context.Context, obj *storage.ObjectHandle, data []byte, contentType string) error {
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Get implements objectstore.Client.Get.
func (c *Client) Get(ctx context.Context, object string) ([]byte, error) {
	r, err := c.bucket.Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Delete implements objectstore.Client.Delete.
func (c *Client) Delete(ctx context.Context, object string) error {
	err := c.bucket.Object(object).Delete(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return objectstore.ErrObjectNotFound
	}
	return err
}

// List implements objectstore.Client.List.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	it := c.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		names = append(names, attrs.Name)
	}
	return names, nil
}

// Close releases the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

func apiStatus(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return 0
}

var _ objectstore.Client = (*Client)(nil)
