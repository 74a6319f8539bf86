// Package azblob adapts an Azure Blob Storage container to objectstore.Client.
package azblob

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/felixgeelhaar/pitchroom/infrastructure/storage/objectstore"
)

// Config configures the Azure Blob client. A connection string wins over
// an account key; with neither, the default Azure credential chain is used.
type Config struct {
	AccountName      string
	AccountKey       string
	ConnectionString string
	Container        string
}

// ServiceURL returns the blob endpoint for the account.
func (c Config) ServiceURL() string {
	return fmt.Sprintf("https://%s.blob.core.windows.net/", c.AccountName)
}

// Client is an objectstore.Client backed by one blob container.
type Client struct {
	api       *azblob.Client
	container string
}

// New creates an Azure Blob client.
func New(cfg Config) (*Client, error) {
	if cfg.Container == "" {
		return nil, errors.New("azblob: container name is required")
	}

	var (
		api *azblob.Client
		err error
	)
	switch {
	case cfg.ConnectionString != "":
		api, err = azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	case cfg.AccountName != "" && cfg.AccountKey != "":
		var cred *azblob.SharedKeyCredential
		cred, err = azblob.NewSharedKeyCredential(cfg.AccountName, cfg.AccountKey)
		if err == nil {
			api, err = azblob.NewClientWithSharedKeyCredential(cfg.ServiceURL(), cred, nil)
		}
	case cfg.AccountName != "":
		var cred *azidentity.DefaultAzureCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err == nil {
			api, err = azblob.NewClient(cfg.ServiceURL(), cred, nil)
		}
	default:
		return nil, errors.New("azblob: account name or connection string is required")
	}
	if err != nil {
		return nil, fmt.Errorf("azblob: new client: %w", err)
	}

	return &Client{api: api, container: cfg.Container}, nil
}

// Create implements objectstore.Client.Create with an If-None-Match precondition.
func (c *Client) Create(ctx context.Context, object string, data []byte, contentType string) error {
	_, err := c.api.UploadBuffer(ctx, c.container, object, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
		AccessConditions: &blob.AccessConditions{
			ModifiedAccessConditions: &blob.ModifiedAccessConditions{IfNoneMatch: to.Ptr(azcore.ETagAny)},
		},
	})
	if bloberror.HasCode(err, bloberror.BlobAlreadyExists, bloberror.ConditionNotMet) {
		return objectstore.ErrObjectExists
	}
	return err
}

// Put implements objectstore.Client.Put.
func (c *Client) Put(ctx context.Context, object string, data []byte, contentType string) error {
	_, err := c.api.UploadBuffer(ctx, c.container, object, data, &azblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: to.Ptr(contentType)},
	})
	return err
}

// Get implements objectstore.Client.Get.
func (c *Client) Get(ctx context.Context, object string) ([]byte, error) {
	resp, err := c.api.DownloadStream(ctx, c.container, object, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, objectstore.ErrObjectNotFound
		}
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// Delete implements objectstore.Client.Delete.
func (c *Client) Delete(ctx context.Context, object string) error {
	_, err := c.api.DeleteBlob(ctx, c.container, object, nil)
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return objectstore.ErrObjectNotFound
	}
	return err
}

// List implements objectstore.Client.List.
func (c *Client) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	pager := c.api.NewListBlobsFlatPager(c.container, &azblob.ListBlobsFlatOptions{
		Prefix: to.Ptr(prefix),
	})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

var _ objectstore.Client = (*Client)(nil)
