package cas

// Azure Blob Storage backed CAS client.
// ---------------------------------------
// Content-addresses blocks by the SHA-256 digest computed in digest.go,
// using the digest string as the blob name within a single container.
// Grounded on the teacher's azure/blob-sidecar module, which shipped only a
// go.mod scaffold for a planned Azure Blob sidecar (no source); this file
// generalizes that scaffold into a concrete CAS client implementation using
// the same SDK dependencies the teacher declared (azidentity, azblob).

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBlobCAS is a Client backed by an Azure Storage container. It wraps a
// single shared *azblob.Client pointer, so copying an AzureBlobCAS value is
// cheap and safe to hand to multiple owners per spec.md §5/§9.
type AzureBlobCAS struct {
	client    *azblob.Client
	container string
	logger    *slog.Logger
}

// NewAzureBlobCAS authenticates against serviceURL with the default Azure
// credential chain and ensures the target container exists.
func NewAzureBlobCAS(ctx context.Context, serviceURL, container string, logger *slog.Logger) (*AzureBlobCAS, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azureblob: default credential: %w", err)
	}
	client, err := azblob.NewClient(serviceURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azureblob: new client: %w", err)
	}
	if _, err := client.CreateContainer(ctx, container, nil); err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("azureblob: create container %s: %w", container, err)
	}
	return &AzureBlobCAS{client: client, container: container, logger: logger}, nil
}

// Put uploads data under its digest CID. Blob uploads are overwrite-by-
// default, so re-putting identical bytes is idempotent: the digest name and
// the content are the same, and the resulting CID is unchanged.
func (a *AzureBlobCAS) Put(ctx context.Context, data []byte) (CID, error) {
	id := digestCID(data)
	if _, err := a.client.UploadBuffer(ctx, a.container, string(id), data, nil); err != nil {
		return "", fmt.Errorf("azureblob: upload %s: %w", id, err)
	}
	return id, nil
}

// Get downloads the block stored under id. AzureBlobCAS does not support
// UnixFS-style path suffixes; a non-empty pathSuffix is rejected.
func (a *AzureBlobCAS) Get(ctx context.Context, id CID, pathSuffix string) ([]byte, error) {
	if pathSuffix != "" {
		return nil, fmt.Errorf("azureblob: path suffix %q not supported", pathSuffix)
	}
	resp, err := a.client.DownloadStream(ctx, a.container, string(id), nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("azureblob: download %s: %w", id, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("azureblob: read %s: %w", id, err)
	}
	return data, nil
}

// Pin records id as retained by writing a "pinned" metadata tag on the
// underlying blob. Azure Blob Storage has no notion of a reachable-children
// graph, so a recursive request only pins the root block itself: blocks
// reachable from it are not tagged, and the only sign of this is a debug
// log line.
func (a *AzureBlobCAS) Pin(ctx context.Context, id CID, recursive bool) error {
	containerClient := a.client.ServiceClient().NewContainerClient(a.container)
	blobClient := containerClient.NewBlobClient(string(id))
	pinned := "true"
	if _, err := blobClient.SetMetadata(ctx, map[string]*string{"pinned": &pinned}, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("azureblob: pin %s: %w", id, err)
	}
	if recursive {
		a.logger.Debug("recursive pin requested on flat block store, pinning root only", "cid", string(id))
	}
	return nil
}

// Resolve reads a mutable-name pointer blob stored under "refs/<name>".
// Population of these pointer blobs is outside the CAS client's surface
// (spec.md §6 notes Resolve is "not used in core flows but available");
// this implementation only satisfies reads against whatever external
// process maintains the refs/ namespace.
func (a *AzureBlobCAS) Resolve(ctx context.Context, name string) (CID, error) {
	data, err := a.Get(ctx, CID("refs/"+name), "")
	if err != nil {
		return "", err
	}
	return CID(bytes.TrimSpace(data)), nil
}
