package iconik

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// DeleteQueue names the trash listings the files service exposes.
type DeleteQueue string

const (
	DeleteQueueFormats  DeleteQueue = "formats"
	DeleteQueueFileSets DeleteQueue = "file_sets"
)

// jobPriority is the priority sent with mediainfo and keyframe jobs.
const jobPriority = 5

// GetStorage fetches a storage and its settings.
func (c *Client) GetStorage(ctx context.Context, storageID string) (Storage, error) {
	var storage Storage
	path := fmt.Sprintf("files/v1/storages/%s/", escape(storageID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, nil, &storage); err != nil {
		return Storage{}, err
	}
	return storage, nil
}

// FindFilesByChecksum lists files whose content checksum matches.
func (c *Client) FindFilesByChecksum(ctx context.Context, checksum string) ([]File, error) {
	var page Page[File]
	path := fmt.Sprintf("files/v1/files/checksum/%s/", escape(checksum))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

type trashEntry struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// InDeleteQueue reports whether the object sits in the files service trash.
func (c *Client) InDeleteQueue(ctx context.Context, queue DeleteQueue, objectID string) (bool, error) {
	var listing struct {
		Status  string       `json:"status"`
		Objects []trashEntry `json:"objects"`
	}
	path := fmt.Sprintf("files/v1/delete_queue/%s/", queue)
	if err := c.doJSONRequest(ctx, http.MethodGet, path, url.Values{"id": {objectID}}, nil, &listing); err != nil {
		return false, err
	}
	if listing.Status == StatusDeleted {
		return true, nil
	}
	return slices.ContainsFunc(listing.Objects, func(e trashEntry) bool {
		return e.ID == objectID
	}), nil
}

// ListFormats lists the formats of an asset.
func (c *Client) ListFormats(ctx context.Context, assetID string) ([]Format, error) {
	var page Page[Format]
	path := fmt.Sprintf("files/v1/assets/%s/formats/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// CreateFormat creates a format under an asset.
func (c *Client) CreateFormat(ctx context.Context, assetID string, body FormatCreate) (Format, error) {
	var format Format
	path := fmt.Sprintf("files/v1/assets/%s/formats/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodPost, path, nil, body, &format); err != nil {
		return Format{}, err
	}
	if format.ID == "" {
		return Format{}, fmt.Errorf("create format: response missing id")
	}
	return format, nil
}

// ListFileSets lists the file sets of an asset.
func (c *Client) ListFileSets(ctx context.Context, assetID string) ([]FileSet, error) {
	var page Page[FileSet]
	path := fmt.Sprintf("files/v1/assets/%s/file_sets/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// CreateFileSet creates a file set under an asset.
func (c *Client) CreateFileSet(ctx context.Context, assetID string, body FileSetCreate) (FileSet, error) {
	if body.ComponentIDs == nil {
		body.ComponentIDs = []string{}
	}
	var fileSet FileSet
	path := fmt.Sprintf("files/v1/assets/%s/file_sets/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodPost, path, nil, body, &fileSet); err != nil {
		return FileSet{}, err
	}
	if fileSet.ID == "" {
		return FileSet{}, fmt.Errorf("create file set: response missing id")
	}
	return fileSet, nil
}

// ListFiles lists the files of an asset.
func (c *Client) ListFiles(ctx context.Context, assetID string) ([]File, error) {
	var page Page[File]
	path := fmt.Sprintf("files/v1/assets/%s/files/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// CreateFile creates a file record under an asset.
func (c *Client) CreateFile(ctx context.Context, assetID string, body FileCreate) (File, error) {
	var file File
	path := fmt.Sprintf("files/v1/assets/%s/files/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodPost, path, nil, body, &file); err != nil {
		return File{}, err
	}
	if file.ID == "" {
		return File{}, fmt.Errorf("create file: response missing id")
	}
	return file, nil
}

// UpdateFileStatus patches a file's status, e.g. OPEN to CLOSED.
func (c *Client) UpdateFileStatus(ctx context.Context, assetID, fileID, status string) error {
	path := fmt.Sprintf("files/v1/assets/%s/files/%s/", escape(assetID), escape(fileID))
	return c.doJSONRequest(ctx, http.MethodPatch, path, nil, map[string]string{"status": status}, nil)
}

// ListComponents lists the media components recorded for a format.
func (c *Client) ListComponents(ctx context.Context, assetID, formatID string) ([]Component, error) {
	var page Page[Component]
	path := fmt.Sprintf("files/v1/assets/%s/formats/%s/components/", escape(assetID), escape(formatID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// ListProxies lists the proxies of an asset.
func (c *Client) ListProxies(ctx context.Context, assetID string) ([]Proxy, error) {
	var page Page[Proxy]
	path := fmt.Sprintf("files/v1/assets/%s/proxies/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// ListKeyframes lists the keyframes of an asset.
func (c *Client) ListKeyframes(ctx context.Context, assetID string) ([]Keyframe, error) {
	var page Page[Keyframe]
	path := fmt.Sprintf("files/v1/assets/%s/keyframes/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// TriggerMediainfo enqueues mediainfo extraction for a file.
func (c *Client) TriggerMediainfo(ctx context.Context, assetID, fileID string) error {
	path := fmt.Sprintf("files/v1/assets/%s/files/%s/mediainfo", escape(assetID), escape(fileID))
	return c.doJSONRequest(ctx, http.MethodPost, path, nil, map[string]int{"priority": jobPriority}, nil)
}

// TriggerKeyframes enqueues proxy and keyframe generation for a file.
func (c *Client) TriggerKeyframes(ctx context.Context, assetID, fileID string) error {
	path := fmt.Sprintf("files/v1/assets/%s/files/%s/keyframes", escape(assetID), escape(fileID))
	return c.doJSONRequest(ctx, http.MethodPost, path, nil, map[string]int{"priority": jobPriority}, nil)
}
