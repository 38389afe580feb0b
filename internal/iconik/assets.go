package iconik

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// GetAsset fetches an asset by id.
func (c *Client) GetAsset(ctx context.Context, assetID string) (Asset, error) {
	var asset Asset
	path := fmt.Sprintf("assets/v1/assets/%s/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, nil, &asset); err != nil {
		return Asset{}, err
	}
	return asset, nil
}

// FindAssetsByExternalID lists assets carrying externalID.
func (c *Client) FindAssetsByExternalID(ctx context.Context, externalID string) ([]Asset, error) {
	var page Page[Asset]
	query := listQuery(url.Values{"external_id": {externalID}})
	if err := c.doJSONRequest(ctx, http.MethodGet, "assets/v1/assets/", query, nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// CreateAsset creates an asset. applyDefaultACLs asks the catalog to attach
// its default ACLs to the new record.
func (c *Client) CreateAsset(ctx context.Context, body AssetCreate, applyDefaultACLs bool) (Asset, error) {
	var asset Asset
	query := url.Values{"apply_default_acls": {strconv.FormatBool(applyDefaultACLs)}}
	if err := c.doJSONRequest(ctx, http.MethodPost, "assets/v1/assets/", query, body, &asset); err != nil {
		return Asset{}, err
	}
	if asset.ID == "" {
		return Asset{}, fmt.Errorf("create asset: response missing id")
	}
	return asset, nil
}

// GetCollection fetches a collection by id.
func (c *Client) GetCollection(ctx context.Context, collectionID string) (Collection, error) {
	var collection Collection
	path := fmt.Sprintf("assets/v1/collections/%s/", escape(collectionID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, nil, &collection); err != nil {
		return Collection{}, err
	}
	return collection, nil
}

// AddToCollection adds an asset to a collection.
func (c *Client) AddToCollection(ctx context.Context, collectionID, assetID string) error {
	path := fmt.Sprintf("assets/v1/collections/%s/contents/", escape(collectionID))
	body := map[string]string{"object_id": assetID, "object_type": "assets"}
	return c.doJSONRequest(ctx, http.MethodPost, path, nil, body, nil)
}

// ListHistory returns the asset's history entries.
func (c *Client) ListHistory(ctx context.Context, assetID string) ([]HistoryEntry, error) {
	var page Page[HistoryEntry]
	path := fmt.Sprintf("assets/v1/assets/%s/history/", escape(assetID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, listQuery(nil), nil, &page); err != nil {
		return nil, err
	}
	return page.Objects, nil
}

// CreateHistory appends a history record to the asset.
func (c *Client) CreateHistory(ctx context.Context, assetID string, body HistoryCreate) error {
	path := fmt.Sprintf("assets/v1/assets/%s/history/", escape(assetID))
	return c.doJSONRequest(ctx, http.MethodPost, path, nil, body, nil)
}

// ApplyACLTemplate applies an ACL template to an asset.
func (c *Client) ApplyACLTemplate(ctx context.Context, templateID, assetID string) error {
	path := fmt.Sprintf("acls/v1/acl/templates/%s/asset/%s/", escape(templateID), escape(assetID))
	return c.doJSONRequest(ctx, http.MethodPost, path, nil, nil, nil)
}

// GrantGroupAccess grants an access group the default ACL on an asset.
func (c *Client) GrantGroupAccess(ctx context.Context, groupID, assetID string) error {
	path := fmt.Sprintf("acls/v1/groups/%s/acl/assets/%s/", escape(groupID), escape(assetID))
	return c.doJSONRequest(ctx, http.MethodPut, path, nil, map[string]any{}, nil)
}
