package iconik

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// FieldValue is a single metadata value.
type FieldValue struct {
	Value any `json:"value"`
}

// FieldValues holds the values of one metadata field.
type FieldValues struct {
	FieldValues []FieldValue `json:"field_values"`
}

// MetadataValues maps field names to their values.
type MetadataValues map[string]FieldValues

// MetadataUpdate is the body of a metadata write.
type MetadataUpdate struct {
	MetadataValues MetadataValues `json:"metadata_values"`
}

// ViewField describes one field of a metadata view.
type ViewField struct {
	Name      string `json:"name"`
	Label     string `json:"label,omitempty"`
	FieldType string `json:"field_type,omitempty"`
	Multi     bool   `json:"multi,omitempty"`
}

// MetadataView is a metadata view definition.
type MetadataView struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	ViewFields []ViewField `json:"view_fields"`
}

func metadataPath(assetID, viewID string) string {
	if viewID == "" {
		return fmt.Sprintf("metadata/v1/assets/%s/", escape(assetID))
	}
	return fmt.Sprintf("metadata/v1/assets/%s/views/%s/", escape(assetID), escape(viewID))
}

// GetView fetches a metadata view definition.
func (c *Client) GetView(ctx context.Context, viewID string) (MetadataView, error) {
	var view MetadataView
	path := fmt.Sprintf("metadata/v1/views/%s/", escape(viewID))
	if err := c.doJSONRequest(ctx, http.MethodGet, path, nil, nil, &view); err != nil {
		return MetadataView{}, err
	}
	return view, nil
}

// HasMetadata reports whether any field of the asset already carries a value.
// With a view id the view endpoint is read; otherwise the asset's metadata is
// read directly.
func (c *Client) HasMetadata(ctx context.Context, assetID, viewID string) (bool, error) {
	var raw map[string]json.RawMessage
	if err := c.doJSONRequest(ctx, http.MethodGet, metadataPath(assetID, viewID), nil, nil, &raw); err != nil {
		return false, err
	}

	fields := raw
	key := "values"
	if viewID != "" {
		fields = nil
		key = "field_values"
		if nested, ok := raw["metadata_values"]; ok {
			if err := json.Unmarshal(nested, &fields); err != nil {
				return false, fmt.Errorf("decode metadata values: %w", err)
			}
		}
	}

	for _, field := range fields {
		var entry map[string]json.RawMessage
		if err := json.Unmarshal(field, &entry); err != nil {
			continue
		}
		var values []json.RawMessage
		if err := json.Unmarshal(entry[key], &values); err != nil {
			continue
		}
		if len(values) > 0 {
			return true, nil
		}
	}
	return false, nil
}

// PutMetadata writes metadata values to the asset through viewID, or directly
// when viewID is empty.
func (c *Client) PutMetadata(ctx context.Context, assetID, viewID string, values MetadataValues) error {
	body := MetadataUpdate{MetadataValues: values}
	return c.doJSONRequest(ctx, http.MethodPut, metadataPath(assetID, viewID), nil, body, nil)
}

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatValues shapes raw key/value metadata for a view. Keys that are not
// fields of the view are dropped. Boolean fields are normalized to "true" or
// "false" and ISO date strings on date fields are reduced to YYYY-MM-DD. List
// values are expanded only for multi-value fields.
func FormatValues(view MetadataView, metadata map[string]any) MetadataValues {
	fields := make(map[string]ViewField, len(view.ViewFields))
	for _, field := range view.ViewFields {
		fields[field.Name] = field
	}

	out := MetadataValues{}
	for name, value := range metadata {
		field, ok := fields[name]
		if !ok {
			continue
		}
		entry := FieldValues{FieldValues: []FieldValue{}}
		if value == nil {
			out[name] = entry
			continue
		}
		values := []any{value}
		if list, isList := value.([]any); isList && field.Multi {
			values = list
		}
		for _, v := range values {
			if v == nil {
				continue
			}
			entry.FieldValues = append(entry.FieldValues, FieldValue{Value: coerceFieldValue(field.FieldType, v)})
		}
		out[name] = entry
	}
	return out
}

// WrapValues shapes raw key/value metadata without a view definition.
func WrapValues(metadata map[string]any) MetadataValues {
	out := MetadataValues{}
	for name, value := range metadata {
		entry := FieldValues{FieldValues: []FieldValue{}}
		values := []any{value}
		if list, isList := value.([]any); isList {
			values = list
		}
		for _, v := range values {
			if v != nil {
				entry.FieldValues = append(entry.FieldValues, FieldValue{Value: v})
			}
		}
		out[name] = entry
	}
	return out
}

func coerceFieldValue(fieldType string, value any) any {
	switch fieldType {
	case "boolean":
		switch v := value.(type) {
		case bool:
			return strconv.FormatBool(v)
		case string:
			return strconv.FormatBool(ParseTruthy(v))
		}
	case "date":
		if s, ok := value.(string); ok {
			return formatISODate(s)
		}
	}
	return value
}

func formatISODate(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}
