package iconik

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Status values shared by catalog objects.
const (
	StatusActive  = "ACTIVE"
	StatusDeleted = "DELETED"
	StatusOpen    = "OPEN"
	StatusClosed  = "CLOSED"
)

// FormatOriginal is the format name the recipe manages.
const FormatOriginal = "ORIGINAL"

// Page is a paginated list response.
type Page[T any] struct {
	Objects []T `json:"objects"`
	Page    int `json:"page,omitempty"`
	Pages   int `json:"pages,omitempty"`
	Total   int `json:"total,omitempty"`
}

// Storage is a storage record with its gateway settings.
type Storage struct {
	ID       string          `json:"id"`
	Name     string          `json:"name,omitempty"`
	Method   string          `json:"method,omitempty"`
	Status   string          `json:"status,omitempty"`
	Settings StorageSettings `json:"settings"`
}

// StorageSettings are the storage-side rules the recipe obeys.
type StorageSettings struct {
	MountPoint                 string     `json:"mount_point,omitempty"`
	ScanInclude                StringList `json:"scan_include,omitempty"`
	ScanIgnore                 StringList `json:"scan_ignore,omitempty"`
	TranscodeInclude           StringList `json:"transcode_include,omitempty"`
	TranscodeIgnore            StringList `json:"transcode_ignore,omitempty"`
	AggregateIdenticalFiles    Flag       `json:"aggregate_identical_files,omitempty"`
	AggregateOnlyOnSameStorage Flag       `json:"aggregate_only_on_same_storage,omitempty"`
	SidecarMetadataRequired    Flag       `json:"sidecar_metadata_required,omitempty"`
	FilenameIsExternalID       Flag       `json:"filename_is_external_id,omitempty"`
	TitleIncludesExtension     *Flag      `json:"title_includes_extension,omitempty"`
	LocalProxyCreation         Flag       `json:"local_proxy_creation,omitempty"`
	ACLTemplateID              string     `json:"acl_template_id,omitempty"`
	AccessGroupID              string     `json:"access_group_id,omitempty"`
	MetadataViewID             string     `json:"metadata_view_id,omitempty"`
}

// EffectiveMountPoint returns the configured mount point, defaulting to "/".
func (s StorageSettings) EffectiveMountPoint() string {
	if strings.TrimSpace(s.MountPoint) == "" {
		return "/"
	}
	return s.MountPoint
}

// TitleWithExtension reports whether asset titles keep the file extension.
// Unset means true.
func (s StorageSettings) TitleWithExtension() bool {
	if s.TitleIncludesExtension == nil {
		return true
	}
	return bool(*s.TitleIncludesExtension)
}

// ApplyDefaultACLs reports whether asset creation should request the
// catalog's default ACLs, which is only the case when no explicit ACL source
// is configured.
func (s StorageSettings) ApplyDefaultACLs() bool {
	return s.ACLTemplateID == "" && s.AccessGroupID == ""
}

// Flag decodes booleans that arrive as JSON booleans, numbers, or strings.
type Flag bool

func (f *Flag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = false
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		*f = Flag(b)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = Flag(ParseTruthy(s))
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = n != 0
	return nil
}

// ParseTruthy interprets common textual spellings of true.
func ParseTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "y", "yes", "t", "true", "on", "1":
		return true
	}
	if n, err := strconv.ParseFloat(strings.TrimSpace(value), 64); err == nil {
		return n != 0
	}
	return false
}

// StringList decodes a JSON array of strings or a single comma or newline
// separated string.
type StringList []string

func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err == nil {
		*l = compact(items)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = compact(strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '\n' }))
	return nil
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Asset is a top-level catalog record.
type Asset struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id,omitempty"`
	Title      string `json:"title,omitempty"`
	Status     string `json:"status,omitempty"`
	Type       string `json:"type,omitempty"`
}

// IsDeleted reports whether the asset sits in the trash.
func (a Asset) IsDeleted() bool { return a.Status == StatusDeleted }

// AssetCreate is the body for asset creation.
type AssetCreate struct {
	Title      string `json:"title"`
	ExternalID string `json:"external_id,omitempty"`
	Type       string `json:"type,omitempty"`
}

// Collection is a catalog collection.
type Collection struct {
	ID     string `json:"id"`
	Title  string `json:"title,omitempty"`
	Status string `json:"status,omitempty"`
}

// Format is a named representation group under an asset.
type Format struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status,omitempty"`
	StorageMethods []string `json:"storage_methods,omitempty"`
	IsOnline       bool     `json:"is_online,omitempty"`
}

// FormatCreate is the body for format creation.
type FormatCreate struct {
	Name           string   `json:"name"`
	StorageMethods []string `json:"storage_methods"`
	IsOnline       bool     `json:"is_online"`
}

// FileSet groups files of a format on one storage under a base directory.
type FileSet struct {
	ID           string   `json:"id"`
	Name         string   `json:"name,omitempty"`
	BaseDir      string   `json:"base_dir"`
	StorageID    string   `json:"storage_id"`
	FormatID     string   `json:"format_id"`
	Status       string   `json:"status,omitempty"`
	ComponentIDs []string `json:"component_ids,omitempty"`
}

// FileSetCreate is the body for file set creation.
type FileSetCreate struct {
	Name         string   `json:"name"`
	FormatID     string   `json:"format_id"`
	StorageID    string   `json:"storage_id"`
	BaseDir      string   `json:"base_dir"`
	ComponentIDs []string `json:"component_ids"`
}

// File is a physical file record.
type File struct {
	ID            string `json:"id"`
	AssetID       string `json:"asset_id,omitempty"`
	Name          string `json:"name"`
	OriginalName  string `json:"original_name,omitempty"`
	DirectoryPath string `json:"directory_path,omitempty"`
	FileSetID     string `json:"file_set_id"`
	FormatID      string `json:"format_id"`
	StorageID     string `json:"storage_id,omitempty"`
	Size          int64  `json:"size,omitempty"`
	Type          string `json:"type,omitempty"`
	Status        string `json:"status,omitempty"`
	Checksum      string `json:"checksum,omitempty"`
}

// FileCreate is the body for file creation.
type FileCreate struct {
	Name          string `json:"name"`
	OriginalName  string `json:"original_name"`
	DirectoryPath string `json:"directory_path"`
	FileSetID     string `json:"file_set_id"`
	FormatID      string `json:"format_id"`
	StorageID     string `json:"storage_id"`
	Size          int64  `json:"size"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Checksum      string `json:"checksum,omitempty"`
}

// Component is a media component attached to a format (populated by mediainfo).
type Component struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Type string `json:"type,omitempty"`
}

// Proxy is a transcoded proxy listing entry.
type Proxy struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Status string `json:"status,omitempty"`
}

// Keyframe is a keyframe listing entry.
type Keyframe struct {
	ID   string `json:"id"`
	Type string `json:"type,omitempty"`
}

// History operation types.
const (
	OperationVersionCreate = "VERSION_CREATE"
	OperationAddFormat     = "ADD_FORMAT"
	OperationModifyFileSet = "MODIFY_FILESET"
	OperationCustom        = "CUSTOM"
	OperationMetadata      = "METADATA"
)

// HistoryEntry is one record in an asset's audit trail.
type HistoryEntry struct {
	ID                   string `json:"id,omitempty"`
	OperationType        string `json:"operation_type"`
	OperationDescription string `json:"operation_description,omitempty"`
	SystemDomainID       string `json:"system_domain_id,omitempty"`
	UserID               string `json:"user_id,omitempty"`
}

// IsSystemMetadataWrite reports whether the entry records a metadata write
// performed by the system itself, as mediainfo extraction does.
func (h HistoryEntry) IsSystemMetadataWrite() bool {
	return h.OperationType == OperationMetadata && h.SystemDomainID != "" && h.SystemDomainID == h.UserID
}

// HistoryCreate is the body for appending a history record.
type HistoryCreate struct {
	OperationType        string `json:"operation_type"`
	OperationDescription string `json:"operation_description"`
}
