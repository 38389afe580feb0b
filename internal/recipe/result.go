package recipe

// JobOutcome reports what happened to a transcode job trigger.
type JobOutcome string

const (
	JobNotAttempted JobOutcome = ""
	JobTriggered    JobOutcome = "triggered"
	JobFailed       JobOutcome = "failed"
	JobSkipped      JobOutcome = "skipped"
)

// Result describes one CreateAsset run.
type Result struct {
	StorageID      string `json:"storage_id"`
	FilePath       string `json:"file_path"`
	Title          string `json:"title"`
	ExternalID     string `json:"external_id"`
	Size           int64  `json:"size"`
	MimeType       string `json:"mime_type"`
	DirectoryPath  string `json:"directory_path"`
	MetadataViewID string `json:"metadata_view_id,omitempty"`

	AssetID   string `json:"asset_id"`
	FormatID  string `json:"format_id"`
	FileSetID string `json:"file_set_id"`
	FileID    string `json:"file_id"`

	AssetExisted   bool `json:"asset_existed"`
	FormatExisted  bool `json:"format_existed"`
	FileSetExisted bool `json:"file_set_existed"`
	FileExisted    bool `json:"file_existed"`

	// MetadataApplied is nil when there was no metadata to apply.
	MetadataApplied  *bool    `json:"metadata_applied,omitempty"`
	AddedCollections []string `json:"added_collections,omitempty"`

	MediainfoJob       JobOutcome `json:"mediainfo_job,omitempty"`
	ProxyJob           JobOutcome `json:"proxy_job,omitempty"`
	TranscodingSkipped bool       `json:"transcoding_skipped,omitempty"`

	HistoryCreated       bool   `json:"history_created"`
	HistoryOperationType string `json:"history_operation_type,omitempty"`
}
