package recipe

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"assetgate/internal/fileinfo"
	"assetgate/internal/iconik"
	"assetgate/internal/logging"
	"assetgate/internal/patterns"
	"assetgate/internal/services"
)

const (
	stepSettings    = "settings"
	stepValidate    = "validate"
	stepIdentity    = "identity"
	stepHierarchy   = "hierarchy"
	stepMetadata    = "metadata"
	stepCollections = "collections"
	stepTranscode   = "transcode"
	stepHistory     = "history"
	stepACL         = "acl"
)

// Catalog is the subset of the catalog API the recipe drives.
type Catalog interface {
	GetStorage(ctx context.Context, storageID string) (iconik.Storage, error)
	FindFilesByChecksum(ctx context.Context, checksum string) ([]iconik.File, error)
	InDeleteQueue(ctx context.Context, queue iconik.DeleteQueue, objectID string) (bool, error)

	GetAsset(ctx context.Context, assetID string) (iconik.Asset, error)
	FindAssetsByExternalID(ctx context.Context, externalID string) ([]iconik.Asset, error)
	CreateAsset(ctx context.Context, body iconik.AssetCreate, applyDefaultACLs bool) (iconik.Asset, error)
	ApplyACLTemplate(ctx context.Context, templateID, assetID string) error
	GrantGroupAccess(ctx context.Context, groupID, assetID string) error

	ListFormats(ctx context.Context, assetID string) ([]iconik.Format, error)
	CreateFormat(ctx context.Context, assetID string, body iconik.FormatCreate) (iconik.Format, error)
	ListFileSets(ctx context.Context, assetID string) ([]iconik.FileSet, error)
	CreateFileSet(ctx context.Context, assetID string, body iconik.FileSetCreate) (iconik.FileSet, error)
	ListFiles(ctx context.Context, assetID string) ([]iconik.File, error)
	CreateFile(ctx context.Context, assetID string, body iconik.FileCreate) (iconik.File, error)
	UpdateFileStatus(ctx context.Context, assetID, fileID, status string) error

	GetView(ctx context.Context, viewID string) (iconik.MetadataView, error)
	HasMetadata(ctx context.Context, assetID, viewID string) (bool, error)
	PutMetadata(ctx context.Context, assetID, viewID string, values iconik.MetadataValues) error

	GetCollection(ctx context.Context, collectionID string) (iconik.Collection, error)
	AddToCollection(ctx context.Context, collectionID, assetID string) error

	ListComponents(ctx context.Context, assetID, formatID string) ([]iconik.Component, error)
	ListProxies(ctx context.Context, assetID string) ([]iconik.Proxy, error)
	ListKeyframes(ctx context.Context, assetID string) ([]iconik.Keyframe, error)
	ListHistory(ctx context.Context, assetID string) ([]iconik.HistoryEntry, error)
	TriggerMediainfo(ctx context.Context, assetID, fileID string) error
	TriggerKeyframes(ctx context.Context, assetID, fileID string) error
	CreateHistory(ctx context.Context, assetID string, body iconik.HistoryCreate) error
}

// Options configures a Recipe.
type Options struct {
	StorageID     string
	DefaultViewID string
	// MountMapping is a "local:remote" prefix rewrite. A malformed value is
	// logged and ignored.
	MountMapping string
	Logger       *slog.Logger
}

// Recipe ingests files into one catalog storage. Storage settings are fetched
// on first use and kept until Invalidate is called.
type Recipe struct {
	catalog       Catalog
	storageID     string
	defaultViewID string
	mapping       fileinfo.MountMapping
	logger        *slog.Logger

	mu       sync.Mutex
	settings *iconik.StorageSettings
}

// Request is one file to ingest.
type Request struct {
	FilePath string
	// ExternalID overrides the derived external id.
	ExternalID string
	// ViewID overrides the default and storage metadata views.
	ViewID        string
	Metadata      map[string]any
	CollectionIDs []string
	// AllowMissing ingests metadata for a file that is not on local disk.
	AllowMissing bool
}

// New constructs a Recipe for opts.StorageID.
func New(catalog Catalog, opts Options) (*Recipe, error) {
	if catalog == nil {
		return nil, services.Wrap(services.ErrConfiguration, stepSettings, "new recipe", "catalog client is required", nil)
	}
	storageID := strings.TrimSpace(opts.StorageID)
	if storageID == "" {
		return nil, services.Wrap(services.ErrConfiguration, stepSettings, "new recipe", "storage id is required", nil)
	}
	logger := logging.NewComponentLogger(opts.Logger, "recipe")

	r := &Recipe{
		catalog:       catalog,
		storageID:     storageID,
		defaultViewID: strings.TrimSpace(opts.DefaultViewID),
		logger:        logger,
	}
	if raw := strings.TrimSpace(opts.MountMapping); raw != "" {
		mapping, err := fileinfo.ParseMountMapping(raw)
		if err != nil {
			logging.WarnWithContext(context.Background(), logger, "ignoring mount mapping", "mount_mapping_invalid",
				logging.String("mount_mapping", raw),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "use the form /local/prefix:/remote/prefix"),
				logging.String(logging.FieldImpact, "paths are sent to the catalog unmapped"),
			)
		} else {
			r.mapping = mapping
		}
	}
	return r, nil
}

// StorageID returns the storage the recipe ingests into.
func (r *Recipe) StorageID() string { return r.storageID }

// Settings returns the storage settings, fetching them on first use. A failed
// fetch is not cached.
func (r *Recipe) Settings(ctx context.Context) (iconik.StorageSettings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings != nil {
		return *r.settings, nil
	}
	storage, err := r.catalog.GetStorage(ctx, r.storageID)
	if err != nil {
		return iconik.StorageSettings{}, services.Wrap(services.ErrConfiguration, stepSettings, "get storage",
			"fetch settings for storage "+r.storageID, err)
	}
	settings := storage.Settings
	r.settings = &settings
	r.logger.DebugContext(ctx, "storage settings loaded",
		logging.String("storage_id", r.storageID),
		logging.String("mount_point", settings.EffectiveMountPoint()),
		logging.Bool("aggregate_identical_files", bool(settings.AggregateIdenticalFiles)),
	)
	return settings, nil
}

// Invalidate drops the cached storage settings.
func (r *Recipe) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.settings = nil
}

// Rules converts settings into validation rules for this storage. Patterns
// that fail to compile are logged; they never match.
func (r *Recipe) Rules(ctx context.Context, settings iconik.StorageSettings, allowMissing bool) fileinfo.Rules {
	return fileinfo.Rules{
		StorageID:              r.storageID,
		MountPoint:             settings.EffectiveMountPoint(),
		Mapping:                r.mapping,
		ScanInclude:            r.compilePatterns(ctx, "scan_include", settings.ScanInclude),
		ScanIgnore:             r.compilePatterns(ctx, "scan_ignore", settings.ScanIgnore),
		SidecarRequired:        bool(settings.SidecarMetadataRequired),
		TitleIncludesExtension: settings.TitleWithExtension(),
		AllowMissing:           allowMissing,
	}
}

// CreateAsset reconciles req.FilePath with the catalog. The returned error is
// non-nil only for validation, identity, and hierarchy failures; the Result
// is populated as far as the run got.
func (r *Recipe) CreateAsset(ctx context.Context, req Request) (Result, error) {
	ctx = services.WithFilePath(ctx, req.FilePath)

	settings, err := r.Settings(ctx)
	if err != nil {
		return Result{}, err
	}

	validateCtx := services.WithStep(ctx, stepValidate)
	info, err := fileinfo.Derive(validateCtx, logging.WithContext(validateCtx, r.logger), req.FilePath, r.Rules(validateCtx, settings, req.AllowMissing))
	if err != nil {
		return Result{}, err
	}
	ctx = services.WithFilePath(ctx, info.Path)

	externalID := strings.TrimSpace(req.ExternalID)
	if externalID == "" {
		externalID = resolveExternalID(settings, info)
	}

	result := Result{
		StorageID:      r.storageID,
		FilePath:       info.Path,
		Title:          info.Title,
		ExternalID:     externalID,
		Size:           info.Size,
		MimeType:       info.MimeType,
		DirectoryPath:  info.DirectoryPath,
		MetadataViewID: r.resolveViewID(req.ViewID, settings),
	}

	assetID, existed, err := r.resolveAsset(ctx, settings, info, externalID)
	if err != nil {
		return result, err
	}
	ctx = services.WithAssetID(ctx, assetID)
	result.AssetID = assetID
	result.AssetExisted = existed

	if err := r.reconcileHierarchy(ctx, info, &result); err != nil {
		return result, err
	}

	if len(req.Metadata) > 0 || len(info.Sidecar) > 0 {
		applied := r.applyMetadata(ctx, assetID, result.MetadataViewID, info.Sidecar, req.Metadata)
		result.MetadataApplied = &applied
	}
	if len(req.CollectionIDs) > 0 {
		result.AddedCollections = r.addToCollections(ctx, assetID, req.CollectionIDs)
	}

	r.triggerTranscoding(ctx, settings, info, &result)
	r.recordHistory(ctx, &result)

	logging.WithContext(ctx, r.logger).InfoContext(ctx, "asset reconciled",
		logging.String(logging.FieldEventType, "asset_reconciled"),
		logging.String("file_id", result.FileID),
		logging.Bool("asset_existed", result.AssetExisted),
		logging.String("history_operation_type", result.HistoryOperationType),
	)
	return result, nil
}

// compilePatterns compiles one storage pattern setting and warns about each
// entry that cannot match anything.
func (r *Recipe) compilePatterns(ctx context.Context, setting string, values []string) patterns.Set {
	set := patterns.CompileAll(values)
	for _, m := range set {
		if m.Err() == nil {
			continue
		}
		logging.WarnWithContext(ctx, logging.WithContext(ctx, r.logger), "invalid storage pattern", "invalid_pattern",
			logging.String("setting", setting),
			logging.String("pattern", m.Pattern()),
			logging.Bool("regex", m.IsRegex()),
			logging.Error(m.Err()),
			logging.String(logging.FieldErrorHint, "fix "+setting+" in the storage settings"),
			logging.String(logging.FieldImpact, "pattern never matches"),
		)
	}
	return set
}
