package fileinfo

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"assetgate/internal/logging"
	"assetgate/internal/patterns"
	"assetgate/internal/services"
)

const stageValidate = "validate"

// Rules captures the storage-side settings validation obeys.
type Rules struct {
	StorageID              string
	MountPoint             string
	Mapping                MountMapping
	ScanInclude            patterns.Set
	ScanIgnore             patterns.Set
	SidecarRequired        bool
	TitleIncludesExtension bool
	// AllowMissing tolerates an absent file for metadata-only flows. The
	// checksum is then empty and the size zero.
	AllowMissing bool
}

// Info describes a local file as the catalog will see it.
type Info struct {
	StorageID     string         `json:"storage_id"`
	Path          string         `json:"file_path"`
	Name          string         `json:"file_name"`
	Stem          string         `json:"file_stem"`
	Title         string         `json:"title"`
	Size          int64          `json:"size"`
	Checksum      string         `json:"checksum,omitempty"`
	MimeType      string         `json:"mime_type,omitempty"`
	MappedPath    string         `json:"mapped_path"`
	DirectoryPath string         `json:"directory_path"`
	Sidecar       map[string]any `json:"sidecar_metadata,omitempty"`
	SidecarPath   string         `json:"sidecar_path,omitempty"`
	Exists        bool           `json:"exists"`
}

// Derive validates path against rules and computes its Info. Pattern and
// sidecar checks run before any hashing so rejected files cost nothing.
func Derive(ctx context.Context, logger *slog.Logger, path string, rules Rules) (Info, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(path) == "" {
		return Info{}, services.Wrap(services.ErrValidation, stageValidate, "derive", "file path is required", nil)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return Info{}, services.Wrap(services.ErrValidation, stageValidate, "resolve path", path, err)
	}

	info := Info{
		StorageID: rules.StorageID,
		Path:      absPath,
		Name:      filepath.Base(absPath),
	}
	info.Stem = strings.TrimSuffix(info.Name, filepath.Ext(info.Name))
	info.Title = info.Stem
	if rules.TitleIncludesExtension {
		info.Title = info.Name
	}

	stat, err := os.Stat(absPath)
	switch {
	case err == nil && stat.IsDir():
		return Info{}, services.Wrap(services.ErrValidation, stageValidate, "stat", absPath+" is a directory", nil)
	case err == nil:
		info.Exists = true
		info.Size = stat.Size()
	case errors.Is(err, fs.ErrNotExist):
		if !rules.AllowMissing {
			return Info{}, services.Wrap(services.ErrNotFound, stageValidate, "stat", absPath, err)
		}
	default:
		return Info{}, services.Wrap(services.ErrValidation, stageValidate, "stat", absPath, err)
	}

	info.MappedPath = rules.Mapping.Apply(absPath)
	info.DirectoryPath = RelativeDirectory(filepath.Dir(info.MappedPath), rules.MountPoint)
	info.MimeType = mime.TypeByExtension(filepath.Ext(info.Name))
	if idx := strings.Index(info.MimeType, ";"); idx >= 0 {
		info.MimeType = strings.TrimSpace(info.MimeType[:idx])
	}

	switch decision, pattern := patterns.Evaluate(rules.ScanInclude, rules.ScanIgnore, info.Name); decision {
	case patterns.NotIncluded:
		return Info{}, services.Wrap(services.ErrPatternMismatch, stageValidate, "scan_include",
			fmt.Sprintf("%s matches no scan_include pattern", info.Name), nil)
	case patterns.Ignored:
		return Info{}, services.Wrap(services.ErrPatternMismatch, stageValidate, "scan_ignore",
			fmt.Sprintf("%s matches scan_ignore pattern %q", info.Name, pattern), nil)
	}

	if rules.SidecarRequired {
		info.Sidecar, info.SidecarPath = LoadSidecar(ctx, logger, absPath)
		if info.Sidecar == nil {
			return Info{}, services.Wrap(services.ErrSidecarRequired, stageValidate, "sidecar",
				"sidecar metadata required but not found for "+info.Name, nil)
		}
	}

	if info.Exists {
		if err := unix.Access(absPath, unix.R_OK); err != nil {
			return Info{}, services.Wrap(services.ErrValidation, stageValidate, "access", absPath+" is not readable", err)
		}
		sum, err := Checksum(absPath)
		if err != nil {
			return Info{}, services.Wrap(services.ErrValidation, stageValidate, "checksum", absPath, err)
		}
		info.Checksum = sum
	}

	logger.DebugContext(ctx, "file validated",
		logging.String(logging.FieldFilePath, info.Path),
		logging.String("title", info.Title),
		logging.String("directory_path", info.DirectoryPath),
		logging.String("mime_type", info.MimeType),
		logging.Int64("size", info.Size),
		logging.Bool("exists", info.Exists),
	)
	return info, nil
}
