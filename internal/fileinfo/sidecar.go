package fileinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"assetgate/internal/logging"
)

// SidecarCandidates lists the companion files checked for path, in lookup order.
func SidecarCandidates(path string) []string {
	stem := strings.TrimSuffix(path, filepath.Ext(path))
	return []string{
		path + ".json", stem + ".json",
		path + ".xml", stem + ".xml",
		path + ".csv", stem + ".csv",
	}
}

// LoadSidecar returns metadata from the first existing sidecar next to path.
// Only JSON objects are parsed. An XML or CSV sidecar ends the search with no
// metadata; a JSON file that fails to parse is skipped.
func LoadSidecar(ctx context.Context, logger *slog.Logger, path string) (map[string]any, string) {
	for _, candidate := range SidecarCandidates(path) {
		info, err := os.Stat(candidate)
		if err != nil || info.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(candidate))
		switch ext {
		case ".json":
			metadata, err := readJSONObject(candidate)
			if err != nil {
				logging.WarnWithContext(ctx, logger, "sidecar parse failed", "sidecar_parse_failed",
					logging.String("sidecar", candidate),
					logging.Error(err),
					logging.String(logging.FieldErrorHint, "sidecar must be a JSON object"),
					logging.String(logging.FieldImpact, "sidecar ignored"),
				)
				continue
			}
			return metadata, candidate
		default:
			logging.WarnWithContext(ctx, logger, "sidecar format not supported", "sidecar_unsupported",
				logging.String("sidecar", candidate),
				logging.String("format", strings.TrimPrefix(ext, ".")),
				logging.String(logging.FieldErrorHint, "provide a JSON sidecar instead"),
				logging.String(logging.FieldImpact, "no sidecar metadata applied"),
			)
			return nil, candidate
		}
	}
	return nil, ""
}

// LoadMetadataFile reads caller-supplied metadata. A missing file yields nil
// metadata and ok=false; malformed JSON is an error.
func LoadMetadataFile(path string) (map[string]any, bool, error) {
	if strings.TrimSpace(path) == "" {
		return nil, false, nil
	}
	metadata, err := readJSONObject(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return metadata, true, nil
}

func readJSONObject(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var metadata map[string]any
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if metadata == nil {
		return nil, fmt.Errorf("decode %s: expected a JSON object", filepath.Base(path))
	}
	return metadata, nil
}
