package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// Discover returns every regular file under root whose extension is listed,
// in lexical order. Extensions compare case-insensitively and include the dot.
func Discover(root string, extensions []string) ([]string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", root, err)
	}
	wanted := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		wanted[strings.ToLower(ext)] = struct{}{}
	}

	var files []string
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != absRoot && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := wanted[strings.ToLower(filepath.Ext(path))]; ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", absRoot, err)
	}
	slices.Sort(files)
	return files, nil
}

// CollectionFor returns the collection mapped to the nearest ancestor
// directory of path.
func CollectionFor(path string, collections map[string]string) (string, bool) {
	if len(collections) == 0 {
		return "", false
	}
	dir := filepath.Dir(filepath.Clean(path))
	for {
		if id, ok := collections[dir]; ok && strings.TrimSpace(id) != "" {
			return id, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultMetadata builds the title and filename fields every batch file gets.
func DefaultMetadata(path string) map[string]any {
	name := filepath.Base(path)
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return map[string]any{
		"metadata_values": map[string]any{
			"title":    fieldValue(stem),
			"filename": fieldValue(name),
		},
	}
}

func fieldValue(value string) map[string]any {
	return map[string]any{"field_values": []any{map[string]any{"value": value}}}
}
