package fileinfo_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"assetgate/internal/fileinfo"
	"assetgate/internal/logging"
	"assetgate/internal/patterns"
	"assetgate/internal/services"
	"assetgate/internal/testsupport"
)

func writeText(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDeriveComputesAttributes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "projects", "alpha", "clip.pdf")
	writeText(t, path, "hello")

	info, err := fileinfo.Derive(context.Background(), logging.NewNop(), path, fileinfo.Rules{
		StorageID:              "storage-1",
		MountPoint:             root,
		TitleIncludesExtension: true,
	})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if info.Checksum != "5d41402abc4b2a76b9719d911017c592" {
		t.Fatalf("unexpected checksum %q", info.Checksum)
	}
	if info.Size != 5 {
		t.Fatalf("expected size 5, got %d", info.Size)
	}
	if info.Title != "clip.pdf" || info.Stem != "clip" {
		t.Fatalf("unexpected title/stem %q/%q", info.Title, info.Stem)
	}
	if info.DirectoryPath != "projects/alpha" {
		t.Fatalf("expected mount-relative directory, got %q", info.DirectoryPath)
	}
	if info.MimeType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", info.MimeType)
	}
	if info.StorageID != "storage-1" || !info.Exists {
		t.Fatalf("unexpected info %+v", info)
	}
}

func TestDeriveTitleWithoutExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.pdf")
	testsupport.WriteFile(t, path, 16)

	info, err := fileinfo.Derive(context.Background(), nil, path, fileinfo.Rules{})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if info.Title != "report" {
		t.Fatalf("expected stem title, got %q", info.Title)
	}
}

func TestDeriveAppliesMountMapping(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "shoot", "a.mxf")
	testsupport.WriteFile(t, path, 8)

	info, err := fileinfo.Derive(context.Background(), nil, path, fileinfo.Rules{
		Mapping:    fileinfo.MountMapping{Local: root, Remote: "/mnt/media"},
		MountPoint: "/mnt/media",
	})
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if info.MappedPath != "/mnt/media/shoot/a.mxf" {
		t.Fatalf("unexpected mapped path %q", info.MappedPath)
	}
	if info.DirectoryPath != "shoot" {
		t.Fatalf("unexpected directory path %q", info.DirectoryPath)
	}
}

func TestDeriveMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.mov")

	_, err := fileinfo.Derive(context.Background(), nil, path, fileinfo.Rules{})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	info, err := fileinfo.Derive(context.Background(), nil, path, fileinfo.Rules{AllowMissing: true})
	if err != nil {
		t.Fatalf("expected missing file to be tolerated, got %v", err)
	}
	if info.Exists || info.Checksum != "" || info.Size != 0 {
		t.Fatalf("expected empty checksum and size, got %+v", info)
	}
}

func TestDerivePatternRules(t *testing.T) {
	dir := t.TempDir()
	mov := filepath.Join(dir, "clip.mov")
	tmp := filepath.Join(dir, "clip.tmp")
	testsupport.WriteFile(t, mov, 4)
	testsupport.WriteFile(t, tmp, 4)

	tests := []struct {
		name    string
		path    string
		include []string
		ignore  []string
		wantErr bool
	}{
		{"no rules", mov, nil, nil, false},
		{"ignored by glob", tmp, nil, []string{"*.tmp"}, true},
		{"ignored by regex", mov, nil, []string{`re:/^clip\./`}, true},
		{"include miss without ignore", tmp, []string{"*.mov"}, nil, true},
		{"include hit", mov, []string{"*.mov"}, []string{"*.tmp"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fileinfo.Derive(context.Background(), nil, tt.path, fileinfo.Rules{
				ScanInclude: patterns.CompileAll(tt.include),
				ScanIgnore:  patterns.CompileAll(tt.ignore),
			})
			if tt.wantErr {
				if !errors.Is(err, services.ErrPatternMismatch) {
					t.Fatalf("expected ErrPatternMismatch, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDeriveSidecarRequired(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	testsupport.WriteFile(t, path, 4)
	rules := fileinfo.Rules{SidecarRequired: true}

	if _, err := fileinfo.Derive(context.Background(), nil, path, rules); !errors.Is(err, services.ErrSidecarRequired) {
		t.Fatalf("expected ErrSidecarRequired, got %v", err)
	}

	writeText(t, filepath.Join(dir, "clip.json"), `{"description":"from sidecar"}`)
	info, err := fileinfo.Derive(context.Background(), nil, path, rules)
	if err != nil {
		t.Fatalf("Derive returned error: %v", err)
	}
	if info.Sidecar["description"] != "from sidecar" {
		t.Fatalf("unexpected sidecar metadata %v", info.Sidecar)
	}
	if info.SidecarPath != filepath.Join(dir, "clip.json") {
		t.Fatalf("unexpected sidecar path %q", info.SidecarPath)
	}
}

func TestLoadSidecarOrder(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	writeText(t, path+".json", `{"source":"full"}`)
	writeText(t, filepath.Join(dir, "clip.json"), `{"source":"stem"}`)

	metadata, found := fileinfo.LoadSidecar(context.Background(), nil, path)
	if metadata["source"] != "full" {
		t.Fatalf("expected <path>.json to win, got %v", metadata)
	}
	if found != path+".json" {
		t.Fatalf("unexpected sidecar path %q", found)
	}
}

func TestLoadSidecarSkipsBrokenJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	writeText(t, path+".json", `{not json`)
	writeText(t, filepath.Join(dir, "clip.json"), `{"source":"stem"}`)

	metadata, _ := fileinfo.LoadSidecar(context.Background(), nil, path)
	if metadata["source"] != "stem" {
		t.Fatalf("expected fallback to stem sidecar, got %v", metadata)
	}
}

func TestLoadSidecarUnsupportedFormat(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clip.mov")
	writeText(t, filepath.Join(dir, "clip.xml"), `<meta/>`)
	writeText(t, filepath.Join(dir, "clip.csv"), "a,b\n")

	metadata, found := fileinfo.LoadSidecar(context.Background(), nil, path)
	if metadata != nil {
		t.Fatalf("expected no metadata from xml sidecar, got %v", metadata)
	}
	if found != filepath.Join(dir, "clip.xml") {
		t.Fatalf("expected xml sidecar to be reported, got %q", found)
	}
}

func TestLoadMetadataFile(t *testing.T) {
	dir := t.TempDir()

	metadata, ok, err := fileinfo.LoadMetadataFile(filepath.Join(dir, "missing.json"))
	if err != nil || ok || metadata != nil {
		t.Fatalf("expected missing file to be ignored, got %v %v %v", metadata, ok, err)
	}

	bad := filepath.Join(dir, "bad.json")
	writeText(t, bad, `[1,2]`)
	if _, _, err := fileinfo.LoadMetadataFile(bad); err == nil {
		t.Fatal("expected error for non-object JSON")
	}

	good := filepath.Join(dir, "good.json")
	writeText(t, good, `{"title":"Override"}`)
	metadata, ok, err = fileinfo.LoadMetadataFile(good)
	if err != nil || !ok || metadata["title"] != "Override" {
		t.Fatalf("unexpected result %v %v %v", metadata, ok, err)
	}
}

func TestParseMountMapping(t *testing.T) {
	mapping, err := fileinfo.ParseMountMapping("/Volumes/media:/mnt/media")
	if err != nil {
		t.Fatalf("ParseMountMapping returned error: %v", err)
	}
	if got := mapping.Apply("/Volumes/media/a/b.mov"); got != "/mnt/media/a/b.mov" {
		t.Fatalf("unexpected mapped path %q", got)
	}
	if got := mapping.Apply("/other/b.mov"); got != "/other/b.mov" {
		t.Fatalf("expected unmapped path unchanged, got %q", got)
	}
	for _, bad := range []string{"/only", "a:b:c", ":/remote"} {
		if _, err := fileinfo.ParseMountMapping(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
	empty, err := fileinfo.ParseMountMapping("")
	if err != nil || !empty.IsZero() {
		t.Fatalf("expected zero mapping, got %+v %v", empty, err)
	}
}

func TestRelativeDirectory(t *testing.T) {
	if got := fileinfo.RelativeDirectory("/mnt/media/a/b", "/mnt/media"); got != "a/b" {
		t.Fatalf("unexpected relative dir %q", got)
	}
	if got := fileinfo.RelativeDirectory("/elsewhere/a", "/mnt/media"); got != "/elsewhere/a" {
		t.Fatalf("expected dir outside mount unchanged, got %q", got)
	}
	if got := fileinfo.RelativeDirectory("/a/b", ""); got != "a/b" {
		t.Fatalf("expected leading slash trimmed with empty mount, got %q", got)
	}
}

func TestMountPrefixRespectsPathBoundary(t *testing.T) {
	if got := fileinfo.RelativeDirectory("/mnt/media2/a", "/mnt/media"); got != "/mnt/media2/a" {
		t.Fatalf("expected sibling dir unchanged, got %q", got)
	}
	if got := fileinfo.RelativeDirectory("/mnt/media", "/mnt/media"); got != "" {
		t.Fatalf("expected mount point itself to be empty, got %q", got)
	}
	if got := fileinfo.RelativeDirectory("/mnt/media/a", "/mnt/media/"); got != "a" {
		t.Fatalf("expected trailing slash on mount point tolerated, got %q", got)
	}
	if got := fileinfo.RelativeDirectory("/a/b", "/"); got != "a/b" {
		t.Fatalf("expected root mount to strip leading slash, got %q", got)
	}

	mapping := fileinfo.MountMapping{Local: "/Volumes/media", Remote: "/mnt/media"}
	if got := mapping.Apply("/Volumes/media2/b.mov"); got != "/Volumes/media2/b.mov" {
		t.Fatalf("expected sibling path unchanged, got %q", got)
	}
	if got := mapping.Apply("/Volumes/media"); got != "/mnt/media" {
		t.Fatalf("expected mapped root, got %q", got)
	}
	trailing := fileinfo.MountMapping{Local: "/Volumes/media/", Remote: "/mnt/media/"}
	if got := trailing.Apply("/Volumes/media/a/b.mov"); got != "/mnt/media/a/b.mov" {
		t.Fatalf("unexpected mapped path %q", got)
	}
}
