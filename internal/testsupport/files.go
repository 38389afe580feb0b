package testsupport

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// FillByte is the content WriteFile repeats, so checksums are predictable.
const FillByte = 0x42

// WriteFile creates path, including parent directories, holding size bytes of
// FillByte. Sizes below one write a single byte.
func WriteFile(t testing.TB, path string, size int64) {
	t.Helper()
	write(t, path, bytes.Repeat([]byte{FillByte}, int(max(size, 1))))
}

// WriteJSON encodes v into path, creating parent directories.
func WriteJSON(t testing.TB, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("encode %s: %v", filepath.Base(path), err)
	}
	write(t, path, data)
}

func write(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
