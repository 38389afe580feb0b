package logging_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assetgate/internal/config"
	"assetgate/internal/logging"
	"assetgate/internal/services"
)

func newFileLogger(t *testing.T, format, level string) (string, func() string) {
	t.Helper()
	logPath := filepath.Join(t.TempDir(), "test.log")
	return logPath, func() string {
		content, err := os.ReadFile(logPath)
		if err != nil {
			t.Fatalf("read log file: %v", err)
		}
		return string(content)
	}
}

func TestNewFromConfigWritesLogFile(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Dir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Info("hello file")

	content, err := os.ReadFile(filepath.Join(cfg.Logging.Dir, "assetgate.log"))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "hello file") {
		t.Fatalf("expected message in log file, got %q", content)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath, read := newFileLogger(t, "console", "info")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message without caller")

	if content := read(); strings.Contains(content, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", content)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath, read := newFileLogger(t, "console", "debug")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("message with caller")

	if content := read(); !strings.Contains(content, ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestConsoleLoggerPromotesComponent(t *testing.T) {
	logPath, read := newFileLogger(t, "console", "info")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "recipe").Info("asset created", logging.String("asset_id", "a-1"))

	content := read()
	if !strings.Contains(content, "INFO recipe: asset created") {
		t.Fatalf("expected component prefix, got %q", content)
	}
	if !strings.Contains(content, "asset_id=a-1") {
		t.Fatalf("expected asset_id attribute, got %q", content)
	}
}

func TestJSONLoggerUsesShortKeys(t *testing.T) {
	logPath, read := newFileLogger(t, "json", "info")
	logger, err := logging.New(logging.Options{Format: "json", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Warn("careful", logging.Error(errors.New("boom")))

	var payload map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(read())), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	for _, key := range []string{"ts", "level", "msg", "error"} {
		if _, ok := payload[key]; !ok {
			t.Fatalf("expected key %q in %v", key, payload)
		}
	}
	if payload["level"] != "warn" {
		t.Fatalf("expected lowercase level, got %v", payload["level"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	logPath, read := newFileLogger(t, "console", "info")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := services.WithRequestID(context.Background(), "req-1")
	ctx = services.WithFilePath(ctx, "/media/a.mov")
	ctx = services.WithAssetID(ctx, "asset-9")
	ctx = services.WithStep(ctx, "hierarchy")
	logging.WithContext(ctx, logger).Info("step started")

	content := read()
	for _, want := range []string{"correlation_id=req-1", "file_path=/media/a.mov", "asset_id=asset-9", "step=hierarchy"} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestQuietContextSuppressesInfo(t *testing.T) {
	logPath, read := newFileLogger(t, "console", "debug")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	quiet := logging.WithQuiet(context.Background())
	if !logging.IsQuiet(quiet) {
		t.Fatal("expected quiet context")
	}
	if logging.IsQuiet(context.Background()) {
		t.Fatal("expected background context to be loud")
	}

	logger.InfoContext(quiet, "suppressed info")
	logger.DebugContext(quiet, "suppressed debug")
	logger.WarnContext(quiet, "visible warning")
	logger.InfoContext(context.Background(), "visible info")

	content := read()
	if strings.Contains(content, "suppressed") {
		t.Fatalf("expected quiet records to be dropped, got %q", content)
	}
	if !strings.Contains(content, "visible warning") || !strings.Contains(content, "visible info") {
		t.Fatalf("expected loud records to be written, got %q", content)
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	logPath, read := newFileLogger(t, "console", "info")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.WarnWithContext(context.Background(), logger, "close failed", "file_close_failed",
		logging.String(logging.FieldImpact, "file stays open"))

	content := read()
	for _, want := range []string{"event_type=file_close_failed", "error_hint=", `impact="file stays open"`} {
		if !strings.Contains(content, want) {
			t.Fatalf("expected %q in %q", want, content)
		}
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewNop()
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("expected nop logger to be disabled")
	}
	logger.Error("ignored")
}
