package iconik_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"assetgate/internal/iconik"
	"assetgate/internal/services"
)

func newTestClient(t *testing.T, handler http.Handler, retries int) *iconik.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return iconik.NewClient(iconik.Config{
		BaseURL:      srv.URL,
		AppID:        "app",
		AuthToken:    "token",
		Timeout:      5 * time.Second,
		MaxRetries:   retries,
		RetryBackoff: time.Millisecond,
	})
}

func TestClientSendsAuthHeaders(t *testing.T) {
	var gotApp, gotToken, gotRequestID, gotPath string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotApp = r.Header.Get("App-ID")
		gotToken = r.Header.Get("Auth-Token")
		gotRequestID = r.Header.Get("X-Request-ID")
		gotPath = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "a-1", "status": "ACTIVE"})
	}), 0)

	ctx := services.WithRequestID(context.Background(), "req-42")
	asset, err := client.GetAsset(ctx, "a-1")
	if err != nil {
		t.Fatalf("GetAsset returned error: %v", err)
	}
	if asset.ID != "a-1" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if gotApp != "app" || gotToken != "token" {
		t.Fatalf("expected auth headers, got %q %q", gotApp, gotToken)
	}
	if gotRequestID != "req-42" {
		t.Fatalf("expected request id from context, got %q", gotRequestID)
	}
	if gotPath != "/API/assets/v1/assets/a-1/" {
		t.Fatalf("unexpected path %q", gotPath)
	}
}

func TestClientGeneratesRequestID(t *testing.T) {
	var gotRequestID string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotRequestID = r.Header.Get("X-Request-ID")
		_, _ = io.WriteString(w, `{"objects":[]}`)
	}), 0)

	if _, err := client.ListFormats(context.Background(), "a-1"); err != nil {
		t.Fatalf("ListFormats returned error: %v", err)
	}
	if len(gotRequestID) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", gotRequestID)
	}
}

func TestClientReturnsAPIError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"errors":["missing"]}`, http.StatusNotFound)
	}), 0)

	_, err := client.GetAsset(context.Background(), "nope")
	var apiErr *iconik.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || !strings.Contains(apiErr.Body, "missing") {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !errors.Is(err, services.ErrNotFound) || !errors.Is(err, services.ErrRemote) {
		t.Fatalf("expected 404 to match not-found and remote markers, got %v", err)
	}
	if iconik.StatusCode(err) != http.StatusNotFound {
		t.Fatalf("expected StatusCode 404, got %d", iconik.StatusCode(err))
	}
}

func TestClientRetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"id":"s-1","settings":{"mount_point":"/mnt"}}`)
	}), 3)

	storage, err := client.GetStorage(context.Background(), "s-1")
	if err != nil {
		t.Fatalf("GetStorage returned error: %v", err)
	}
	if storage.Settings.MountPoint != "/mnt" {
		t.Fatalf("unexpected storage %+v", storage)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}), 3)

	if _, err := client.CreateAsset(context.Background(), iconik.AssetCreate{Title: "x"}, true); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", calls.Load())
	}
}

func TestClientGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}), 2)

	_, err := client.ListFiles(context.Background(), "a-1")
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls.Load())
	}
}

func TestClientDoesNotRetryCreateAfterGatewayError(t *testing.T) {
	var creates atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if creates.Add(1) == 1 {
			w.WriteHeader(http.StatusGatewayTimeout)
			return
		}
		_, _ = io.WriteString(w, `{"id":"dup"}`)
	}), 3)

	_, err := client.CreateAsset(context.Background(), iconik.AssetCreate{Title: "clip.mov"}, true)
	if iconik.StatusCode(err) != http.StatusGatewayTimeout {
		t.Fatalf("expected 504 API error, got %v", err)
	}
	if creates.Load() != 1 {
		t.Fatalf("expected a single create attempt, got %d", creates.Load())
	}
}

func TestClientRetriesRateLimitedCreate(t *testing.T) {
	var creates atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if creates.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = io.WriteString(w, `{"id":"a-1"}`)
	}), 3)

	asset, err := client.CreateAsset(context.Background(), iconik.AssetCreate{Title: "clip.mov"}, true)
	if err != nil {
		t.Fatalf("CreateAsset returned error: %v", err)
	}
	if asset.ID != "a-1" || creates.Load() != 2 {
		t.Fatalf("expected a-1 after 2 attempts, got %q after %d", asset.ID, creates.Load())
	}
}

func TestClientRetriesUpdateAfterGatewayError(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}), 2)

	if err := client.PutMetadata(context.Background(), "a-1", "", iconik.MetadataValues{}); err != nil {
		t.Fatalf("PutMetadata returned error: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected 2 attempts, got %d", calls.Load())
	}
}

func TestCreateAssetSendsACLFlag(t *testing.T) {
	var query string
	var body iconik.AssetCreate
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		_ = json.NewDecoder(r.Body).Decode(&body)
		_, _ = io.WriteString(w, `{"id":"new-asset"}`)
	}), 0)

	asset, err := client.CreateAsset(context.Background(), iconik.AssetCreate{Title: "clip.mov", ExternalID: "/m/clip.mov"}, false)
	if err != nil {
		t.Fatalf("CreateAsset returned error: %v", err)
	}
	if asset.ID != "new-asset" {
		t.Fatalf("unexpected asset %+v", asset)
	}
	if query != "apply_default_acls=false" {
		t.Fatalf("unexpected query %q", query)
	}
	if body.Title != "clip.mov" || body.ExternalID != "/m/clip.mov" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestInDeleteQueue(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/API/files/v1/delete_queue/formats/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("id") == "gone" {
			_, _ = io.WriteString(w, `{"objects":[{"id":"gone","status":"DELETED"}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"objects":[]}`)
	}), 0)

	deleted, err := client.InDeleteQueue(context.Background(), iconik.DeleteQueueFormats, "gone")
	if err != nil || !deleted {
		t.Fatalf("expected deleted, got %v %v", deleted, err)
	}
	deleted, err = client.InDeleteQueue(context.Background(), iconik.DeleteQueueFormats, "live")
	if err != nil || deleted {
		t.Fatalf("expected live, got %v %v", deleted, err)
	}
}

func TestHasMetadata(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/API/metadata/v1/assets/full/views/v1/":
			_, _ = io.WriteString(w, `{"metadata_values":{"title":{"field_values":[{"value":"x"}]}}}`)
		case "/API/metadata/v1/assets/empty/views/v1/":
			_, _ = io.WriteString(w, `{"metadata_values":{"title":{"field_values":[]}}}`)
		case "/API/metadata/v1/assets/full/":
			_, _ = io.WriteString(w, `{"title":{"values":[{"value":"x"}]},"date_created":"2024-01-01"}`)
		default:
			_, _ = io.WriteString(w, `{}`)
		}
	}), 0)

	tests := []struct {
		asset, view string
		want        bool
	}{
		{"full", "v1", true},
		{"empty", "v1", false},
		{"full", "", true},
		{"empty", "", false},
	}
	for _, tt := range tests {
		got, err := client.HasMetadata(context.Background(), tt.asset, tt.view)
		if err != nil {
			t.Fatalf("HasMetadata(%s,%s) returned error: %v", tt.asset, tt.view, err)
		}
		if got != tt.want {
			t.Fatalf("HasMetadata(%s,%s): expected %v, got %v", tt.asset, tt.view, tt.want, got)
		}
	}
}

func TestJobTriggersSendPriority(t *testing.T) {
	var paths []string
	var priorities []float64
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]float64
		_ = json.NewDecoder(r.Body).Decode(&body)
		paths = append(paths, r.URL.Path)
		priorities = append(priorities, body["priority"])
		w.WriteHeader(http.StatusAccepted)
	}), 0)

	if err := client.TriggerMediainfo(context.Background(), "a", "f"); err != nil {
		t.Fatalf("TriggerMediainfo returned error: %v", err)
	}
	if err := client.TriggerKeyframes(context.Background(), "a", "f"); err != nil {
		t.Fatalf("TriggerKeyframes returned error: %v", err)
	}
	want := []string{"/API/files/v1/assets/a/files/f/mediainfo", "/API/files/v1/assets/a/files/f/keyframes"}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("expected path %q, got %q", want[i], paths[i])
		}
		if priorities[i] != 5 {
			t.Fatalf("expected priority 5, got %v", priorities[i])
		}
	}
}

func TestIsRetriable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"429", &iconik.APIError{StatusCode: 429}, true},
		{"502", &iconik.APIError{StatusCode: 502}, true},
		{"500", &iconik.APIError{StatusCode: 500}, false},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"reset", errors.New("read tcp: connection reset by peer"), true},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		if got := iconik.IsRetriable(tt.err); got != tt.want {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestSleepWithContextCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := iconik.SleepWithContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
