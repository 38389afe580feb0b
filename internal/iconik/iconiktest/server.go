package iconiktest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"assetgate/internal/iconik"
)

// SystemDomainID is stamped on history entries the fake writes for
// simulated mediainfo extraction.
const SystemDomainID = "system-domain"

// Request records one call handled by the fake.
type Request struct {
	Method string
	Path   string
}

// Server is a stateful in-memory fake of the catalog API. It implements every
// endpoint the iconik client calls.
type Server struct {
	// SimulateJobs makes job triggers record their effects: mediainfo adds a
	// format component and a system metadata history entry; keyframes adds a
	// proxy and a keyframe.
	SimulateJobs bool
	// Fail, when set, is consulted before routing. A non-zero status aborts
	// the request with that status.
	Fail func(r *http.Request) int

	mu          sync.Mutex
	srv         *httptest.Server
	seq         map[string]int
	requests    []Request
	storages    map[string]iconik.Storage
	assets      map[string]iconik.Asset
	assetOrder  []string
	formats     map[string][]iconik.Format
	fileSets    map[string][]iconik.FileSet
	files       map[string][]iconik.File
	components  map[string][]iconik.Component
	proxies     map[string][]iconik.Proxy
	keyframes   map[string][]iconik.Keyframe
	history     map[string][]iconik.HistoryEntry
	views       map[string]iconik.MetadataView
	viewValues  map[string]map[string]iconik.MetadataValues
	directMeta  map[string]iconik.MetadataValues
	collections map[string]iconik.Collection
	contents    map[string][]string
	trash       map[iconik.DeleteQueue]map[string]bool
	acls        []string
}

// New starts a fake catalog and registers cleanup with t.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		SimulateJobs: true,
		seq:          map[string]int{},
		storages:     map[string]iconik.Storage{},
		assets:       map[string]iconik.Asset{},
		formats:      map[string][]iconik.Format{},
		fileSets:     map[string][]iconik.FileSet{},
		files:        map[string][]iconik.File{},
		components:   map[string][]iconik.Component{},
		proxies:      map[string][]iconik.Proxy{},
		keyframes:    map[string][]iconik.Keyframe{},
		history:      map[string][]iconik.HistoryEntry{},
		views:        map[string]iconik.MetadataView{},
		viewValues:   map[string]map[string]iconik.MetadataValues{},
		directMeta:   map[string]iconik.MetadataValues{},
		collections:  map[string]iconik.Collection{},
		contents:     map[string][]string{},
		trash: map[iconik.DeleteQueue]map[string]bool{
			iconik.DeleteQueueFormats:  {},
			iconik.DeleteQueueFileSets: {},
		},
	}
	s.srv = httptest.NewServer(s.routes())
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL to configure the client with.
func (s *Server) URL() string { return s.srv.URL }

// Client returns an iconik client pointed at the fake.
func (s *Server) Client(opts ...iconik.Option) *iconik.Client {
	return iconik.NewClient(iconik.Config{BaseURL: s.srv.URL, AppID: "app", AuthToken: "token"}, opts...)
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Route("/API", func(r chi.Router) {
		r.Get("/files/v1/storages/{storage}/", s.getStorage)
		r.Get("/files/v1/files/checksum/{checksum}/", s.filesByChecksum)
		r.Get("/files/v1/delete_queue/{queue}/", s.deleteQueue)
		r.Get("/files/v1/assets/{asset}/formats/", s.listFormats)
		r.Post("/files/v1/assets/{asset}/formats/", s.createFormat)
		r.Get("/files/v1/assets/{asset}/formats/{format}/components/", s.listComponents)
		r.Get("/files/v1/assets/{asset}/file_sets/", s.listFileSets)
		r.Post("/files/v1/assets/{asset}/file_sets/", s.createFileSet)
		r.Get("/files/v1/assets/{asset}/files/", s.listFiles)
		r.Post("/files/v1/assets/{asset}/files/", s.createFile)
		r.Patch("/files/v1/assets/{asset}/files/{file}/", s.patchFile)
		r.Post("/files/v1/assets/{asset}/files/{file}/mediainfo", s.triggerMediainfo)
		r.Post("/files/v1/assets/{asset}/files/{file}/keyframes", s.triggerKeyframes)
		r.Get("/files/v1/assets/{asset}/proxies/", s.listProxies)
		r.Get("/files/v1/assets/{asset}/keyframes/", s.listKeyframes)

		r.Get("/assets/v1/assets/", s.findAssets)
		r.Post("/assets/v1/assets/", s.createAsset)
		r.Get("/assets/v1/assets/{asset}/", s.getAsset)
		r.Get("/assets/v1/assets/{asset}/history/", s.listHistory)
		r.Post("/assets/v1/assets/{asset}/history/", s.createHistory)
		r.Get("/assets/v1/collections/{collection}/", s.getCollection)
		r.Post("/assets/v1/collections/{collection}/contents/", s.addToCollection)

		r.Get("/metadata/v1/views/{view}/", s.getView)
		r.Get("/metadata/v1/assets/{asset}/views/{view}/", s.getViewMetadata)
		r.Put("/metadata/v1/assets/{asset}/views/{view}/", s.putViewMetadata)
		r.Get("/metadata/v1/assets/{asset}/", s.getDirectMetadata)
		r.Put("/metadata/v1/assets/{asset}/", s.putDirectMetadata)

		r.Post("/acls/v1/acl/templates/{template}/asset/{asset}/", s.applyTemplate)
		r.Put("/acls/v1/groups/{group}/acl/assets/{asset}/", s.grantGroup)
	})
	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{Method: r.Method, Path: strings.TrimPrefix(r.URL.Path, "/API")})
		fail := s.Fail
		s.mu.Unlock()
		if fail != nil {
			if status := fail(r); status != 0 {
				http.Error(w, `{"errors":["injected failure"]}`, status)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Requests returns a copy of every request handled so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// ResetRequests clears the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// Count returns how many requests used method on a path containing fragment.
func (s *Server) Count(method, fragment string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, req := range s.requests {
		if req.Method == method && strings.Contains(req.Path, fragment) {
			n++
		}
	}
	return n
}

// Mutations returns the number of non-GET requests handled.
func (s *Server) Mutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, req := range s.requests {
		if req.Method != http.MethodGet {
			n++
		}
	}
	return n
}

func (s *Server) nextID(kind string) string {
	s.seq[kind]++
	return fmt.Sprintf("%s-%d", kind, s.seq[kind])
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func notFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, map[string]any{"errors": []string{"not found"}})
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": []string{err.Error()}})
		return false
	}
	return true
}

func page[T any](objects []T) iconik.Page[T] {
	if objects == nil {
		objects = []T{}
	}
	return iconik.Page[T]{Objects: objects, Page: 1, Pages: 1, Total: len(objects)}
}
