package iconiktest

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"assetgate/internal/iconik"
)

func (s *Server) getStorage(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	storage, ok := s.storages[chi.URLParam(r, "storage")]
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, storage)
}

func (s *Server) filesByChecksum(w http.ResponseWriter, r *http.Request) {
	checksum := chi.URLParam(r, "checksum")
	s.mu.Lock()
	var matches []iconik.File
	for _, id := range s.assetOrder {
		for _, f := range s.files[id] {
			if f.Checksum == checksum {
				matches = append(matches, f)
			}
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(matches))
}

func (s *Server) deleteQueue(w http.ResponseWriter, r *http.Request) {
	queue := iconik.DeleteQueue(chi.URLParam(r, "queue"))
	id := r.URL.Query().Get("id")
	s.mu.Lock()
	trashed, known := s.trash[queue]
	deleted := known && trashed[id]
	s.mu.Unlock()
	if !known {
		notFound(w)
		return
	}
	type entry struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	var objects []entry
	if deleted {
		objects = append(objects, entry{ID: id, Status: iconik.StatusDeleted})
	}
	writeJSON(w, http.StatusOK, page(objects))
}

func (s *Server) listFormats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	formats := append([]iconik.Format(nil), s.formats[chi.URLParam(r, "asset")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(formats))
}

func (s *Server) createFormat(w http.ResponseWriter, r *http.Request) {
	var body iconik.FormatCreate
	if !decode(w, r, &body) {
		return
	}
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	format := iconik.Format{
		ID:             s.nextID("format"),
		Name:           body.Name,
		Status:         iconik.StatusActive,
		StorageMethods: body.StorageMethods,
		IsOnline:       body.IsOnline,
	}
	s.formats[assetID] = append(s.formats[assetID], format)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, format)
}

func (s *Server) listComponents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	components := append([]iconik.Component(nil), s.components[chi.URLParam(r, "format")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(components))
}

func (s *Server) listFileSets(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	sets := append([]iconik.FileSet(nil), s.fileSets[chi.URLParam(r, "asset")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(sets))
}

func (s *Server) createFileSet(w http.ResponseWriter, r *http.Request) {
	var body iconik.FileSetCreate
	if !decode(w, r, &body) {
		return
	}
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	fs := iconik.FileSet{
		ID:           s.nextID("fileset"),
		Name:         body.Name,
		BaseDir:      body.BaseDir,
		StorageID:    body.StorageID,
		FormatID:     body.FormatID,
		Status:       iconik.StatusActive,
		ComponentIDs: body.ComponentIDs,
	}
	s.fileSets[assetID] = append(s.fileSets[assetID], fs)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, fs)
}

func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	files := append([]iconik.File(nil), s.files[chi.URLParam(r, "asset")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(files))
}

func (s *Server) createFile(w http.ResponseWriter, r *http.Request) {
	var body iconik.FileCreate
	if !decode(w, r, &body) {
		return
	}
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	f := iconik.File{
		ID:            s.nextID("file"),
		AssetID:       assetID,
		Name:          body.Name,
		OriginalName:  body.OriginalName,
		DirectoryPath: body.DirectoryPath,
		FileSetID:     body.FileSetID,
		FormatID:      body.FormatID,
		StorageID:     body.StorageID,
		Size:          body.Size,
		Type:          body.Type,
		Status:        body.Status,
		Checksum:      body.Checksum,
	}
	s.files[assetID] = append(s.files[assetID], f)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) findFile(assetID, fileID string) (int, bool) {
	for i, f := range s.files[assetID] {
		if f.ID == fileID {
			return i, true
		}
	}
	return 0, false
}

func (s *Server) patchFile(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decode(w, r, &body) {
		return
	}
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	idx, ok := s.findFile(assetID, chi.URLParam(r, "file"))
	var f iconik.File
	if ok {
		if body.Status != "" {
			s.files[assetID][idx].Status = body.Status
		}
		f = s.files[assetID][idx]
	}
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) triggerMediainfo(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	idx, ok := s.findFile(assetID, chi.URLParam(r, "file"))
	if ok && s.SimulateJobs {
		formatID := s.files[assetID][idx].FormatID
		s.components[formatID] = append(s.components[formatID], iconik.Component{ID: s.nextID("component"), Type: "VIDEO"})
		s.history[assetID] = append(s.history[assetID], iconik.HistoryEntry{
			ID:             s.nextID("history"),
			OperationType:  iconik.OperationMetadata,
			SystemDomainID: SystemDomainID,
			UserID:         SystemDomainID,
		})
	}
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": "mediainfo"})
}

func (s *Server) triggerKeyframes(w http.ResponseWriter, r *http.Request) {
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	_, ok := s.findFile(assetID, chi.URLParam(r, "file"))
	if ok && s.SimulateJobs {
		s.proxies[assetID] = append(s.proxies[assetID], iconik.Proxy{ID: s.nextID("proxy"), Status: "CLOSED"})
		s.keyframes[assetID] = append(s.keyframes[assetID], iconik.Keyframe{ID: s.nextID("keyframe"), Type: "KEYFRAME"})
	}
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"job_id": "keyframes"})
}

func (s *Server) listProxies(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	proxies := append([]iconik.Proxy(nil), s.proxies[chi.URLParam(r, "asset")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(proxies))
}

func (s *Server) listKeyframes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	keyframes := append([]iconik.Keyframe(nil), s.keyframes[chi.URLParam(r, "asset")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(keyframes))
}

func (s *Server) findAssets(w http.ResponseWriter, r *http.Request) {
	externalID := r.URL.Query().Get("external_id")
	s.mu.Lock()
	var matches []iconik.Asset
	for _, id := range s.assetOrder {
		if asset := s.assets[id]; externalID == "" || asset.ExternalID == externalID {
			matches = append(matches, asset)
		}
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(matches))
}

func (s *Server) createAsset(w http.ResponseWriter, r *http.Request) {
	var body iconik.AssetCreate
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	asset := iconik.Asset{
		ID:         s.nextID("asset"),
		ExternalID: body.ExternalID,
		Title:      body.Title,
		Status:     iconik.StatusActive,
		Type:       "ASSET",
	}
	s.assets[asset.ID] = asset
	s.assetOrder = append(s.assetOrder, asset.ID)
	if r.URL.Query().Get("apply_default_acls") == "true" {
		s.acls = append(s.acls, "default:"+asset.ID)
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, asset)
}

func (s *Server) getAsset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	asset, ok := s.assets[chi.URLParam(r, "asset")]
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, asset)
}

func (s *Server) listHistory(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	entries := append([]iconik.HistoryEntry(nil), s.history[chi.URLParam(r, "asset")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, page(entries))
}

func (s *Server) createHistory(w http.ResponseWriter, r *http.Request) {
	var body iconik.HistoryCreate
	if !decode(w, r, &body) {
		return
	}
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	entry := iconik.HistoryEntry{
		ID:                   s.nextID("history"),
		OperationType:        body.OperationType,
		OperationDescription: body.OperationDescription,
		UserID:               "api-user",
	}
	s.history[assetID] = append(s.history[assetID], entry)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) getCollection(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	collection, ok := s.collections[chi.URLParam(r, "collection")]
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, collection)
}

func (s *Server) addToCollection(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ObjectID   string `json:"object_id"`
		ObjectType string `json:"object_type"`
	}
	if !decode(w, r, &body) {
		return
	}
	collectionID := chi.URLParam(r, "collection")
	s.mu.Lock()
	_, ok := s.collections[collectionID]
	if ok {
		s.contents[collectionID] = append(s.contents[collectionID], body.ObjectID)
	}
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) getView(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	view, ok := s.views[chi.URLParam(r, "view")]
	s.mu.Unlock()
	if !ok {
		notFound(w)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getViewMetadata(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	values := s.viewValues[chi.URLParam(r, "asset")][chi.URLParam(r, "view")]
	s.mu.Unlock()
	if values == nil {
		values = iconik.MetadataValues{}
	}
	writeJSON(w, http.StatusOK, iconik.MetadataUpdate{MetadataValues: values})
}

func (s *Server) putViewMetadata(w http.ResponseWriter, r *http.Request) {
	var body iconik.MetadataUpdate
	if !decode(w, r, &body) {
		return
	}
	assetID := chi.URLParam(r, "asset")
	s.mu.Lock()
	if s.viewValues[assetID] == nil {
		s.viewValues[assetID] = map[string]iconik.MetadataValues{}
	}
	s.viewValues[assetID][chi.URLParam(r, "view")] = body.MetadataValues
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) getDirectMetadata(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	values := s.directMeta[chi.URLParam(r, "asset")]
	s.mu.Unlock()
	out := map[string]any{}
	for name, fv := range values {
		out[name] = map[string]any{"values": fv.FieldValues}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) putDirectMetadata(w http.ResponseWriter, r *http.Request) {
	var body iconik.MetadataUpdate
	if !decode(w, r, &body) {
		return
	}
	s.mu.Lock()
	s.directMeta[chi.URLParam(r, "asset")] = body.MetadataValues
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) applyTemplate(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.acls = append(s.acls, "template:"+chi.URLParam(r, "template")+":"+chi.URLParam(r, "asset"))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) grantGroup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.acls = append(s.acls, "group:"+chi.URLParam(r, "group")+":"+chi.URLParam(r, "asset"))
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}
