package iconiktest

import "assetgate/internal/iconik"

// AddStorage registers a storage with its settings.
func (s *Server) AddStorage(id string, settings iconik.StorageSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.storages[id] = iconik.Storage{ID: id, Name: id, Method: "FILE", Status: iconik.StatusActive, Settings: settings}
}

// AddView registers a metadata view definition.
func (s *Server) AddView(view iconik.MetadataView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views[view.ID] = view
}

// AddCollection registers a collection.
func (s *Server) AddCollection(id, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == "" {
		status = iconik.StatusActive
	}
	s.collections[id] = iconik.Collection{ID: id, Title: id, Status: status}
}

// SeedAsset inserts an asset directly and returns it.
func (s *Server) SeedAsset(externalID, title, status string) iconik.Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status == "" {
		status = iconik.StatusActive
	}
	asset := iconik.Asset{ID: s.nextID("asset"), ExternalID: externalID, Title: title, Status: status, Type: "ASSET"}
	s.assets[asset.ID] = asset
	s.assetOrder = append(s.assetOrder, asset.ID)
	return asset
}

// SeedFormat inserts a format under an asset.
func (s *Server) SeedFormat(assetID, name, status string) iconik.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	format := iconik.Format{ID: s.nextID("format"), Name: name, Status: status, StorageMethods: []string{"FILE"}, IsOnline: true}
	s.formats[assetID] = append(s.formats[assetID], format)
	return format
}

// SeedFileSet inserts a file set under an asset.
func (s *Server) SeedFileSet(assetID string, fs iconik.FileSet) iconik.FileSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs.ID = s.nextID("fileset")
	s.fileSets[assetID] = append(s.fileSets[assetID], fs)
	return fs
}

// SeedFile inserts a file under an asset.
func (s *Server) SeedFile(assetID string, f iconik.File) iconik.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.nextID("file")
	f.AssetID = assetID
	s.files[assetID] = append(s.files[assetID], f)
	return f
}

// SetAssetStatus changes an asset's status, e.g. to DELETED.
func (s *Server) SetAssetStatus(assetID, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if asset, ok := s.assets[assetID]; ok {
		asset.Status = status
		s.assets[assetID] = asset
	}
}

// Trash places a format or file set in the delete queue.
func (s *Server) Trash(queue iconik.DeleteQueue, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trash[queue][id] = true
}

// SetViewMetadata stores metadata values for an asset through a view.
func (s *Server) SetViewMetadata(assetID, viewID string, values iconik.MetadataValues) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.viewValues[assetID] == nil {
		s.viewValues[assetID] = map[string]iconik.MetadataValues{}
	}
	s.viewValues[assetID][viewID] = values
}

// ViewMetadata returns metadata stored for an asset through a view.
func (s *Server) ViewMetadata(assetID, viewID string) iconik.MetadataValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewValues[assetID][viewID]
}

// DirectMetadata returns metadata written without a view.
func (s *Server) DirectMetadata(assetID string) iconik.MetadataValues {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.directMeta[assetID]
}

// AddHistory appends a history entry to an asset.
func (s *Server) AddHistory(assetID string, entry iconik.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.ID = s.nextID("history")
	s.history[assetID] = append(s.history[assetID], entry)
}

// AddComponent records a media component on a format.
func (s *Server) AddComponent(formatID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.components[formatID] = append(s.components[formatID], iconik.Component{ID: s.nextID("component"), Type: "VIDEO"})
}

// AddProxy records a proxy on an asset.
func (s *Server) AddProxy(assetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.proxies[assetID] = append(s.proxies[assetID], iconik.Proxy{ID: s.nextID("proxy"), Status: "CLOSED"})
}

// AddKeyframe records a keyframe on an asset.
func (s *Server) AddKeyframe(assetID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keyframes[assetID] = append(s.keyframes[assetID], iconik.Keyframe{ID: s.nextID("keyframe"), Type: "KEYFRAME"})
}

// Asset returns a stored asset.
func (s *Server) Asset(id string) (iconik.Asset, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	asset, ok := s.assets[id]
	return asset, ok
}

// AssetCount returns how many assets exist.
func (s *Server) AssetCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.assets)
}

// Formats returns the formats of an asset.
func (s *Server) Formats(assetID string) []iconik.Format {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]iconik.Format(nil), s.formats[assetID]...)
}

// FileSets returns the file sets of an asset.
func (s *Server) FileSets(assetID string) []iconik.FileSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]iconik.FileSet(nil), s.fileSets[assetID]...)
}

// Files returns the files of an asset.
func (s *Server) Files(assetID string) []iconik.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]iconik.File(nil), s.files[assetID]...)
}

// History returns the history entries of an asset.
func (s *Server) History(assetID string) []iconik.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]iconik.HistoryEntry(nil), s.history[assetID]...)
}

// CollectionContents returns the asset ids added to a collection.
func (s *Server) CollectionContents(collectionID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.contents[collectionID]...)
}

// ACLCalls returns a description of each ACL call, e.g. "template:t-1:asset-1".
func (s *Server) ACLCalls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.acls...)
}
