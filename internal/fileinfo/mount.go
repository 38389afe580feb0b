package fileinfo

import (
	"fmt"
	"strings"
)

// MountMapping rewrites a local path prefix to the path the storage sees.
type MountMapping struct {
	Local  string
	Remote string
}

// ParseMountMapping parses "local:remote". An empty value yields a zero mapping.
func ParseMountMapping(value string) (MountMapping, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return MountMapping{}, nil
	}
	parts := strings.Split(value, ":")
	if len(parts) != 2 {
		return MountMapping{}, fmt.Errorf("mount mapping %q must use the form local_path:remote_path", value)
	}
	local := strings.TrimSpace(parts[0])
	remote := strings.TrimSpace(parts[1])
	if local == "" || remote == "" {
		return MountMapping{}, fmt.Errorf("mount mapping %q must name both local and remote paths", value)
	}
	return MountMapping{Local: local, Remote: remote}, nil
}

// IsZero reports whether no mapping is configured.
func (m MountMapping) IsZero() bool {
	return m.Local == "" || m.Remote == ""
}

// Apply returns path with the local prefix replaced by the remote prefix.
// Paths outside the local prefix are returned unchanged.
func (m MountMapping) Apply(path string) string {
	if m.IsZero() {
		return path
	}
	rest, ok := trimDirPrefix(path, m.Local)
	if !ok {
		return path
	}
	if rest == "" {
		return m.Remote
	}
	return strings.TrimRight(m.Remote, "/") + rest
}

func (m MountMapping) String() string {
	if m.IsZero() {
		return ""
	}
	return m.Local + ":" + m.Remote
}

// RelativeDirectory strips mountPoint from dir and any leading separators.
// Directories outside the mount point keep their full path.
func RelativeDirectory(dir, mountPoint string) string {
	rest, ok := trimDirPrefix(dir, mountPoint)
	if !ok {
		return dir
	}
	return strings.TrimLeft(rest, "/")
}

// trimDirPrefix removes prefix from path when prefix names path itself or one
// of its parent directories. "/mnt/media" is not a parent of "/mnt/media2".
func trimDirPrefix(path, prefix string) (string, bool) {
	prefix = strings.TrimRight(prefix, "/")
	switch {
	case prefix == "":
		return path, true
	case path == prefix:
		return "", true
	case strings.HasPrefix(path, prefix+"/"):
		return path[len(prefix):], true
	default:
		return path, false
	}
}
