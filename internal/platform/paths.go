package platform

import (
	"strings"
)

// IsShareTarget checks whether a CLI argument names a share in UNC
// style (//host/share/path or \\host\share\path) rather than a plain
// path on the configured share
func IsShareTarget(target string) bool {
	return strings.HasPrefix(target, "//") || strings.HasPrefix(target, `\\`)
}

// ParseShareTarget splits a UNC-style target into host, share and the
// path below the share. The path may be empty.
func ParseShareTarget(target string) (host, share, relPath string, err error) {
	if !IsShareTarget(target) {
		return "", "", "", &PathError{Path: target, Message: "not a //host/share path"}
	}

	trimmed := strings.ReplaceAll(target, `\`, "/")
	trimmed = strings.TrimPrefix(trimmed, "//")

	parts := strings.SplitN(trimmed, "/", 3)
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", "", &PathError{Path: target, Message: "expected //host/share[/path]"}
	}

	host = parts[0]
	share = parts[1]
	if len(parts) == 3 {
		relPath = parts[2]
	}
	return host, share, relPath, nil
}

// NormalizeRemotePath cleans a share-relative path to forward slashes
// with no leading or trailing separator
func NormalizeRemotePath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	return strings.Trim(p, "/")
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
