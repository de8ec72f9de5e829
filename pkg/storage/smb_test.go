package storage

import (
	"testing"
	"time"
)

// The SMB backend must satisfy the full backend surface plus the
// optional health-check hook the pool looks for.
var (
	_ Backend = (*SMB)(nil)
	_ Pinger  = (*SMB)(nil)
)

// TestSMBRemotePath tests the share-relative to protocol path mapping
func TestSMBRemotePath(t *testing.T) {
	tests := []struct {
		name     string
		basePath string
		in       string
		want     string
	}{
		{"Simple", "", "documents/a.pdf", `documents\a.pdf`},
		{"LeadingSlash", "", "/documents/a.pdf", `documents\a.pdf`},
		{"Root", "", "", ""},
		{"BasePath", "archive", "a.pdf", `archive\a.pdf`},
		{"BasePathRoot", "archive", "", "archive"},
		{"BasePathNested", "archive/2019", "scans/a.pdf", `archive\2019\scans\a.pdf`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &SMB{basePath: tt.basePath, resolution: time.Second}
			if got := s.remotePath(tt.in); got != tt.want {
				t.Errorf("remotePath(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// TestSMBCapabilities tests the fixed protocol properties
func TestSMBCapabilities(t *testing.T) {
	s := &SMB{resolution: time.Second}
	if s.SupportsCreationTime() {
		t.Error("SupportsCreationTime() = true, the client only exposes Chtimes")
	}
	if got := s.Resolution(); got != time.Second {
		t.Errorf("Resolution() = %v, want %v", got, time.Second)
	}
}
