package platform

import (
	"testing"
)

// TestIsShareTarget tests UNC detection
func TestIsShareTarget(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"//nas/documents/a.pdf", true},
		{`\\nas\documents\a.pdf`, true},
		{"documents/a.pdf", false},
		{"/documents/a.pdf", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsShareTarget(tt.in); got != tt.want {
			t.Errorf("IsShareTarget(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestParseShareTarget tests UNC splitting
func TestParseShareTarget(t *testing.T) {
	t.Run("FullPath", func(t *testing.T) {
		host, share, rel, err := ParseShareTarget("//nas.local/documents/2019/scan.pdf")
		if err != nil {
			t.Fatalf("ParseShareTarget() error = %v", err)
		}
		if host != "nas.local" || share != "documents" || rel != "2019/scan.pdf" {
			t.Errorf("got %q, %q, %q", host, share, rel)
		}
	})

	t.Run("BackslashForm", func(t *testing.T) {
		host, share, rel, err := ParseShareTarget(`\\nas\documents\scan.pdf`)
		if err != nil {
			t.Fatalf("ParseShareTarget() error = %v", err)
		}
		if host != "nas" || share != "documents" || rel != "scan.pdf" {
			t.Errorf("got %q, %q, %q", host, share, rel)
		}
	})

	t.Run("ShareOnly", func(t *testing.T) {
		host, share, rel, err := ParseShareTarget("//nas/documents")
		if err != nil {
			t.Fatalf("ParseShareTarget() error = %v", err)
		}
		if host != "nas" || share != "documents" || rel != "" {
			t.Errorf("got %q, %q, %q", host, share, rel)
		}
	})

	t.Run("MissingShare", func(t *testing.T) {
		if _, _, _, err := ParseShareTarget("//nas"); err == nil {
			t.Error("ParseShareTarget() should fail without a share name")
		}
	})

	t.Run("NotUNC", func(t *testing.T) {
		if _, _, _, err := ParseShareTarget("documents/a.pdf"); err == nil {
			t.Error("ParseShareTarget() should fail for a plain path")
		}
	})
}

// TestNormalizeRemotePath tests path cleaning
func TestNormalizeRemotePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/documents/a.pdf", "documents/a.pdf"},
		{"documents/a.pdf/", "documents/a.pdf"},
		{`documents\sub\a.pdf`, "documents/sub/a.pdf"},
		{"", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := NormalizeRemotePath(tt.in); got != tt.want {
			t.Errorf("NormalizeRemotePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
