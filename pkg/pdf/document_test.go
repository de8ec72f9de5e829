package pdf

import (
	"bytes"
	"testing"
	"time"
)

// TestValidate tests the header check
func TestValidate(t *testing.T) {
	t.Run("ValidHeader", func(t *testing.T) {
		if err := Validate([]byte("%PDF-1.7\nrest of file")); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})

	t.Run("MissingHeader", func(t *testing.T) {
		if err := Validate([]byte("not a pdf at all")); err == nil {
			t.Error("Validate() should reject data without the %PDF- header")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if err := Validate(nil); err == nil {
			t.Error("Validate() should reject empty data")
		}
	})

	t.Run("TruncatedHeader", func(t *testing.T) {
		if err := Validate([]byte("%PD")); err == nil {
			t.Error("Validate() should reject a truncated header")
		}
	})
}

// TestHasEOFMarker tests trailer detection
func TestHasEOFMarker(t *testing.T) {
	t.Run("Present", func(t *testing.T) {
		if !hasEOFMarker([]byte("%PDF-1.4\ncontent\n%%EOF\n")) {
			t.Error("hasEOFMarker() = false, marker is present")
		}
	})

	t.Run("Absent", func(t *testing.T) {
		if hasEOFMarker([]byte("%PDF-1.4\ntruncated file")) {
			t.Error("hasEOFMarker() = true, marker is absent")
		}
	})

	t.Run("OnlyNearEnd", func(t *testing.T) {
		// A marker buried deep in a large file does not count
		data := append([]byte("%PDF-1.4\n%%EOF\n"), bytes.Repeat([]byte("x"), 4096)...)
		if hasEOFMarker(data) {
			t.Error("hasEOFMarker() should only scan the tail")
		}
	})
}

// TestInspectInvalid tests that structural failures surface cleanly
func TestInspectInvalid(t *testing.T) {
	if _, err := Inspect([]byte("plain text")); err == nil {
		t.Error("Inspect() should fail without a PDF header")
	}
}

// TestPageTextInvalid tests the same for text extraction
func TestPageTextInvalid(t *testing.T) {
	if _, err := PageText([]byte("plain text"), 1, 100); err == nil {
		t.Error("PageText() should fail without a PDF header")
	}
}

// TestParseDate tests the PDF date format parser
func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want time.Time
		ok   bool
	}{
		{
			name: "FullWithPrefix",
			in:   "D:20190315103000",
			want: time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "ZuluSuffix",
			in:   "D:20190315103000Z",
			want: time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "OffsetSuffix",
			in:   "D:20190315103000+02'00'",
			want: time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "NegativeOffsetSuffix",
			in:   "D:20190315103000-05'00'",
			want: time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "DateOnly",
			in:   "D:20190315",
			want: time.Date(2019, time.March, 15, 0, 0, 0, 0, time.UTC),
			ok:   true,
		},
		{
			name: "NoPrefix",
			in:   "20190315103000",
			want: time.Date(2019, time.March, 15, 10, 30, 0, 0, time.UTC),
			ok:   true,
		},
		{name: "Empty", in: "", ok: false},
		{name: "Garbage", in: "yesterday", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDate(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
