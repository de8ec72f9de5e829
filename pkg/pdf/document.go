// Package pdf inspects PDF documents for preview: structural
// validation, page count, document info and page text excerpts. It
// never mutates documents; date changes happen at the filesystem level.
package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// header every PDF starts with
var header = []byte("%PDF-")

// eofMarker should appear near the end of a well-formed file
var eofMarker = []byte("%%EOF")

// DocumentInfo summarizes a PDF for display
type DocumentInfo struct {
	Pages    int
	Title    string
	Author   string
	Creator  string
	Created  time.Time
	Modified time.Time

	// EOFMarker is false when the trailer marker is missing; such files
	// often still open but are worth flagging
	EOFMarker bool
}

// Validate performs a cheap structural check: the %PDF- header must be
// present; a missing %%EOF trailer marker is reported via DocumentInfo
// rather than failing here.
func Validate(data []byte) error {
	if len(data) < len(header) || !bytes.HasPrefix(data, header) {
		return fmt.Errorf("not a PDF: missing %%PDF- header")
	}
	return nil
}

// hasEOFMarker scans the last 1KB for the trailer marker
func hasEOFMarker(data []byte) bool {
	tail := data
	if len(tail) > 1024 {
		tail = tail[len(tail)-1024:]
	}
	return bytes.Contains(tail, eofMarker)
}

// Inspect validates the document and extracts its info dictionary
func Inspect(data []byte) (*DocumentInfo, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	info := &DocumentInfo{
		Pages:     reader.NumPage(),
		EOFMarker: hasEOFMarker(data),
	}

	dict := reader.Trailer().Key("Info")
	if !dict.IsNull() {
		info.Title = dict.Key("Title").Text()
		info.Author = dict.Key("Author").Text()
		info.Creator = dict.Key("Creator").Text()
		if t, ok := ParseDate(dict.Key("CreationDate").Text()); ok {
			info.Created = t
		}
		if t, ok := ParseDate(dict.Key("ModDate").Text()); ok {
			info.Modified = t
		}
	}

	return info, nil
}

// PageText extracts the plain text of one page (1-based), truncated to
// maxRunes. Scanned documents with no text layer yield an empty string.
func PageText(data []byte, page, maxRunes int) (string, error) {
	if err := Validate(data); err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	if page < 1 || page > reader.NumPage() {
		return "", fmt.Errorf("page %d out of range (document has %d)", page, reader.NumPage())
	}

	p := reader.Page(page)
	if p.V.IsNull() {
		return "", nil
	}

	text, err := p.GetPlainText(nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	runes := []rune(text)
	if maxRunes > 0 && len(runes) > maxRunes {
		text = string(runes[:maxRunes]) + "…"
	}
	return text, nil
}

// ParseDate parses the PDF date format (D:YYYYMMDDHHmmSS with optional
// timezone suffix). Returns false when the value cannot be parsed.
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	s = strings.TrimPrefix(s, "D:")

	// Strip timezone suffixes: Z, +hh'mm', -hh'mm'
	if i := strings.IndexAny(s, "Z+"); i >= 0 {
		s = s[:i]
	} else if i := strings.IndexByte(s, '-'); i > 8 {
		s = s[:i]
	}

	for _, layout := range []string{"20060102150405", "200601021504", "20060102"} {
		if len(s) < len(layout) {
			continue
		}
		if t, err := time.Parse(layout, s[:len(layout)]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
