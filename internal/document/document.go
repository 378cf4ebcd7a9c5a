package document

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Region markers. They must already exist in the document.
const (
	StartMarker = "<!-- DUBLIN_WEATHER:START -->"
	EndMarker   = "<!-- DUBLIN_WEATHER:END -->"
)

var (
	// ErrDocumentNotFound is returned when the target document does not exist.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrMarkerNotFound is returned when the start marker, or an end marker
	// after it, is missing.
	ErrMarkerNotFound = errors.New("region marker not found")
)

// span locates the first start marker and the first end marker after it.
// It returns the byte offsets of the start of the start marker and the end of
// the end marker.
func span(doc, start, end string) (int, int, error) {
	i := strings.Index(doc, start)
	if i < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMarkerNotFound, start)
	}
	j := strings.Index(doc[i+len(start):], end)
	if j < 0 {
		return 0, 0, fmt.Errorf("%w: %s", ErrMarkerNotFound, end)
	}
	return i, i + len(start) + j + len(end), nil
}

// Extract returns the text between the markers, markers excluded.
func Extract(doc, start, end string) (string, error) {
	i, j, err := span(doc, start, end)
	if err != nil {
		return "", err
	}
	return doc[i+len(start) : j-len(end)], nil
}

// Update replaces the marked region with start+"\n"+block+"\n"+end. Text
// outside the region is untouched. changed is false when the result is
// byte-identical to doc.
func Update(doc, start, end, block string) (string, bool, error) {
	i, j, err := span(doc, start, end)
	if err != nil {
		return "", false, err
	}

	updated := doc[:i] + start + "\n" + block + "\n" + end + doc[j:]
	return updated, updated != doc, nil
}

// Load reads the document, normalising CRLF line endings to LF.
func Load(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, path)
		}
		return "", fmt.Errorf("read document %s: %w", path, err)
	}
	return string(bytes.ReplaceAll(raw, []byte("\r\n"), []byte("\n"))), nil
}

// Save writes text as UTF-8 with LF line endings. The content goes to a temp
// file in the same directory which is then renamed over path, so readers see
// either the old or the new document.
func Save(path, text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmpName, err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return fmt.Errorf("chmod %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	// The block carries a raw <img> tag and the markers are HTML comments.
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// RenderHTML converts the Markdown document to an HTML fragment.
func RenderHTML(text string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}
