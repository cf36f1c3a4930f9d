// Package uploads resolves attached-image identifiers to files under the
// configured upload directory. Identifiers are whitelisted before any path
// construction; an unsanitized identifier never reaches the filesystem.
package uploads

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// allowed extensions probed when an identifier carries none.
var extensions = []string{".jpg", ".jpeg", ".png", ".webp", ".gif"}

// ErrInvalidIdentifier marks identifiers rejected by the whitelist.
var ErrInvalidIdentifier = errors.New("uploads: invalid identifier")

// Resolver locates attached images inside a fixed root directory.
type Resolver struct {
	root string
}

// NewResolver roots a resolver at dir.
func NewResolver(dir string) *Resolver {
	return &Resolver{root: dir}
}

// SanitizeID validates an attachment identifier against the whitelist.
func SanitizeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" || !idPattern.MatchString(id) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, id)
	}
	return id, nil
}

// Resolve returns the path of the file backing an identifier, probing the
// allowed extensions, or "" when nothing matches. The identifier must pass
// the whitelist first.
func (r *Resolver) Resolve(id string) (string, error) {
	id, err := SanitizeID(id)
	if err != nil {
		return "", err
	}
	if filepath.Ext(id) != "" {
		path := filepath.Join(r.root, id)
		if fileExists(path) {
			return path, nil
		}
		return "", nil
	}
	for _, ext := range extensions {
		path := filepath.Join(r.root, id+ext)
		if fileExists(path) {
			return path, nil
		}
	}
	return "", nil
}

const maxVisionEdge = 1568

// ReadForVision loads an image and returns JPEG bytes bounded to the vision
// payload size, downscaling when the long edge exceeds the limit. Files that
// do not decode are returned as-is with their sniffed media type.
func (r *Resolver) ReadForVision(path string) ([]byte, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("uploads: read %s: %w", filepath.Base(path), err)
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return raw, mediaTypeForExt(path), nil
	}
	bounds := img.Bounds()
	if bounds.Dx() <= maxVisionEdge && bounds.Dy() <= maxVisionEdge {
		return raw, mediaTypeForExt(path), nil
	}
	fitted := imaging.Fit(img, maxVisionEdge, maxVisionEdge, imaging.Lanczos)
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fitted, &jpeg.Options{Quality: 85}); err != nil {
		return raw, mediaTypeForExt(path), nil
	}
	return buf.Bytes(), "image/jpeg", nil
}

func mediaTypeForExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/jpeg"
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
