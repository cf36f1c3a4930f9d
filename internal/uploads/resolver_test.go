package uploads

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSanitizeID(t *testing.T) {
	valid := []string{"img-1", "photo_2.jpg", "a.b-c_d", "DSC0001"}
	for _, id := range valid {
		if _, err := SanitizeID(id); err != nil {
			t.Errorf("SanitizeID(%q) = %v, want ok", id, err)
		}
	}
	invalid := []string{"", "../etc/passwd", "a/b", "a\\b", "img 1", "한글이름", "a..b"}
	for _, id := range invalid {
		if _, err := SanitizeID(id); err == nil {
			t.Errorf("SanitizeID(%q) succeeded, want rejection", id)
		}
	}
}

func TestResolveProbesExtensions(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "photo.png"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(dir)

	path, err := r.Resolve("photo")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if filepath.Base(path) != "photo.png" {
		t.Fatalf("path = %q", path)
	}

	path, err = r.Resolve("missing")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if path != "" {
		t.Fatalf("path = %q, want empty for missing file", path)
	}
}

func TestResolveRejectsUnsanitizedIdentifier(t *testing.T) {
	r := NewResolver(t.TempDir())
	if _, err := r.Resolve("../secret"); err == nil {
		t.Fatal("expected rejection before any path construction")
	}
}

func TestReadForVisionPassthroughForUndecodable(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("not an image")
	if err := os.WriteFile(filepath.Join(dir, "blob.webp"), payload, 0o644); err != nil {
		t.Fatal(err)
	}
	r := NewResolver(dir)
	data, mediaType, err := r.ReadForVision(filepath.Join(dir, "blob.webp"))
	if err != nil {
		t.Fatalf("ReadForVision returned error: %v", err)
	}
	if string(data) != string(payload) {
		t.Fatal("undecodable file must pass through unchanged")
	}
	if mediaType != "image/webp" {
		t.Fatalf("mediaType = %q", mediaType)
	}
}
