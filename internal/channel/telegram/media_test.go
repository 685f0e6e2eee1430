package telegram

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/heraldbot/herald/internal/params"
)

func TestMediaKind(t *testing.T) {
	tests := []struct {
		ref     string
		asVoice bool
		want    string
	}{
		{"https://example.com/pic.jpg", false, "photo"},
		{"https://example.com/pic.PNG", false, "photo"},
		{"https://example.com/pic.webp?size=big", false, "photo"},
		{"https://example.com/note.ogg", false, "voice"},
		{"/srv/media/tune.mp3", false, "audio"},
		{"/srv/media/report.pdf", false, "document"},
		{"https://example.com/whatever", false, "document"},
		{"https://example.com/tune.mp3", true, "voice"},
		{"https://example.com/pic.jpg#frag", false, "photo"},
	}
	for _, tt := range tests {
		if got := mediaKind(tt.ref, tt.asVoice); got != tt.want {
			t.Errorf("mediaKind(%q, %v): got %q, want %q", tt.ref, tt.asVoice, got, tt.want)
		}
	}
}

func TestResolveLocalPath(t *testing.T) {
	root := t.TempDir()
	inside := filepath.Join(root, "pic.jpg")
	if err := os.WriteFile(inside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	abs, err := resolveLocalPath(inside, []string{root})
	if err != nil {
		t.Fatalf("resolveLocalPath: %v", err)
	}
	if abs != inside {
		t.Errorf("got %q, want %q", abs, inside)
	}

	// Traversal out of the root is rejected.
	_, err = resolveLocalPath(filepath.Join(root, "..", "escape.jpg"), []string{root})
	if !errors.Is(err, params.ErrInvalid) {
		t.Errorf("expected ErrInvalid for path outside root, got %v", err)
	}

	// Without configured roots local paths are off entirely.
	_, err = resolveLocalPath(inside, nil)
	if !errors.Is(err, params.ErrInvalid) {
		t.Errorf("expected ErrInvalid without roots, got %v", err)
	}
	if err == nil || !strings.Contains(err.Error(), "not allowed") {
		t.Errorf("error should say local paths are not allowed: %v", err)
	}
}

func TestResolveMedia_RemoteURL(t *testing.T) {
	m, err := resolveMedia("https://example.com/pic.jpg", nil)
	if err != nil {
		t.Fatalf("resolveMedia: %v", err)
	}
	if m.url != "https://example.com/pic.jpg" || m.data != nil {
		t.Errorf("unexpected media: %+v", m)
	}
}

func TestResolveMedia_PrivateHost(t *testing.T) {
	_, err := resolveMedia("http://localhost/secret.png", nil)
	if !errors.Is(err, params.ErrInvalid) {
		t.Fatalf("expected ErrInvalid for private host, got %v", err)
	}
	if !strings.Contains(err.Error(), "localhost") {
		t.Errorf("error should name the host: %v", err)
	}
}

func TestResolveMedia_BadURL(t *testing.T) {
	_, err := resolveMedia("https://", nil)
	if !errors.Is(err, params.ErrInvalid) {
		t.Errorf("expected ErrInvalid for URL without host, got %v", err)
	}
}

func TestResolveMedia_LocalFile(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "doc.pdf")
	if err := os.WriteFile(path, []byte("content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	m, err := resolveMedia(path, []string{root})
	if err != nil {
		t.Fatalf("resolveMedia: %v", err)
	}
	if m.name != "doc.pdf" || string(m.data) != "content" {
		t.Errorf("unexpected media: name=%q len=%d", m.name, len(m.data))
	}

	_, err = resolveMedia(filepath.Join(root, "missing.pdf"), []string{root})
	if !errors.Is(err, params.ErrInvalid) {
		t.Errorf("expected ErrInvalid for missing file, got %v", err)
	}
}
