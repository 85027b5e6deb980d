package service

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qr-pickup/internal/config"
)

// 1x1 透明 PNG
var tinyPNG = func() []byte {
	data, err := base64.StdEncoding.DecodeString(
		"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNkYPhfDwAChwGA60e6kgAAAABJRU5ErkJggg==")
	if err != nil {
		panic(err)
	}
	return data
}()

func newTestPhotoService(t *testing.T) *PhotoService {
	t.Helper()
	return NewPhotoService(config.UploadConfig{
		Dir:          t.TempDir(),
		MaxSize:      1 << 20,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
	})
}

func TestPhotoSaveWritesFileUnderSKUDir(t *testing.T) {
	dir := t.TempDir()
	svc := NewPhotoService(config.UploadConfig{Dir: dir, MaxSize: 1 << 20})

	url, err := svc.Save("bps", tinyPNG, "image/png")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !strings.HasPrefix(url, "/uploads/BPS/") {
		t.Fatalf("url want /uploads/BPS/ prefix got %s", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("url want .png suffix got %s", url)
	}

	filename := strings.TrimPrefix(url, "/uploads/BPS/")
	saved, err := os.ReadFile(filepath.Join(dir, "BPS", filename))
	if err != nil {
		t.Fatalf("read saved file failed: %v", err)
	}
	if len(saved) != len(tinyPNG) {
		t.Fatalf("saved file size want %d got %d", len(tinyPNG), len(saved))
	}
}

func TestPhotoSaveRejectsDisallowedType(t *testing.T) {
	svc := newTestPhotoService(t)
	_, err := svc.Save("BPS", []byte("%PDF-1.4 not an image"), "application/pdf")
	if !errors.Is(err, ErrPhotoType) {
		t.Fatalf("want ErrPhotoType got %v", err)
	}
}

func TestPhotoSaveRejectsOversizedPayload(t *testing.T) {
	svc := NewPhotoService(config.UploadConfig{Dir: t.TempDir(), MaxSize: 16})
	_, err := svc.Save("BPS", tinyPNG, "image/png")
	if !errors.Is(err, ErrPhotoTooLarge) {
		t.Fatalf("want ErrPhotoTooLarge got %v", err)
	}
}

func TestParsePhotoDataURL(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString(tinyPNG)
	mime, data, err := ParsePhotoDataURL("data:image/png;base64," + encoded)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if mime != "image/png" {
		t.Fatalf("mime want image/png got %s", mime)
	}
	if len(data) != len(tinyPNG) {
		t.Fatalf("data size want %d got %d", len(tinyPNG), len(data))
	}

	for _, bad := range []string{
		"",
		"image/png;base64,abcd",
		"data:image/png,plainbody",
		"data:;base64,abcd",
		"data:image/png;base64,@@@@",
	} {
		if _, _, err := ParsePhotoDataURL(bad); !errors.Is(err, ErrPhotoEncoding) {
			t.Fatalf("input %q want ErrPhotoEncoding got %v", bad, err)
		}
	}
}
