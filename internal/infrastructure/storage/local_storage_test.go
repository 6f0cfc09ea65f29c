package storage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"posture-analyzer/internal/domain/entities"
	pe "posture-analyzer/pkg/errors"
)

func TestSaveImageWritesDecodedBytes(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, 0)
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}

	tmp, err := s.SaveImage(payload, ".jpg")
	if err != nil {
		t.Fatalf("SaveImage: %v", err)
	}
	if tmp.Kind != entities.MediaImage {
		t.Errorf("kind = %q", tmp.Kind)
	}
	if filepath.Dir(tmp.Path) != dir {
		t.Errorf("file outside temp dir: %q", tmp.Path)
	}
	if !strings.HasPrefix(filepath.Base(tmp.Path), "image_") || filepath.Ext(tmp.Path) != ".jpg" {
		t.Errorf("unexpected name %q", filepath.Base(tmp.Path))
	}

	got, err := os.ReadFile(tmp.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("content = %v, want %v", got, payload)
	}
}

func TestSaveImageConcurrentPathsDistinct(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), 0)

	const n = 50
	paths := make([]string, n)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			tmp, err := s.SaveImage([]byte{byte(i)}, ".jpg")
			if err != nil {
				t.Errorf("SaveImage: %v", err)
				return
			}
			paths[i] = tmp.Path
		}(i)
	}
	close(start)
	wg.Wait()

	seen := make(map[string]bool, n)
	for i, p := range paths {
		if seen[p] {
			t.Fatalf("duplicate path %q", p)
		}
		seen[p] = true
		got, _ := os.ReadFile(p)
		if len(got) != 1 || got[0] != byte(i) {
			t.Errorf("file %q has content %v, want [%d]", p, got, i)
		}
	}
}

func TestSaveImageStorageError(t *testing.T) {
	s := NewLocalStorage(filepath.Join(t.TempDir(), "missing"), 0)
	_, err := s.SaveImage([]byte("x"), ".jpg")
	if !pe.IsKind(err, pe.KindStorage) {
		t.Fatalf("err = %v, want storage error", err)
	}
}

func TestSaveUploadNilHeader(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, 0)

	_, err := s.SaveUpload(nil)
	if !pe.IsKind(err, pe.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("files created: %d", len(entries))
	}
}

func TestSaveUpload(t *testing.T) {
	dir := t.TempDir()
	s := NewLocalStorage(dir, 1024)

	fh := multipartFile(t, "video", "squat.MOV", []byte("fake video bytes"))
	tmp, err := s.SaveUpload(fh)
	if err != nil {
		t.Fatalf("SaveUpload: %v", err)
	}
	if tmp.Kind != entities.MediaVideo || filepath.Ext(tmp.Path) != ".mov" {
		t.Errorf("unexpected tmp %+v", tmp)
	}
	got, _ := os.ReadFile(tmp.Path)
	if string(got) != "fake video bytes" {
		t.Errorf("content = %q", got)
	}
}

func TestSaveUploadTooLarge(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), 4)
	fh := multipartFile(t, "video", "big.mp4", []byte("0123456789"))

	_, err := s.SaveUpload(fh)
	if !pe.IsKind(err, pe.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), 0)
	tmp, err := s.SaveImage([]byte("x"), ".png")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Delete(tmp.Path); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if _, err := os.Stat(tmp.Path); !os.IsNotExist(err) {
		t.Fatalf("file still exists: %v", err)
	}
	if err := s.Delete(tmp.Path); err != nil {
		t.Fatalf("second delete should be a no-op: %v", err)
	}
}

func TestDeleteRejectsOutsidePath(t *testing.T) {
	outside := filepath.Join(t.TempDir(), "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewLocalStorage(t.TempDir(), 0)

	if err := s.Delete(outside); err == nil {
		t.Fatal("expected error for path outside temp dir")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("outside file removed: %v", err)
	}
}

func multipartFile(t *testing.T, field, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(content)
	w.Close()

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatal(err)
	}
	return req.MultipartForm.File[field][0]
}
