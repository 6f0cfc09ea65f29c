package file

import (
	"regexp"
	"sync"
	"testing"
)

func TestMakeTempName(t *testing.T) {
	name := MakeTempName("image", ".JPG")
	if !regexp.MustCompile(`^image_[0-9a-f]{32}\.jpg$`).MatchString(name) {
		t.Fatalf("unexpected name %q", name)
	}
	if got := MakeTempName("video", "mp4"); !regexp.MustCompile(`^video_[0-9a-f]{32}\.mp4$`).MatchString(got) {
		t.Fatalf("unexpected name %q", got)
	}
}

func TestMakeTempNameConcurrentUnique(t *testing.T) {
	const n = 200
	names := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names <- MakeTempName("image", ".jpg")
		}()
	}
	wg.Wait()
	close(names)

	seen := make(map[string]struct{}, n)
	for name := range names {
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate name %q", name)
		}
		seen[name] = struct{}{}
	}
}

func TestVideoExtension(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"clip.MOV", ".mov"},
		{"squat.mp4", ".mp4"},
		{"recording.webm", ".webm"},
		{"noext", ".mp4"},
		{"notes.txt", ".mp4"},
	}
	for _, tt := range tests {
		if got := VideoExtension(tt.input); got != tt.expected {
			t.Errorf("VideoExtension(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestMediaKind(t *testing.T) {
	tests := []struct {
		name  string
		image bool
		video bool
	}{
		{"webcam.jpeg", true, false},
		{"frame.WEBP", true, false},
		{"clip.mp4", false, true},
		{"clip.MKV", false, true},
		{"notes.txt", false, false},
		{"noext", false, false},
	}
	for _, tt := range tests {
		if got := IsImageFile(tt.name); got != tt.image {
			t.Errorf("IsImageFile(%q) = %v, want %v", tt.name, got, tt.image)
		}
		if got := IsVideoFile(tt.name); got != tt.video {
			t.Errorf("IsVideoFile(%q) = %v, want %v", tt.name, got, tt.video)
		}
	}
}
