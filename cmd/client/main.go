package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	fl "posture-analyzer/pkg/file"
	"posture-analyzer/pkg/helper"
)

const LIMIT = 3

type result struct {
	path   string
	status int
	body   []byte
	err    error
}

func main() {
	server := flag.String("server", "http://localhost:5000", "Server base URL")
	image := flag.String("image", "", "Analiz edilecek resim dosyası")
	video := flag.String("video", "", "Analiz edilecek video dosyası")
	mode := flag.String("mode", "", "Analysis mode (server default when empty)")
	timeout := flag.Duration("timeout", 10*time.Minute, "Per-request timeout")
	flag.Parse()

	files := flag.Args()
	if *image != "" {
		files = append(files, *image)
	}
	if *video != "" {
		files = append(files, *video)
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: client [-server URL] [-mode MODE] [-image FILE] [-video FILE] [FILE...]")
		os.Exit(2)
	}

	// İptal sinyalini yakala
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	base := strings.TrimRight(*server, "/")
	client := &http.Client{Timeout: *timeout}

	sem := make(chan struct{}, LIMIT)
	results := make([]result, len(files))
	var wg sync.WaitGroup

	for i, path := range files {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				results[i] = result{path: path, err: ctx.Err()}
				return
			}

			var req *http.Request
			var err error
			switch {
			case fl.IsVideoFile(path):
				req, err = videoRequest(ctx, base, path, *mode)
			case fl.IsImageFile(path):
				req, err = imageRequest(ctx, base, path, *mode)
			default:
				err = fmt.Errorf("desteklenmeyen dosya türü: %s", filepath.Ext(path))
			}
			if err != nil {
				results[i] = result{path: path, err: err}
				return
			}

			resp, err := client.Do(req)
			if err != nil {
				results[i] = result{path: path, err: err}
				return
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			results[i] = result{path: path, status: resp.StatusCode, body: body}
		}(i, path)
	}
	wg.Wait()

	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			log.Printf("%s: istek gönderilemedi: %v", r.path, r.err)
			continue
		}
		if r.status != http.StatusOK {
			failed++
		}
		fmt.Printf("%s: HTTP %d\n%s\n", r.path, r.status, indent(r.body))
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func imageRequest(ctx context.Context, base, path, mode string) (*http.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dosya okunamadı: %w", err)
	}

	mime := helper.GetMimeTypeFromExtension(path)
	payload, err := json.Marshal(map[string]string{
		"image": fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data)),
		"mode":  mode,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/analyze-image", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func videoRequest(ctx context.Context, base, path, mode string) (*http.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dosya açılamadı: %w", err)
	}
	defer file.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if mode != "" {
		writer.WriteField("mode", mode)
	}
	part, err := writer.CreateFormFile("video", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("form dosyası oluşturulamadı: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("form dosyasına yazılamadı: %w", err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/analyze-video", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}

func indent(body []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, body, "", "  "); err != nil {
		return string(body)
	}
	return out.String()
}
