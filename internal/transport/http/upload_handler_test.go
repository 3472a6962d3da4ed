package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"
)

// Smallest payload the content sniffer identifies as PNG.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func postUpload(t *testing.T, env *testEnv, field, filename string, payload []byte) *http.Response {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	resp, err := env.ts.Client().Post(env.ts.URL+"/api/upload", writer.FormDataContentType(), &body)
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestUploadReturnsPublicURL(t *testing.T) {
	env := startTestServer(t)

	resp := postUpload(t, env, "image", "heart.png", pngHeader)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !strings.Contains(out.URL, "/media/") || !strings.HasSuffix(out.URL, ".png") {
		t.Fatalf("unexpected url: %q", out.URL)
	}

	// The blob is retrievable through the static media route.
	path := out.URL[strings.Index(out.URL, "/media/"):]
	got, err := env.ts.Client().Get(env.ts.URL + path)
	if err != nil {
		t.Fatalf("fetch media: %v", err)
	}
	defer got.Body.Close()
	if got.StatusCode != http.StatusOK {
		t.Fatalf("unexpected media status: %d", got.StatusCode)
	}
}

func TestUploadWithoutFile(t *testing.T) {
	env := startTestServer(t)

	resp, err := env.ts.Client().Post(env.ts.URL+"/api/upload", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatalf("upload request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}

	var out ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if out.Error == "" {
		t.Fatal("expected an error message")
	}
}

func TestUploadRejectsNonImage(t *testing.T) {
	env := startTestServer(t)

	resp := postUpload(t, env, "image", "notes.txt", []byte("dear diary"))
	if resp.StatusCode != http.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", resp.StatusCode)
	}
}

func TestUploadWrongFieldName(t *testing.T) {
	env := startTestServer(t)

	resp := postUpload(t, env, "photo", "heart.png", pngHeader)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}
