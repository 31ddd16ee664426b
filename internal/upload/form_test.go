package upload

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/lucko/mod-publish/internal/errdefs"
)

func writeJar(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewFormParts(t *testing.T) {
	content := []byte{0x50, 0x4b, 0x03, 0x04, 0x00, 0xff, 0x10}
	path := writeJar(t, "spark-1.2.3-forge.jar", content)

	form, err := NewForm("metadata", map[string]string{"releaseType": "beta"}, path, "spark-1.2.3-forge.jar")
	if err != nil {
		t.Fatalf("NewForm: %v", err)
	}

	_, params, err := mime.ParseMediaType(form.ContentType)
	if err != nil {
		t.Fatalf("parsing content type: %v", err)
	}
	r := multipart.NewReader(form.Body, params["boundary"])

	meta, err := r.NextPart()
	if err != nil {
		t.Fatalf("reading metadata part: %v", err)
	}
	if meta.FormName() != "metadata" {
		t.Errorf("first part = %q, want %q", meta.FormName(), "metadata")
	}
	var decoded map[string]string
	if err := json.NewDecoder(meta).Decode(&decoded); err != nil {
		t.Fatalf("decoding metadata: %v", err)
	}
	if decoded["releaseType"] != "beta" {
		t.Errorf("releaseType = %q, want %q", decoded["releaseType"], "beta")
	}

	file, err := r.NextPart()
	if err != nil {
		t.Fatalf("reading file part: %v", err)
	}
	if file.FileName() != "spark-1.2.3-forge.jar" {
		t.Errorf("FileName() = %q, want %q", file.FileName(), "spark-1.2.3-forge.jar")
	}
	if ct := file.Header.Get("Content-Type"); ct != JarContentType {
		t.Errorf("Content-Type = %q, want %q", ct, JarContentType)
	}
	data, _ := io.ReadAll(file)
	if string(data) != string(content) {
		t.Errorf("file bytes = %v, want %v", data, content)
	}
}

func TestNewFormMissingFile(t *testing.T) {
	_, err := NewForm("data", struct{}{}, filepath.Join(t.TempDir(), "nope.jar"), "nope.jar")
	if err == nil {
		t.Fatal("expected error for missing artifact")
	}
}

func TestPostDecodesSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("X-Api-Token") != "secret" {
			t.Errorf("missing auth header")
		}
		if r.Header.Get("Accept") != "application/json" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Write([]byte(`{"id": 4242}`))
	}))
	defer server.Close()

	form, err := NewForm("metadata", struct{}{}, writeJar(t, "a.jar", []byte("x")), "a.jar")
	if err != nil {
		t.Fatal(err)
	}

	var out struct {
		ID int `json:"id"`
	}
	err = Post(context.Background(), server.Client(), "curseforge", server.URL, form, http.Header{"X-Api-Token": {"secret"}}, &out)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if out.ID != 4242 {
		t.Errorf("ID = %d, want 4242", out.ID)
	}
}

func TestPostCapturesFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Ratelimit-Reset", "30")
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"ratelimited"}`))
	}))
	defer server.Close()

	form, err := NewForm("data", struct{}{}, writeJar(t, "a.jar", []byte("x")), "a.jar")
	if err != nil {
		t.Fatal(err)
	}

	err = Post(context.Background(), server.Client(), "modrinth", server.URL, form, nil, nil)
	var pubErr *errdefs.PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected *PublishError, got %v", err)
	}
	if pubErr.Status != http.StatusTooManyRequests {
		t.Errorf("Status = %d, want %d", pubErr.Status, http.StatusTooManyRequests)
	}
	if pubErr.Body != `{"error":"ratelimited"}` {
		t.Errorf("Body = %q", pubErr.Body)
	}
	if pubErr.Header.Get("X-Ratelimit-Reset") != "30" {
		t.Errorf("headers not captured: %v", pubErr.Header)
	}
}

func TestPostNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	client := server.Client()
	server.Close()

	form, err := NewForm("data", struct{}{}, writeJar(t, "a.jar", []byte("x")), "a.jar")
	if err != nil {
		t.Fatal(err)
	}

	err = Post(context.Background(), client, "modrinth", url, form, nil, nil)
	var pubErr *errdefs.PublishError
	if !errors.As(err, &pubErr) {
		t.Fatalf("expected *PublishError, got %v", err)
	}
	if pubErr.Status != 0 {
		t.Errorf("Status = %d, want 0 for network failure", pubErr.Status)
	}
}
