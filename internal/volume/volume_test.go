package volume

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pricingdesk/internal/config"
	"pricingdesk/internal/logging"
)

const prefix = "/Volumes/insurance/fa_pricing/product_brochures"

func TestPutAndDeleteLocalMount(t *testing.T) {
	mount := t.TempDir()
	m := NewManager(
		config.VolumeConfig{Path: prefix, LocalMount: mount},
		config.WarehouseConfig{},
		logging.Nop(),
	)

	blobPath, err := m.Put(context.Background(), "brochure.pdf", []byte("first"))
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if blobPath != prefix+"/brochure.pdf" {
		t.Errorf("blob path = %q", blobPath)
	}

	// overwrite with new content
	if _, err := m.Put(context.Background(), "brochure.pdf", []byte("second")); err != nil {
		t.Fatalf("overwrite Put: %v", err)
	}
	got, err := os.ReadFile(filepath.Join(mount, "brochure.pdf"))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("content = %q, want second", got)
	}

	ok, err := m.Delete(context.Background(), "brochure.pdf")
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	// a missing blob is not-found, not an error
	ok, err = m.Delete(context.Background(), "brochure.pdf")
	if err != nil {
		t.Fatalf("repeat Delete: %v", err)
	}
	if ok {
		t.Error("Delete of a missing blob = true, want false")
	}
}

func TestDeleteMissingLocalBlob(t *testing.T) {
	m := NewManager(
		config.VolumeConfig{Path: prefix, LocalMount: t.TempDir()},
		config.WarehouseConfig{},
		logging.Nop(),
	)
	ok, err := m.Delete(context.Background(), "never-uploaded.pdf")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if ok {
		t.Error("Delete of a missing blob = true, want false")
	}
}

func TestPutStripsDirectoryComponents(t *testing.T) {
	mount := t.TempDir()
	m := NewManager(
		config.VolumeConfig{Path: prefix, LocalMount: mount},
		config.WarehouseConfig{},
		logging.Nop(),
	)
	if _, err := m.Put(context.Background(), "../../etc/passwd.pdf", []byte("x")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if _, err := os.Stat(filepath.Join(mount, "passwd.pdf")); err != nil {
		t.Errorf("expected flattened filename in mount: %v", err)
	}
}

func TestPutFilesAPI(t *testing.T) {
	var gotPath, gotAuth, gotQuery string
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := NewManager(
		config.VolumeConfig{Path: prefix, RemoteBase: srv.URL},
		config.WarehouseConfig{Token: "tok-123"},
		logging.Nop(),
	)
	if _, err := m.Put(context.Background(), "brochure.pdf", []byte("pdf-bytes")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasSuffix(gotPath, "/brochure.pdf") {
		t.Errorf("request path = %q", gotPath)
	}
	if gotQuery != "overwrite=true" {
		t.Errorf("query = %q, want overwrite=true", gotQuery)
	}
	if gotAuth != "Bearer tok-123" {
		t.Errorf("authorization = %q", gotAuth)
	}
	if string(gotBody) != "pdf-bytes" {
		t.Errorf("body = %q", gotBody)
	}
}

func TestPutFilesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "PERMISSION_DENIED", http.StatusForbidden)
	}))
	defer srv.Close()

	m := NewManager(
		config.VolumeConfig{Path: prefix, RemoteBase: srv.URL},
		config.WarehouseConfig{Token: "tok"},
		logging.Nop(),
	)
	if _, err := m.Put(context.Background(), "brochure.pdf", []byte("x")); err == nil {
		t.Fatal("expected error from 403 response")
	}
}

func TestDeleteFilesAPI(t *testing.T) {
	var gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewManager(
		config.VolumeConfig{Path: prefix, RemoteBase: srv.URL},
		config.WarehouseConfig{Token: "tok"},
		logging.Nop(),
	)
	ok, err := m.Delete(context.Background(), "brochure.pdf")
	if err != nil || !ok {
		t.Fatalf("Delete: ok=%v err=%v", ok, err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q", gotMethod)
	}
}

func TestDeleteFilesAPIMissingBlob(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "RESOURCE_DOES_NOT_EXIST", http.StatusNotFound)
	}))
	defer srv.Close()

	m := NewManager(
		config.VolumeConfig{Path: prefix, RemoteBase: srv.URL},
		config.WarehouseConfig{Token: "tok"},
		logging.Nop(),
	)
	ok, err := m.Delete(context.Background(), "ghost.pdf")
	if err != nil {
		t.Fatalf("Delete: 404 must not be an error, got %v", err)
	}
	if ok {
		t.Error("Delete of a missing blob = true, want false")
	}
}

func TestDeleteFilesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "PERMISSION_DENIED", http.StatusForbidden)
	}))
	defer srv.Close()

	m := NewManager(
		config.VolumeConfig{Path: prefix, RemoteBase: srv.URL},
		config.WarehouseConfig{Token: "tok"},
		logging.Nop(),
	)
	if _, err := m.Delete(context.Background(), "brochure.pdf"); err == nil {
		t.Fatal("expected error from 403 response")
	}
}

func TestNoTransport(t *testing.T) {
	m := NewManager(config.VolumeConfig{Path: prefix}, config.WarehouseConfig{}, logging.Nop())
	if _, err := m.Put(context.Background(), "brochure.pdf", []byte("x")); !errors.Is(err, ErrNoTransport) {
		t.Errorf("Put err = %v, want ErrNoTransport", err)
	}
	if _, err := m.Delete(context.Background(), "brochure.pdf"); !errors.Is(err, ErrNoTransport) {
		t.Errorf("Delete err = %v, want ErrNoTransport", err)
	}
}
