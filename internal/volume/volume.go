package volume

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"pricingdesk/internal/config"
)

// Store uploads and deletes named byte blobs under the brochure volume
// prefix.
type Store interface {
	Put(ctx context.Context, name string, content []byte) (string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// ErrNoTransport is returned when neither transport strategy is usable.
var ErrNoTransport = errors.New(
	"volume storage not available: configure volume.local_mount to a writable directory, " +
		"or warehouse.host and warehouse.token for the Files API")

// Manager writes blobs either through a writable local mount of the volume
// (scratch file then copy) or through the remote Files API. The strategy
// is probed once at construction; a failing local write still falls
// through to the remote API per call.
type Manager struct {
	prefix string
	mount  string
	api    *filesAPI
	log    *zap.SugaredLogger
}

type filesAPI struct {
	base   string
	token  string
	client *http.Client
}

// NewManager probes the environment and fixes the transport strategies.
func NewManager(cfg config.VolumeConfig, wh config.WarehouseConfig, log *zap.SugaredLogger) *Manager {
	m := &Manager{prefix: cfg.Path, log: log}

	if cfg.LocalMount != "" {
		if info, err := os.Stat(cfg.LocalMount); err == nil && info.IsDir() {
			m.mount = cfg.LocalMount
			log.Infow("volume local mount detected", "mount", cfg.LocalMount)
		} else {
			log.Warnw("volume local mount not usable", "mount", cfg.LocalMount, "error", err)
		}
	}

	base := cfg.RemoteBase
	if base == "" && wh.Host != "" {
		base = "https://" + wh.Host + "/api/2.0/fs/files"
	}
	if base != "" && wh.Token != "" {
		m.api = &filesAPI{
			base:   base,
			token:  wh.Token,
			client: &http.Client{Timeout: 60 * time.Second},
		}
	}
	return m
}

// Put stores content under the volume prefix and returns the blob path.
// An existing blob with the same name is overwritten.
func (m *Manager) Put(ctx context.Context, name string, content []byte) (string, error) {
	name = filepath.Base(name)
	blobPath := path.Join(m.prefix, name)

	if m.mount != "" {
		if err := m.putLocal(name, content); err == nil {
			return blobPath, nil
		} else {
			m.log.Warnw("local volume write failed, falling back to Files API", "file", name, "error", err)
		}
	}
	if m.api != nil {
		if err := m.api.put(ctx, blobPath, content); err != nil {
			return "", fmt.Errorf("upload %s: %w", name, err)
		}
		return blobPath, nil
	}
	return "", ErrNoTransport
}

func (m *Manager) putLocal(name string, content []byte) error {
	tmp, err := os.CreateTemp("", "brochure-*"+filepath.Ext(name))
	if err != nil {
		return fmt.Errorf("create scratch file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write scratch file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close scratch file: %w", err)
	}

	dest := filepath.Join(m.mount, name)
	src, err := os.Open(tmpPath)
	if err != nil {
		return fmt.Errorf("reopen scratch file: %w", err)
	}
	defer src.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("copy into volume: %w", err)
	}
	return out.Close()
}

// Delete removes the named blob. A blob that does not exist returns
// (false, nil) on both transports; errors are reserved for transport
// failures.
func (m *Manager) Delete(ctx context.Context, name string) (bool, error) {
	name = filepath.Base(name)

	if m.mount != "" {
		err := os.Remove(filepath.Join(m.mount, name))
		if err == nil {
			return true, nil
		}
		if os.IsNotExist(err) {
			return false, nil
		}
		m.log.Warnw("local volume delete failed", "file", name, "error", err)
	}
	if m.api != nil {
		removed, err := m.api.delete(ctx, path.Join(m.prefix, name))
		if err != nil {
			return false, fmt.Errorf("delete %s: %w", name, err)
		}
		return removed, nil
	}
	if m.mount != "" {
		return false, nil
	}
	return false, ErrNoTransport
}

func (a *filesAPI) put(ctx context.Context, blobPath string, content []byte) error {
	u := a.base + escapePath(blobPath) + "?overwrite=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(content))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	req.Header.Set("Content-Type", "application/octet-stream")
	return a.do(req)
}

// delete reports whether the blob was removed: a 404 means it was
// already absent, which is not an error.
func (a *filesAPI) delete(ctx context.Context, blobPath string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, a.base+escapePath(blobPath), nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Authorization", "Bearer "+a.token)
	resp, err := a.client.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return false, fmt.Errorf("files api DELETE %s: %s: %s", req.URL.Path, resp.Status, body)
	}
	io.Copy(io.Discard, resp.Body)
	return true, nil
}

func (a *filesAPI) do(req *http.Request) error {
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("files api %s %s: %s: %s", req.Method, req.URL.Path, resp.Status, body)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func escapePath(p string) string {
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, url.PathEscape(seg))
		}
	}
	return "/" + path.Join(segments...)
}
