package output

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/guiyumin/vsum/internal/core/config"
	"github.com/guiyumin/vsum/internal/core/webdav"
)

// Writer stores files on local disk or on a WebDAV server, depending on the
// form of the target.
type Writer struct {
	cfg *config.Config
}

// NewWriter returns a Writer that resolves named WebDAV remotes from cfg.
func NewWriter(cfg *config.Config) *Writer {
	return &Writer{cfg: cfg}
}

// IsRemote reports whether target is a WebDAV URL or a configured remote.
func (w *Writer) IsRemote(target string) bool {
	_, _, ok, _ := webdav.Resolve(w.cfg, target)
	return ok
}

// Join appends a slash-separated relative path to dir.
func (w *Writer) Join(dir, rel string) string {
	if w.IsRemote(dir) {
		return strings.TrimRight(dir, "/") + "/" + rel
	}
	return filepath.Join(dir, filepath.FromSlash(rel))
}

// Write stores content at target and returns where it went: a local path or
// a remote URL.
func (w *Writer) Write(ctx context.Context, target string, content []byte) (string, error) {
	client, remotePath, ok, err := webdav.Resolve(w.cfg, target)
	if err != nil {
		return "", err
	}
	if ok {
		if err := client.Upload(ctx, remotePath, content); err != nil {
			return "", err
		}
		return client.URL(remotePath), nil
	}

	if dir := filepath.Dir(target); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(target, content, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", target, err)
	}
	return target, nil
}
