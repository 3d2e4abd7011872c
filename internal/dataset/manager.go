package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
)

// Metadata holds information about the downloaded dataset
type Metadata struct {
	SHA256       string    `json:"sha256"`
	DownloadedAt time.Time `json:"downloaded_at"`
	ETag         string    `json:"etag,omitempty"`
	Size         int64     `json:"size"`
}

// Manager keeps the local Open Food Facts parquet dump present and
// fresh for the parquet lookup backend.
type Manager struct {
	parquetURL   string
	parquetPath  string
	metadataPath string
	lockPath     string
	config       *config.Config
	log          *slog.Logger
}

// NewManager creates a new dataset manager
func NewManager(cfg *config.Config, logger *slog.Logger) *Manager {
	return &Manager{
		parquetURL:   cfg.ParquetURL,
		parquetPath:  cfg.ParquetPath,
		metadataPath: cfg.MetadataPath,
		lockPath:     cfg.LockFile,
		config:       cfg,
		log:          logger,
	}
}

// EnsureDataset makes sure the dump exists locally, downloading or
// refreshing it when the remote has moved on.
func (m *Manager) EnsureDataset(ctx context.Context) error {
	start := time.Now()
	m.log.Info("Ensuring dataset is available", "parquet_path", m.parquetPath)

	if _, err := os.Stat(m.parquetPath); err == nil {
		if m.config.DisableRemoteCheck {
			m.log.Info("Remote checks disabled, using local dataset", "duration", time.Since(start))
			return nil
		}

		upToDate, err := m.isUpToDate(ctx)
		if err != nil {
			m.log.Warn("Failed to verify dataset freshness", "error", err)
		}
		if upToDate {
			m.log.Info("Dataset is up-to-date", "duration", time.Since(start))
			return nil
		}
	}

	if err := m.downloadWithLock(ctx); err != nil {
		return fmt.Errorf("failed to download dataset: %w", err)
	}

	m.log.Info("Dataset ensured", "duration", time.Since(start))
	return nil
}

// isUpToDate compares the stored ETag against the remote one
func (m *Manager) isUpToDate(ctx context.Context) (bool, error) {
	local, err := m.loadMetadata()
	if err != nil {
		m.log.Debug("No local metadata found", "error", err)
		return false, nil
	}
	if local.ETag == "" {
		return false, nil
	}

	// Only refresh once the configured interval has elapsed; a HEAD per
	// startup would hammer the dataset host.
	if time.Since(local.DownloadedAt) < m.config.RefreshInterval() {
		return true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.parquetURL, nil)
	if err != nil {
		return false, fmt.Errorf("build head request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("head request: %w", err)
	}
	defer resp.Body.Close()

	remoteETag := resp.Header.Get("ETag")
	if remoteETag == "" {
		return false, nil
	}
	return remoteETag == local.ETag, nil
}

// downloadWithLock downloads the dataset while holding an exclusive
// lock file so concurrent starts do not clobber each other.
func (m *Manager) downloadWithLock(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(m.parquetPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	lock, err := os.OpenFile(m.lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("acquire refresh lock: %w", err)
	}
	defer func() {
		lock.Close()
		os.Remove(m.lockPath)
	}()

	return m.download(ctx)
}

// download streams the dump to a temp file, hashing as it copies, then
// renames it into place and records metadata.
func (m *Manager) download(ctx context.Context) error {
	start := time.Now()
	m.log.Info("Downloading dataset", "url", m.parquetURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.parquetURL, nil)
	if err != nil {
		return fmt.Errorf("build download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download: unexpected status %d", resp.StatusCode)
	}

	tmpPath := m.parquetPath + ".tmp"
	tmp, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmpPath)

	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}

	if err := os.Rename(tmpPath, m.parquetPath); err != nil {
		return fmt.Errorf("move dataset into place: %w", err)
	}

	meta := Metadata{
		SHA256:       hex.EncodeToString(hasher.Sum(nil)),
		DownloadedAt: time.Now().UTC(),
		ETag:         resp.Header.Get("ETag"),
		Size:         size,
	}
	if err := m.saveMetadata(meta); err != nil {
		m.log.Warn("Failed to save dataset metadata", "error", err)
	}

	m.log.Info("Dataset downloaded",
		"size", size,
		"sha256", meta.SHA256,
		"duration", time.Since(start))
	return nil
}

func (m *Manager) loadMetadata() (*Metadata, error) {
	data, err := os.ReadFile(m.metadataPath)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &meta, nil
}

func (m *Manager) saveMetadata(meta Metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	return os.WriteFile(m.metadataPath, data, 0o644)
}
