package dataset

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
)

// testConfig builds a config whose dataset paths all live under dir
func testConfig(dir, url string) *config.Config {
	return &config.Config{
		ParquetURL:           url,
		DataDir:              dir,
		ParquetPath:          filepath.Join(dir, "food.parquet"),
		MetadataPath:         filepath.Join(dir, "metadata.json"),
		LockFile:             filepath.Join(dir, "refresh.lock"),
		RefreshIntervalHours: 24,
	}
}

func writeMetadata(t *testing.T, dir string, meta Metadata) {
	t.Helper()
	data, err := json.Marshal(meta)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "metadata.json"), data, 0o644))
}

func TestManager_EnsureDataset(t *testing.T) {
	tests := []struct {
		name               string
		setupFiles         func(t *testing.T, dir string)
		handler            func(t *testing.T) http.HandlerFunc
		disableRemoteCheck bool
		expectedContent    string
	}{
		{
			name:       "file does not exist - should download",
			setupFiles: func(t *testing.T, dir string) {},
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("ETag", "test-etag")
					w.WriteHeader(http.StatusOK)
					w.Write([]byte("test parquet data"))
				}
			},
			expectedContent: "test parquet data",
		},
		{
			name: "file exists and metadata is fresh - should skip without network",
			setupFiles: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "food.parquet"), []byte("local data"), 0o644))
				writeMetadata(t, dir, Metadata{
					ETag:         "test-etag",
					Size:         10,
					SHA256:       "test-sha",
					DownloadedAt: time.Now().UTC(),
				})
			},
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					t.Error("Server should not be called while metadata is fresh")
				}
			},
			expectedContent: "local data",
		},
		{
			name: "file exists but remote has moved on - should download",
			setupFiles: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "food.parquet"), []byte("old data"), 0o644))
				writeMetadata(t, dir, Metadata{
					ETag:         "old-etag",
					Size:         8,
					SHA256:       "old-sha",
					DownloadedAt: time.Now().UTC().Add(-48 * time.Hour),
				})
			},
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					w.Header().Set("ETag", "new-etag")
					w.WriteHeader(http.StatusOK)
					if r.Method == http.MethodGet {
						w.Write([]byte("new parquet data"))
					}
				}
			},
			expectedContent: "new parquet data",
		},
		{
			name: "file exists with remote checks disabled - should skip",
			setupFiles: func(t *testing.T, dir string) {
				require.NoError(t, os.WriteFile(filepath.Join(dir, "food.parquet"), []byte("local data"), 0o644))
			},
			handler: func(t *testing.T) http.HandlerFunc {
				return func(w http.ResponseWriter, r *http.Request) {
					t.Error("Server should not be called when remote checks are disabled")
				}
			},
			disableRemoteCheck: true,
			expectedContent:    "local data",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			tt.setupFiles(t, tmpDir)

			server := httptest.NewServer(tt.handler(t))
			defer server.Close()

			cfg := testConfig(tmpDir, server.URL)
			cfg.DisableRemoteCheck = tt.disableRemoteCheck

			manager := NewManager(cfg, config.NewTestLogger(io.Discard, "debug"))

			err := manager.EnsureDataset(context.Background())
			require.NoError(t, err)

			content, err := os.ReadFile(cfg.ParquetPath)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedContent, string(content))
		})
	}
}

func TestManager_DownloadWithLock(t *testing.T) {
	tmpDir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test parquet data"))
	}))
	defer server.Close()

	cfg := testConfig(tmpDir, server.URL)
	manager := NewManager(cfg, config.NewTestLogger(io.Discard, "debug"))

	// Simulate another instance holding the lock
	lockFile, err := os.Create(cfg.LockFile)
	require.NoError(t, err)
	lockFile.Close()

	err = manager.downloadWithLock(context.Background())
	assert.Error(t, err)

	// Releasing the lock lets the download proceed
	require.NoError(t, os.Remove(cfg.LockFile))

	err = manager.downloadWithLock(context.Background())
	require.NoError(t, err)

	content, err := os.ReadFile(cfg.ParquetPath)
	require.NoError(t, err)
	assert.Equal(t, "test parquet data", string(content))

	// Lock file is removed after the download completes
	_, err = os.Stat(cfg.LockFile)
	assert.True(t, os.IsNotExist(err))
}

func TestManager_DownloadRecordsMetadata(t *testing.T) {
	tmpDir := t.TempDir()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("ETag", "download-etag")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("hello world"))
	}))
	defer server.Close()

	cfg := testConfig(tmpDir, server.URL)
	manager := NewManager(cfg, config.NewTestLogger(io.Discard, "debug"))

	require.NoError(t, manager.downloadWithLock(context.Background()))

	meta, err := manager.loadMetadata()
	require.NoError(t, err)

	// SHA256 of "hello world"
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", meta.SHA256)
	assert.Equal(t, "download-etag", meta.ETag)
	assert.Equal(t, int64(11), meta.Size)
	assert.False(t, meta.DownloadedAt.IsZero())
}

func TestMetadata_SaveLoad(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := testConfig(tmpDir, "https://example.com")
	manager := NewManager(cfg, config.NewTestLogger(io.Discard, "debug"))

	original := Metadata{
		SHA256:       "test-sha256",
		DownloadedAt: time.Now().UTC().Truncate(time.Second),
		ETag:         "test-etag",
		Size:         12345,
	}

	require.NoError(t, manager.saveMetadata(original))

	loaded, err := manager.loadMetadata()
	require.NoError(t, err)

	assert.Equal(t, original.SHA256, loaded.SHA256)
	assert.Equal(t, original.ETag, loaded.ETag)
	assert.Equal(t, original.Size, loaded.Size)
	assert.True(t, original.DownloadedAt.Equal(loaded.DownloadedAt))
}
