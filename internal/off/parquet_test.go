package off

import (
	"context"
	"database/sql"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
)

func TestNewParquetEngine(t *testing.T) {
	logger := config.NewTestLogger(io.Discard, "debug")

	// The connection opens lazily, so a missing file is not an error yet
	engine, err := NewParquetEngine("/nonexistent/path.parquet", logger)
	assert.NoError(t, err)
	assert.NotNil(t, engine)

	defer engine.Close()
}

func TestParquetEngine_HealthCheck_WithInvalidFile(t *testing.T) {
	logger := config.NewTestLogger(io.Discard, "debug")

	engine, err := NewParquetEngine("/nonexistent/file.parquet", logger)
	assert.NoError(t, err)
	defer engine.Close()

	err = engine.HealthCheck(context.Background())
	assert.Error(t, err, "Should fail with nonexistent file")
}

func TestDecodeTagList(t *testing.T) {
	logger := config.NewTestLogger(io.Discard, "debug")

	tests := []struct {
		name     string
		col      sql.NullString
		expected []string
	}{
		{
			name:     "valid json array",
			col:      sql.NullString{String: `["en:e322-lecithins","en:e476"]`, Valid: true},
			expected: []string{"en:e322-lecithins", "en:e476"},
		},
		{
			name:     "null column",
			col:      sql.NullString{},
			expected: nil,
		},
		{
			name:     "empty string",
			col:      sql.NullString{String: "", Valid: true},
			expected: nil,
		},
		{
			name:     "malformed json degrades to nil",
			col:      sql.NullString{String: `["unterminated`, Valid: true},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, decodeTagList(tt.col, logger, "additives_tags", "123"))
		})
	}
}

// Integration tests require a real parquet dump on disk
func TestParquetEngine_ProductByBarcode_Integration(t *testing.T) {
	t.Skip("Integration test - requires actual parquet file")
}

func TestParquetEngine_SearchByCategory_Integration(t *testing.T) {
	t.Skip("Integration test - requires actual parquet file")
}
