package version

import (
	"runtime/debug"
	"testing"
)

func TestString(t *testing.T) {
	// Save original values
	origTag := tag
	origCommit := commit
	origBuildTime := buildTime
	origBuildInfoReader := buildInfoReader

	// Restore original values after the test
	defer func() {
		tag = origTag
		commit = origCommit
		buildTime = origBuildTime
		buildInfoReader = origBuildInfoReader
	}()

	t.Run("with preset values", func(t *testing.T) {
		// Set known values for testing
		tag = "v1.0.0"
		commit = "abc123"
		buildTime = "2026-08-01"

		// Mock the buildInfoReader to return false so that preset values are used
		buildInfoReader = func() (*debug.BuildInfo, bool) {
			return nil, false
		}

		result := String()

		expected := "v1.0.0 (abc123) built at 2026-08-01\nhttps://github.com/foodlens-app/nutrition-mcp-server/releases/tag/v1.0.0"
		if result != expected {
			t.Errorf("Expected version string to be:\n%q\nbut got:\n%q", expected, result)
		}
	})

	t.Run("with mock build info", func(t *testing.T) {
		// Set sentinel values so VCS info will override
		tag = "dev"
		commit = "123abc"
		buildTime = "now"

		mockSettings := []debug.BuildSetting{
			{Key: "vcs.revision", Value: "mock-commit-hash"},
			{Key: "vcs.time", Value: "mock-build-time"},
			{Key: "other.key", Value: "other-value"},
		}

		buildInfoReader = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Settings: mockSettings,
			}, true
		}

		result := String()

		expected := "dev (mock-commit-hash) built at mock-build-time\nhttps://github.com/foodlens-app/nutrition-mcp-server/releases/tag/dev"
		if result != expected {
			t.Errorf("Expected version string to be:\n%q\nbut got:\n%q", expected, result)
		}
	})

	t.Run("with empty build info settings", func(t *testing.T) {
		tag = "dev"
		commit = "unchanged-commit"
		buildTime = "unchanged-date"

		buildInfoReader = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Settings: []debug.BuildSetting{},
			}, true
		}

		result := String()

		// The values should remain unchanged
		expected := "dev (unchanged-commit) built at unchanged-date\nhttps://github.com/foodlens-app/nutrition-mcp-server/releases/tag/dev"
		if result != expected {
			t.Errorf("Expected version string to be:\n%q\nbut got:\n%q", expected, result)
		}
	})

	t.Run("ldflags precedence over vcs", func(t *testing.T) {
		// Non-sentinel values simulate ldflags having been set
		tag = "v2.0.0"
		commit = "ldflags-commit"
		buildTime = "ldflags-time"

		mockSettings := []debug.BuildSetting{
			{Key: "vcs.revision", Value: "vcs-commit-hash"},
			{Key: "vcs.time", Value: "vcs-build-time"},
		}

		buildInfoReader = func() (*debug.BuildInfo, bool) {
			return &debug.BuildInfo{
				Settings: mockSettings,
			}, true
		}

		result := String()

		expected := "v2.0.0 (ldflags-commit) built at ldflags-time\nhttps://github.com/foodlens-app/nutrition-mcp-server/releases/tag/v2.0.0"
		if result != expected {
			t.Errorf("Expected version string to be:\n%q\nbut got:\n%q", expected, result)
		}
	})
}
