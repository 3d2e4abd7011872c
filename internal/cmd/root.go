package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/foodlens-app/nutrition-mcp-server/internal/auth"
	"github.com/foodlens-app/nutrition-mcp-server/internal/config"
	"github.com/foodlens-app/nutrition-mcp-server/internal/dataset"
	"github.com/foodlens-app/nutrition-mcp-server/internal/mcpgo"
	"github.com/foodlens-app/nutrition-mcp-server/internal/off"
	"github.com/foodlens-app/nutrition-mcp-server/internal/scan"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nutrition-mcp-server",
	Short: "Nutrition intelligence MCP server",
	Long: `Nutrition MCP Server turns unreliable raw scan signals into structured,
confidence-scored nutrition records: OCR text from a label photo becomes a
nutrition draft, a barcode becomes a scored product record with healthier
alternatives.

The server operates in three modes:

1. STDIO Mode (--stdio): For local MCP client integration
   - Uses stdio pipes for communication
   - No authentication required

2. HTTP Mode (default): For remote deployment over the internet
   - Exposes the /mcp endpoint with JSON-RPC 2.0
   - Requires Bearer token authentication (except /health)

3. Fetch Database Mode (--fetch-db): Download dataset and exit
   - Downloads/updates the Open Food Facts parquet dump used by the
     LOOKUP_BACKEND=parquet offline backend
   - Exits after download completion (does not start the server)

Available MCP Tools:
- scan_barcode: nutrition record, health score, additives and alternatives
- analyze_nutrition_label: confidence-scored draft from raw OCR text
- find_alternatives: healthier alternatives for a known barcode

Authentication (HTTP Mode Only):
Bearer token authentication is required for all MCP endpoints except /health.
Use the AUTH_TOKEN environment variable to set the token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fetchDB, _ := cmd.Flags().GetBool("fetch-db")
		if fetchDB {
			return runFetchDBMode(cmd, args)
		}

		stdio, _ := cmd.Flags().GetBool("stdio")
		if stdio {
			return runStdioMode(cmd, args)
		}
		return runHTTPMode(cmd, args)
	},
}

func init() {
	rootCmd.Flags().Bool("stdio", false, "Run in stdio mode for local MCP client integration (default: HTTP mode for remote deployment)")
	rootCmd.Flags().Bool("fetch-db", false, "Fetch the offline dataset and exit (useful for pre-populating the parquet cache)")
}

// runFetchDBMode fetches the offline dataset and exits
func runFetchDBMode(cmd *cobra.Command, args []string) error {
	logger := config.NewTextLogger(os.Stdout)
	cfg := config.Load()

	logger.Info("Starting dataset fetch",
		"mode", "fetch-db",
		"parquet_path", cfg.ParquetPath)

	logger.Info("Large dataset warning",
		"message", "The Open Food Facts dump is several GB in size",
		"note", "Initial download may take a while depending on your connection")

	dataManager := dataset.NewManager(cfg, logger)

	ctx := context.Background()
	if err := dataManager.EnsureDataset(ctx); err != nil {
		logger.Error("Failed to fetch dataset", "error", err)
		return err
	}

	logger.Info("Dataset fetch completed",
		"parquet_path", cfg.ParquetPath,
		"metadata_path", cfg.MetadataPath)
	return nil
}

// runStdioMode runs the MCP server in stdio mode
func runStdioMode(cmd *cobra.Command, args []string) error {
	// Logs go to stderr so stdio MCP traffic on stdout stays clean
	logger := config.NewLogger(true)
	cfg := config.Load()

	logger.Info("Starting Nutrition MCP Server in STDIO mode",
		"mode", "stdio",
		"auth", "not required for stdio mode",
		"lookup_backend", cfg.LookupBackend)

	srv, cleanup, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return srv.ServeStdio()
}

// runHTTPMode runs the MCP server in HTTP mode for remote deployment
func runHTTPMode(cmd *cobra.Command, args []string) error {
	logger := config.NewLogger(false)
	cfg := config.Load()

	logger.Info("Starting Nutrition MCP Server in HTTP mode",
		"mode", "http",
		"auth", "Bearer token required (except /health endpoint)",
		"lookup_backend", cfg.LookupBackend,
		"port", cfg.Port)

	srv, cleanup, err := buildServer(cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return srv.ServeHTTP(":" + cfg.Port)
}

// buildServer wires the lookup backend, pipeline and MCP server. The
// returned cleanup closes the backend.
func buildServer(cfg *config.Config, logger *slog.Logger) (*mcpgo.Server, func(), error) {
	// Parquet backend needs the dump present before queries can run
	if cfg.LookupBackend == config.BackendParquet {
		dataManager := dataset.NewManager(cfg, logger)
		if err := dataManager.EnsureDataset(context.Background()); err != nil {
			logger.Error("Failed to ensure dataset", "error", err)
			return nil, nil, err
		}
	}

	backend, err := off.NewBackend(cfg, logger)
	if err != nil {
		logger.Error("Failed to create lookup backend", "error", err)
		return nil, nil, err
	}

	pipeline := scan.NewPipeline(backend, logger)
	authenticator := auth.NewBearerTokenAuth(cfg.AuthToken)
	srv := mcpgo.NewServer(pipeline, backend, authenticator, logger)

	return srv, func() { backend.Close() }, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

// Run is the main entry point for the CLI application
func Run() error {
	return Execute()
}
