package off

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/marcboeker/go-duckdb/v2"
)

// parquetColumns is the shared projection for both lookup and search
// queries against the Open Food Facts parquet dump.
const parquetColumns = `code, product_name, brands, nutriments, nutriscore_grade, nova_group, additives_tags, categories_tags, ecoscore_grade, image_url`

// ParquetEngine answers lookups from a local Open Food Facts parquet
// dump through DuckDB. It implements the same Backend surface as the
// live API client so the pipeline cannot tell them apart.
type ParquetEngine struct {
	db          *sql.DB
	parquetPath string
	log         *slog.Logger
}

// Ensure ParquetEngine implements the Backend interface
var _ Backend = (*ParquetEngine)(nil)

// NewParquetEngine creates a new DuckDB-backed engine over the dump
func NewParquetEngine(parquetPath string, logger *slog.Logger) (*ParquetEngine, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	return &ParquetEngine{
		db:          db,
		parquetPath: parquetPath,
		log:         logger,
	}, nil
}

// Close closes the database connection
func (e *ParquetEngine) Close() error {
	return e.db.Close()
}

// ProductByBarcode looks up a product by exact barcode match.
// Returns (nil, nil) when the barcode is not in the dump.
func (e *ParquetEngine) ProductByBarcode(ctx context.Context, barcode string) (*Product, error) {
	start := time.Now()
	e.log.Debug("ProductByBarcode starting", "barcode", barcode, "backend", "parquet")

	query := fmt.Sprintf(`
		SELECT %s
		FROM read_parquet(?)
		WHERE code = ?
		LIMIT 1`, parquetColumns)

	rows, err := e.db.QueryContext(ctx, query, e.parquetPath, barcode)
	if err != nil {
		e.log.Error("DuckDB barcode query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("barcode query failed: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("rows error: %w", err)
		}
		e.log.Debug("No product found for barcode", "barcode", barcode, "duration", time.Since(start))
		return nil, nil
	}

	p, err := e.scanProduct(rows)
	if err != nil {
		return nil, err
	}

	e.log.Info("ProductByBarcode completed", "found", true, "backend", "parquet", "duration", time.Since(start))
	return p, nil
}

// SearchByCategory finds products whose category tags contain the given
// category, best nutrition grade first.
func (e *ParquetEngine) SearchByCategory(ctx context.Context, category string, limit int) ([]Product, error) {
	start := time.Now()
	e.log.Debug("SearchByCategory starting", "category", category, "limit", limit, "backend", "parquet")

	query := fmt.Sprintf(`
		SELECT %s
		FROM read_parquet(?)
		WHERE categories_tags ILIKE ?
		ORDER BY nutriscore_grade ASC NULLS LAST
		LIMIT ?`, parquetColumns)

	rows, err := e.db.QueryContext(ctx, query, e.parquetPath, fmt.Sprintf("%%%s%%", category), limit)
	if err != nil {
		e.log.Error("DuckDB category query failed", "error", err, "duration", time.Since(start))
		return nil, fmt.Errorf("category query failed: %w", err)
	}
	defer rows.Close()

	var results []Product
	for rows.Next() {
		p, err := e.scanProduct(rows)
		if err != nil {
			e.log.Error("Row scan failed", "error", err)
			continue
		}
		results = append(results, *p)
	}

	if err := rows.Err(); err != nil {
		e.log.Error("Rows iteration failed", "error", err)
		return nil, fmt.Errorf("rows error: %w", err)
	}

	e.log.Info("SearchByCategory completed", "count", len(results), "backend", "parquet", "duration", time.Since(start))
	return results, nil
}

// scanProduct decodes one result row into a Product payload. The dump
// stores nutriments and tag lists as JSON strings.
func (e *ParquetEngine) scanProduct(rows *sql.Rows) (*Product, error) {
	var code, productName, brands, nutriments, grade, additivesTags, categoriesTags, ecoScore, imageURL sql.NullString
	var novaGroup sql.NullInt64

	if err := rows.Scan(&code, &productName, &brands, &nutriments, &grade, &novaGroup, &additivesTags, &categoriesTags, &ecoScore, &imageURL); err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	p := &Product{
		Code:            code.String,
		ProductName:     productName.String,
		Brands:          brands.String,
		NutritionGrades: grade.String,
		EcoScoreGrade:   ecoScore.String,
		ImageFrontURL:   imageURL.String,
		Nutriments:      make(map[string]any),
	}
	if novaGroup.Valid {
		p.NovaGroup = int(novaGroup.Int64)
	}

	if nutriments.Valid && nutriments.String != "" {
		var m map[string]any
		if err := json.Unmarshal([]byte(nutriments.String), &m); err != nil {
			e.log.Debug("Failed to parse nutriments JSON", "error", err, "code", p.Code)
		} else {
			p.Nutriments = m
		}
	}

	p.AdditivesTags = decodeTagList(additivesTags, e.log, "additives_tags", p.Code)
	p.CategoriesTags = decodeTagList(categoriesTags, e.log, "categories_tags", p.Code)

	return p, nil
}

// decodeTagList parses a JSON array column into a string slice.
// Malformed columns degrade to an empty list rather than failing the row.
func decodeTagList(col sql.NullString, log *slog.Logger, column, code string) []string {
	if !col.Valid || col.String == "" {
		return nil
	}
	var tags []string
	if err := json.Unmarshal([]byte(col.String), &tags); err != nil {
		log.Debug("Failed to parse tag list JSON", "error", err, "column", column, "code", code)
		return nil
	}
	return tags
}

// HealthCheck verifies the parquet file is present and readable
func (e *ParquetEngine) HealthCheck(ctx context.Context) error {
	start := time.Now()
	e.log.Debug("Testing DuckDB connection and parquet file")

	query := `SELECT COUNT(*) FROM read_parquet(?)`
	var count int64

	if err := e.db.QueryRowContext(ctx, query, e.parquetPath).Scan(&count); err != nil {
		e.log.Error("Connection test failed", "error", err, "duration", time.Since(start))
		return fmt.Errorf("connection test failed: %w", err)
	}

	e.log.Info("Connection test successful", "total_records", count, "duration", time.Since(start))
	return nil
}
