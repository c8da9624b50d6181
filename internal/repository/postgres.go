package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"washfinder/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
)

// PostgresRepository handles database operations
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if !strings.Contains(dsn, "?") {
		dsn += "?prefer_simple_protocol=true"
	} else {
		dsn += "&prefer_simple_protocol=true"
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

const productColumns = `
	id, brand, model, type, price, capacity_kg,
	width_cm, height_cm, depth_cm, description`

// buildFilterClauses translates the structured filter into WHERE conditions.
// Dimension closeness is handled separately: previews ignore it.
func buildFilterClauses(filter *model.QueryFilter, argIndex int) ([]string, []interface{}, int) {
	clauses := []string{"1=1"}
	args := []interface{}{}

	if filter == nil {
		return clauses, args, argIndex
	}
	if filter.Brand != nil {
		clauses = append(clauses, fmt.Sprintf("LOWER(brand) = LOWER($%d)", argIndex))
		args = append(args, *filter.Brand)
		argIndex++
	}
	if filter.Type != nil {
		clauses = append(clauses, fmt.Sprintf("LOWER(type) = LOWER($%d)", argIndex))
		args = append(args, *filter.Type)
		argIndex++
	}
	if filter.MinPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price >= $%d", argIndex))
		args = append(args, *filter.MinPrice)
		argIndex++
	}
	if filter.MaxPrice != nil {
		clauses = append(clauses, fmt.Sprintf("price <= $%d", argIndex))
		args = append(args, *filter.MaxPrice)
		argIndex++
	}
	if filter.MinCapacityKg != nil {
		clauses = append(clauses, fmt.Sprintf("capacity_kg >= $%d", argIndex))
		args = append(args, *filter.MinCapacityKg)
		argIndex++
	}
	if filter.MaxCapacityKg != nil {
		clauses = append(clauses, fmt.Sprintf("capacity_kg <= $%d", argIndex))
		args = append(args, *filter.MaxCapacityKg)
		argIndex++
	}

	return clauses, args, argIndex
}

func appendDimensionClauses(filter *model.QueryFilter, toleranceCm float64, clauses []string, args []interface{}, argIndex int) ([]string, []interface{}, int) {
	if filter == nil {
		return clauses, args, argIndex
	}
	dims := []struct {
		column string
		value  *float64
	}{
		{"width_cm", filter.WidthCm},
		{"height_cm", filter.HeightCm},
		{"depth_cm", filter.DepthCm},
	}
	for _, dim := range dims {
		if dim.value == nil {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("%s BETWEEN $%d AND $%d", dim.column, argIndex, argIndex+1))
		args = append(args, *dim.value-toleranceCm, *dim.value+toleranceCm)
		argIndex += 2
	}
	return clauses, args, argIndex
}

// Preview returns up to limit products matching the core filter (brand, type,
// price range, capacity range), highest price first. Dimension constraints
// are deliberately not applied here.
func (r *PostgresRepository) Preview(ctx context.Context, filter *model.QueryFilter, limit int) ([]model.Product, error) {
	if limit < 1 {
		limit = 1
	}
	clauses, args, argIndex := buildFilterClauses(filter, 1)
	query := fmt.Sprintf(`
		SELECT %s
		FROM product
		WHERE %s
		ORDER BY price DESC NULLS LAST
		LIMIT $%d
	`, productColumns, strings.Join(clauses, " AND "), argIndex)
	args = append(args, limit)

	var products []model.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch preview products: %w", err)
	}
	return products, nil
}

// FinalCandidates returns up to fetchSize products matching the full filter,
// with dimension closeness applied within toleranceCm per axis.
func (r *PostgresRepository) FinalCandidates(ctx context.Context, filter *model.QueryFilter, toleranceCm float64, fetchSize int) ([]model.Product, error) {
	if fetchSize < 1 {
		fetchSize = 1
	}
	clauses, args, argIndex := buildFilterClauses(filter, 1)
	clauses, args, argIndex = appendDimensionClauses(filter, toleranceCm, clauses, args, argIndex)
	query := fmt.Sprintf(`
		SELECT %s
		FROM product
		WHERE %s
		ORDER BY price DESC NULLS LAST
		LIMIT $%d
	`, productColumns, strings.Join(clauses, " AND "), argIndex)
	args = append(args, fetchSize)

	var products []model.Product
	if err := r.db.SelectContext(ctx, &products, query, args...); err != nil {
		return nil, fmt.Errorf("failed to fetch candidate products: %w", err)
	}
	return products, nil
}

// GetProductByID retrieves a single product by its ID
func (r *PostgresRepository) GetProductByID(ctx context.Context, productID int64) (*model.Product, error) {
	var product model.Product
	query := fmt.Sprintf(`SELECT %s FROM product WHERE id = $1`, productColumns)
	err := r.db.GetContext(ctx, &product, query, productID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

// DistinctBrands returns the distinct, trimmed, non-empty brand names,
// sorted case-insensitively.
func (r *PostgresRepository) DistinctBrands(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT btrim(brand)
		FROM product
		WHERE brand IS NOT NULL AND btrim(brand) <> ''
		ORDER BY btrim(brand) COLLATE "C" ASC
	`
	var brands []string
	if err := r.db.SelectContext(ctx, &brands, query); err != nil {
		return nil, fmt.Errorf("failed to list brands: %w", err)
	}
	// COLLATE "C" keeps ordering deterministic across locales; finish with a
	// case-insensitive sort in Go to match catalog expectations.
	sortCaseInsensitive(brands)
	return brands, nil
}

func sortCaseInsensitive(values []string) {
	for i := 1; i < len(values); i++ {
		for j := i; j > 0 && strings.ToLower(values[j]) < strings.ToLower(values[j-1]); j-- {
			values[j], values[j-1] = values[j-1], values[j]
		}
	}
}

// UpdateEmbedding updates the embedding vector for a product
func (r *PostgresRepository) UpdateEmbedding(ctx context.Context, productID int64, embedding []float32) error {
	vec := pgvector.NewVector(embedding)
	query := `UPDATE product SET embedding = $1 WHERE id = $2`
	if _, err := r.db.ExecContext(ctx, query, vec, productID); err != nil {
		return fmt.Errorf("failed to update embedding: %w", err)
	}
	return nil
}

// BatchUpdateEmbeddings updates embeddings for multiple products
func (r *PostgresRepository) BatchUpdateEmbeddings(ctx context.Context, items []model.EmbeddingItem) (int, []string) {
	success := 0
	var errors []string

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to start transaction: %v", err))
		return success, errors
	}
	defer tx.Rollback()

	stmt, err := tx.PreparexContext(ctx, `UPDATE product SET embedding = $1 WHERE id = $2`)
	if err != nil {
		errors = append(errors, fmt.Sprintf("failed to prepare statement: %v", err))
		return success, errors
	}
	defer stmt.Close()

	for _, item := range items {
		vec := pgvector.NewVector(item.Embedding)
		if _, err := stmt.ExecContext(ctx, vec, item.ProductID); err != nil {
			errors = append(errors, fmt.Sprintf("product_id %d: %v", item.ProductID, err))
			continue
		}
		success++
	}

	if err := tx.Commit(); err != nil {
		errors = append(errors, fmt.Sprintf("failed to commit transaction: %v", err))
		return 0, errors
	}

	return success, errors
}

// LogTurn records one conversation turn for offline analysis
func (r *PostgresRepository) LogTurn(ctx context.Context, sessionID, userText string, filter *model.QueryFilter, status string, resultCount int, responseTimeMs int) error {
	filterJSON, err := json.Marshal(filter)
	if err != nil {
		filterJSON = []byte("{}")
	}
	query := `
		INSERT INTO conversation_logs (session_id, user_text, filter, status, result_count, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	if _, err := r.db.ExecContext(ctx, query, sessionID, userText, filterJSON, status, resultCount, responseTimeMs); err != nil {
		return fmt.Errorf("failed to log turn: %w", err)
	}
	return nil
}
