// Package sqlite provides the embedded file-based product repository,
// used when no networked database is configured.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	_ "modernc.org/sqlite"

	"github.com/globalprice/products-api/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	base_price REAL NOT NULL
);`

// ProductRepository is a SQLite-backed implementation of domain.ProductRepository
type ProductRepository struct {
	db     *sql.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// Open opens (or creates) the SQLite database file at path.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc.org/sqlite serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent handlers.
	db.SetMaxOpenConns(1)
	return db, nil
}

// Compile-time check that ProductRepository implements the domain port.
var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a SQLite product repository
func NewProductRepository(db *sql.DB, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		db:     db,
		tracer: tracer,
		logger: logger,
	}
}

// Migrate creates the products table if it does not exist
func (r *ProductRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// Create inserts a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	result, err := r.db.ExecContext(ctx,
		`INSERT INTO products (name, description, base_price) VALUES (?, ?, ?)`,
		product.Name, product.Description, product.BasePrice,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return fmt.Errorf("insert product: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read inserted id: %w", err)
	}
	product.ID = id

	span.SetAttributes(attribute.Int64("product.id", id))
	span.SetStatus(codes.Ok, "Product created")

	r.logger.InfoContext(ctx, "Product created in sqlite",
		slog.Int64("product_id", id),
	)
	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var product domain.Product
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, base_price FROM products WHERE id = ?`, id,
	).Scan(&product.ID, &product.Name, &product.Description, &product.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		span.SetStatus(codes.Error, "Product not found")
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("select product: %w", err)
	}

	span.SetStatus(codes.Ok, "Product found")
	return &product, nil
}

// FindAll retrieves all products in insertion order
func (r *ProductRepository) FindAll(ctx context.Context) ([]*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindAll")
	defer span.End()

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, base_price FROM products ORDER BY id`)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("select products: %w", err)
	}
	defer rows.Close()

	products := make([]*domain.Product, 0)
	for rows.Next() {
		var product domain.Product
		if err := rows.Scan(&product.ID, &product.Name, &product.Description, &product.BasePrice); err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, &product)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	span.SetAttributes(attribute.Int("product.count", len(products)))
	span.SetStatus(codes.Ok, "Products retrieved")
	return products, nil
}

// Update overwrites an existing product record
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Update")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", product.ID))

	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, description = ?, base_price = ? WHERE id = ?`,
		product.Name, product.Description, product.BasePrice, product.ID,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("update product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product updated")
	return nil
}

// Delete removes a product record permanently
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Delete")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete product: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product deleted")
	r.logger.InfoContext(ctx, "Product deleted from sqlite",
		slog.Int64("product_id", id),
	)
	return nil
}
