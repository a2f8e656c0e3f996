// Package postgres provides the networked product repository, selected
// with STORAGE_BACKEND=postgres.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/globalprice/products-api/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	base_price DOUBLE PRECISION NOT NULL
);`

// ProductRepository is a PostgreSQL-backed implementation of domain.ProductRepository
type ProductRepository struct {
	pool   *pgxpool.Pool
	tracer trace.Tracer
	logger *slog.Logger
}

// Connect opens a connection pool against the configured DSN.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Compile-time check that ProductRepository implements the domain port.
var _ domain.ProductRepository = (*ProductRepository)(nil)

// NewProductRepository creates a PostgreSQL product repository
func NewProductRepository(pool *pgxpool.Pool, tracer trace.Tracer, logger *slog.Logger) *ProductRepository {
	return &ProductRepository{
		pool:   pool,
		tracer: tracer,
		logger: logger,
	}
}

// Migrate creates the products table if it does not exist
func (r *ProductRepository) Migrate(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create products table: %w", err)
	}
	return nil
}

// Create inserts a new product and assigns its ID
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.Create")
	defer span.End()

	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, description, base_price) VALUES ($1, $2, $3) RETURNING id`,
		product.Name, product.Description, product.BasePrice,
	).Scan(&product.ID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Insert failed")
		return fmt.Errorf("insert product: %w", err)
	}

	span.SetAttributes(attribute.Int64("product.id", product.ID))
	span.SetStatus(codes.Ok, "Product created")

	r.logger.InfoContext(ctx, "Product created in postgres",
		slog.Int64("product_id", product.ID),
	)
	return nil
}

// FindByID retrieves a product by ID
func (r *ProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := r.tracer.Start(ctx, "ProductRepository.FindByID")
	defer span.End()

	span.SetAttributes(attribute.Int64("product.id", id))

	var product domain.Product
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, description, base_price FROM products WHERE id = $1`, id,
	).Scan(&product.ID, &product.Name, &product.Description, &product.BasePrice)
	if errors.Is(err, pgx.ErrNoRows) {
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

	rows, err := r.pool.Query(ctx,
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

	result, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $1, description = $2, base_price = $3 WHERE id = $4`,
		product.Name, product.Description, product.BasePrice, product.ID,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("update product: %w", err)
	}
	if result.RowsAffected() == 0 {
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

	result, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Product not found")
		return domain.ErrProductNotFound
	}

	span.SetStatus(codes.Ok, "Product deleted")
	r.logger.InfoContext(ctx, "Product deleted from postgres",
		slog.Int64("product_id", id),
	)
	return nil
}
