package sqlite

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/globalprice/products-api/internal/domain"
)

func newTestRepository(t *testing.T) *ProductRepository {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "products.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := NewProductRepository(db, tracenoop.NewTracerProvider().Tracer("test"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, repo.Migrate(context.Background()))
	return repo
}

func TestCreateFindUpdateDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	product := &domain.Product{Name: "iPhone 15 Pro", Description: "Titanium", BasePrice: 7000.00}
	require.NoError(t, repo.Create(ctx, product))
	assert.Equal(t, int64(1), product.ID)

	found, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product, found)

	product.BasePrice = 7500.5
	require.NoError(t, repo.Update(ctx, product))

	found, err = repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.InDelta(t, 7500.5, found.BasePrice, 0.001)
	assert.Equal(t, "iPhone 15 Pro", found.Name)

	require.NoError(t, repo.Delete(ctx, product.ID))
	_, err = repo.FindByID(ctx, product.ID)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestFindAllInsertionOrder(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, name := range []string{"A", "B", "C"} {
		require.NoError(t, repo.Create(ctx, &domain.Product{Name: name, BasePrice: 1}))
	}

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "A", all[0].Name)
	assert.Equal(t, "C", all[2].Name)
}

func TestNotFoundErrors(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.FindByID(ctx, 99)
	require.ErrorIs(t, err, domain.ErrProductNotFound)

	require.ErrorIs(t, repo.Update(ctx, &domain.Product{ID: 99, Name: "Ghost", BasePrice: 1}), domain.ErrProductNotFound)
	require.ErrorIs(t, repo.Delete(ctx, 99), domain.ErrProductNotFound)
}

func TestMigrateIsIdempotent(t *testing.T) {
	repo := newTestRepository(t)
	require.NoError(t, repo.Migrate(context.Background()))
}
