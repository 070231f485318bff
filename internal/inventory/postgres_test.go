package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupTestDB(t *testing.T) (*storage.DB, func()) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	creds := &storage.Credentials{
		Host:              host,
		Port:              port.Int(),
		User:              "testuser",
		Password:          "testpass",
		DBName:            "testdb",
		MigrationsDirPath: "../../migrations",
	}

	db, err := storage.Open(creds)
	require.NoError(t, err)

	require.NoError(t, db.RunMigrations(creds))

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return db, cleanup
}

func seedStock(t *testing.T, db *storage.DB, stock int64) int64 {
	t.Helper()
	var id int64
	err := db.Querier().QueryRowContext(context.Background(),
		`INSERT INTO products (name, price, stock_quantity, is_active)
		 VALUES ('Widget', 9.99, $1, TRUE) RETURNING id`, stock).Scan(&id)
	require.NoError(t, err)
	return id
}

func stockOf(t *testing.T, db *storage.DB, id int64) int64 {
	t.Helper()
	var stock int64
	err := db.Querier().QueryRowContext(context.Background(),
		`SELECT stock_quantity FROM products WHERE id = $1`, id).Scan(&stock)
	require.NoError(t, err)
	return stock
}

func TestPostgresDecrement_FloorsAtZero(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ledger := NewPostgresLedger(db.Querier())
	ctx := context.Background()
	id := seedStock(t, db, 3)

	found, err := ledger.Decrement(ctx, id, 10)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(0), stockOf(t, db, id))
}

func TestPostgresDecrement_UnknownProduct(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ledger := NewPostgresLedger(db.Querier())

	found, err := ledger.Decrement(context.Background(), 424242, 1)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPostgresDecrementExact(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ledger := NewPostgresLedger(db.Querier())
	ctx := context.Background()
	id := seedStock(t, db, 5)

	require.NoError(t, ledger.DecrementExact(ctx, nil, id, 3))
	assert.Equal(t, int64(2), stockOf(t, db, id))

	err := ledger.DecrementExact(ctx, nil, id, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, int64(2), stockOf(t, db, id), "failed decrement must not change stock")

	err = ledger.DecrementExact(ctx, nil, 424242, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestPostgresRestock(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ledger := NewPostgresLedger(db.Querier())
	ctx := context.Background()
	id := seedStock(t, db, 1)

	require.NoError(t, ledger.Restock(ctx, nil, id, 4))
	assert.Equal(t, int64(5), stockOf(t, db, id))

	assert.ErrorIs(t, ledger.Restock(ctx, nil, 424242, 1), ErrProductNotFound)
}

func TestPostgresDecrementExact_InTxRollsBack(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	ledger := NewPostgresLedger(db.Querier())
	ctx := context.Background()
	id := seedStock(t, db, 5)

	errBoom := db.WithinTx(ctx, func(q storage.Querier) error {
		if err := ledger.DecrementExact(ctx, q, id, 5); err != nil {
			return err
		}
		return assert.AnError
	})
	require.Error(t, errBoom)

	assert.Equal(t, int64(5), stockOf(t, db, id), "rollback must restore the decrement")
}
