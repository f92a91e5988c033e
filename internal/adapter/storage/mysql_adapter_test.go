package storage

import (
	"context"
	"database/sql"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/graphqlbench?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestMySQLAdapter_SaveThenLoad(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.EnsureSchema(ctx))

	snap := smallSnapshot()
	require.NoError(t, adapter.Save(ctx, snap))

	loaded, err := adapter.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.Counts(), loaded.Counts())

	for i := range snap.Products {
		assert.Equal(t, snap.Products[i].ID, loaded.Products[i].ID)
		assert.Equal(t, snap.Products[i].Description, loaded.Products[i].Description)
	}
	for i := range snap.Orders {
		assert.Equal(t, snap.Orders[i].Items, loaded.Orders[i].Items)
		assert.InDelta(t, snap.Orders[i].Total, loaded.Orders[i].Total, 1e-6)
	}
	assert.True(t, snap.Reviews[0].CreatedAt.Equal(loaded.Reviews[0].CreatedAt))
}

func TestMySQLAdapter_SaveReplacesRows(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)
	require.NoError(t, adapter.EnsureSchema(ctx))

	snap := smallSnapshot()
	require.NoError(t, adapter.Save(ctx, snap))

	snap.Orders = snap.Orders[:1]
	require.NoError(t, adapter.Save(ctx, snap))

	var items int
	require.NoError(t, db.QueryRowContext(ctx, `SELECT COUNT(*) FROM order_items`).Scan(&items))
	assert.Equal(t, len(snap.Orders[0].Items), items)
}
