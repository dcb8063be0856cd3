package migrations_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	_ "github.com/shashiranjanraj/storefront/database/migrations"
	"github.com/shashiranjanraj/storefront/pkg/migration"
)

func TestSchemaUpAndDown(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "s.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	r := migration.New(db).WithOutput(&bytes.Buffer{})
	require.NoError(t, r.Run())
	for _, table := range []string{"categories", "products", "users", "auth_credentials", "cart", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, r.Rollback())
	assert.False(t, db.Migrator().HasTable("cart"))
}
