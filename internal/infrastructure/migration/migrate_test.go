package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvailable(t *testing.T) {
	names, err := Available()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"000001_create_users_and_suppliers",
		"000002_create_inventory",
		"000003_create_orders_and_notifications",
	}, names)
}

func TestEveryUpHasDown(t *testing.T) {
	names, err := Available()
	require.NoError(t, err)

	for _, name := range names {
		down, err := fs.ReadFile(migrationFS, sourceDir+"/"+name+".down.sql")
		require.NoError(t, err, name)
		assert.Contains(t, strings.ToUpper(string(down)), "DROP TABLE", name)
	}
}

func TestInventorySchemaForbidsNegativeStock(t *testing.T) {
	up, err := fs.ReadFile(migrationFS, sourceDir+"/000002_create_inventory.up.sql")
	require.NoError(t, err)

	assert.Contains(t, string(up), "CHECK (stock_level >= 0)")
	assert.Contains(t, string(up), "CHECK (new_stock >= 0)")
}
