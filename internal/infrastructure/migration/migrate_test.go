package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList(t *testing.T) {
	names, err := List()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"000001_create_foods_and_lots",
		"000002_create_basket_batches",
		"000003_create_basket_deliveries",
	}, names)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := List()
	require.NoError(t, err)

	for _, name := range names {
		down, err := fs.ReadFile(migrationFiles, "sql/"+name+".down.sql")
		require.NoError(t, err, name)
		assert.Contains(t, strings.ToUpper(string(down)), "DROP TABLE", name)
	}
}

func TestLotsSchemaGuardsQuantity(t *testing.T) {
	up, err := fs.ReadFile(migrationFiles, "sql/000001_create_foods_and_lots.up.sql")
	require.NoError(t, err)

	schema := string(up)
	assert.Contains(t, schema, "CHECK (quantity >= 0)")
	assert.Contains(t, schema, "expiry_date     DATE")
	assert.Contains(t, schema, "'AVAILABLE', 'USED', 'DISCARDED'")
}
