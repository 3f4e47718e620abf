package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMappingFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "category_mapping.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMappingTable(t *testing.T) {
	path := writeMappingFile(t, `
version = "2026-08"
default_category = "Arts & Entertainment"
default_weight_grams = 100

[categories]
vinyl = "Media > Records & LPs"
shirt = "Apparel & Accessories > Clothing > Shirts & Tops"

[weight_grams]
vinyl = 1000
cd = 120
`)

	table, err := LoadMappingTable(path)
	require.NoError(t, err)

	assert.Equal(t, "2026-08", table.Version)
	assert.Equal(t, "Arts & Entertainment", table.DefaultCategory)
	assert.Equal(t, 100, table.DefaultWeightGrams)

	// Lookups are case-insensitive against the resolved type
	assert.Equal(t, "Media > Records & LPs", table.Category("Vinyl"))
	assert.Equal(t, "Arts & Entertainment", table.Category("Tape"))
	assert.Equal(t, 1000, table.WeightGrams("Vinyl"))
	assert.Equal(t, 120, table.WeightGrams("CD"))
	assert.Equal(t, 100, table.WeightGrams("Shirt"))
}

func TestLoadMappingTable_MissingDefaultCategory(t *testing.T) {
	path := writeMappingFile(t, `
version = "2026-08"

[categories]
vinyl = "Media > Records & LPs"
`)

	_, err := LoadMappingTable(path)
	assert.Error(t, err)
}

func TestLoadMappingTable_NonNumericWeight(t *testing.T) {
	path := writeMappingFile(t, `
default_category = "Arts & Entertainment"

[weight_grams]
vinyl = "heavy"
`)

	_, err := LoadMappingTable(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "weight_grams.vinyl")
}

func TestLoadMappingTable_MissingFile(t *testing.T) {
	_, err := LoadMappingTable(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestDatabaseConfig_DSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "p@ss word",
		DBName:   "feedbridge",
		SSLMode:  "disable",
	}

	dsn := cfg.DSN()
	assert.Contains(t, dsn, "postgres://")
	assert.Contains(t, dsn, "localhost:5432")
	assert.Contains(t, dsn, "feedbridge")
	assert.Contains(t, dsn, "sslmode=disable")
	// Credentials are URL-escaped
	assert.NotContains(t, dsn, "p@ss word")
}

func TestRedisConfig_Addr(t *testing.T) {
	cfg := RedisConfig{Host: "localhost", Port: 6379}
	assert.Equal(t, "localhost:6379", cfg.Addr())
}
