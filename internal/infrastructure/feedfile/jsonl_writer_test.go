package feedfile

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feedbridge/backend/internal/domain/feed"
)

func testInputs() []feed.ImportInput {
	qty := 5
	return []feed.ImportInput{
		{
			SourceID: 101,
			Input: feed.ProductInput{
				Handle: "first-album",
				Title:  "First Album",
				Status: "ACTIVE",
				Variants: []feed.VariantInput{{
					SKU:                 "LP-001",
					Price:               "19.90",
					WeightUnit:          "GRAMS",
					InventoryManagement: "SHOPIFY",
					InventoryPolicy:     "DENY",
					InventoryQuantities: &qty,
				}},
			},
		},
		{
			SourceID: 102,
			Input: feed.ProductInput{
				Handle: "second-album",
				Title:  "Second Album",
				Status: "DRAFT",
			},
		},
	}
}

func TestJSONLWriter_WriteFile(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLWriter()

	path, size, err := w.WriteFile(dir, "import.jsonl", testInputs())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "import.jsonl"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)
	assert.True(t, strings.HasSuffix(string(data), "\n"))

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 2)

	// Each line is an independent {"input": ...} envelope
	for _, line := range lines {
		var envelope map[string]json.RawMessage
		require.NoError(t, json.Unmarshal([]byte(line), &envelope))
		require.Contains(t, envelope, "input")
		require.Len(t, envelope, 1)
	}

	var first struct {
		Input feed.ProductInput `json:"input"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "first-album", first.Input.Handle)
	assert.Equal(t, "ACTIVE", first.Input.Status)
	require.Len(t, first.Input.Variants, 1)
	assert.Equal(t, "19.90", first.Input.Variants[0].Price)
	require.NotNil(t, first.Input.Variants[0].InventoryQuantities)
	assert.Equal(t, 5, *first.Input.Variants[0].InventoryQuantities)

	// Empty scalars are omitted from the encoded object
	assert.NotContains(t, lines[1], `"descriptionHtml"`)
	assert.NotContains(t, lines[1], `"vendor"`)
}

func TestJSONLWriter_EmptyInputs(t *testing.T) {
	dir := t.TempDir()
	w := NewJSONLWriter()

	path, size, err := w.WriteFile(dir, "empty.jsonl", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	scanner := bufio.NewScanner(f)
	assert.False(t, scanner.Scan())
}

func TestJSONLWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "exports")
	w := NewJSONLWriter()

	_, _, err := w.WriteFile(dir, "import.jsonl", testInputs())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "import.jsonl"))
	assert.NoError(t, err)
}
