package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/feedbridge/backend/internal/domain/feed"
)

// LoadMappingTable reads the versioned category mapping table from its own
// TOML file. The table maps resolved product types to standardized
// destination categories and weight classes; keeping it outside the main
// config lets the mapping be revised without touching service settings.
func LoadMappingTable(path string) (*feed.MappingTable, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading mapping table %s: %w", path, err)
	}

	table := &feed.MappingTable{
		Version:            v.GetString("version"),
		Categories:         v.GetStringMapString("categories"),
		DefaultCategory:    v.GetString("default_category"),
		DefaultWeightGrams: v.GetInt("default_weight_grams"),
		WeightGramsByType:  map[string]int{},
	}
	for name, grams := range v.GetStringMap("weight_grams") {
		switch g := grams.(type) {
		case int64:
			table.WeightGramsByType[name] = int(g)
		case int:
			table.WeightGramsByType[name] = g
		case float64:
			table.WeightGramsByType[name] = int(g)
		default:
			return nil, fmt.Errorf("mapping table %s: weight_grams.%s is not a number", path, name)
		}
	}

	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}
