package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// MappingConfig is the optional TOML mapping configuration. It feeds the
// pluggable name-mapping and value-conversion hooks; CLI flags override
// the scalar settings.
type MappingConfig struct {
	AppName        string `toml:"app_name"`
	Schema         string `toml:"schema"`
	KeepTableNames bool   `toml:"keep_table_names"`

	// Tables maps source table names to model names. An empty model name
	// excludes the table from all output.
	Tables map[string]string `toml:"tables"`

	// Columns maps "Table.Column" to a destination field name.
	Columns map[string]string `toml:"columns"`

	// Replace rules substitute literal values during conversion.
	Replace []ReplaceRule `toml:"replace"`
}

// ReplaceRule substitutes one literal value in one column.
type ReplaceRule struct {
	Table  string `toml:"table"`
	Column string `toml:"column"`
	From   string `toml:"from"`
	To     string `toml:"to"`
}

// loadMappingConfig reads a TOML mapping file, rejecting unknown keys.
func loadMappingConfig(path string) (*MappingConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg MappingConfig
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if unknown := md.Undecoded(); len(unknown) > 0 {
		keys := make([]string, len(unknown))
		for i, k := range unknown {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}

	for key := range cfg.Columns {
		if !strings.Contains(key, ".") {
			return nil, fmt.Errorf("columns key %q must have the form Table.Column", key)
		}
	}
	for i, r := range cfg.Replace {
		if r.Table == "" || r.Column == "" {
			return nil, fmt.Errorf("replace rule %d: table and column are required", i+1)
		}
	}
	return &cfg, nil
}

// tableNameFunc builds the table-to-model name mapper. Unmapped tables
// keep their source name; a mapping to "" excludes the table.
func (c *MappingConfig) tableNameFunc() TableNameFunc {
	return func(table string) (string, bool) {
		mapped, ok := c.Tables[table]
		if !ok {
			return table, true
		}
		if mapped == "" {
			return "", false
		}
		return mapped, true
	}
}

// columnNameFunc builds the column-to-field name mapper. Unmapped
// columns keep their source name.
func (c *MappingConfig) columnNameFunc() ColumnNameFunc {
	return func(table, column string, _ bool) string {
		if mapped, ok := c.Columns[table+"."+column]; ok {
			return mapped
		}
		return column
	}
}

// conversionFunc builds the custom value-conversion override from the
// replace rules.
func (c *MappingConfig) conversionFunc() ConversionFunc {
	if len(c.Replace) == 0 {
		return nil
	}
	rules := make(map[string]map[string]string)
	for _, r := range c.Replace {
		key := r.Table + "." + r.Column
		if rules[key] == nil {
			rules[key] = make(map[string]string)
		}
		rules[key][r.From] = r.To
	}
	return func(table, column string, value any) any {
		s, ok := value.(string)
		if !ok {
			return value
		}
		if to, ok := rules[table+"."+column][s]; ok {
			return to
		}
		return value
	}
}
