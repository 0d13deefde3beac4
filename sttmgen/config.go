package sttmgen

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the optional sttmgen.yaml next to the workbook (or named via
// --config). Everything has a working default; the file only exists to
// pin payload/delimiter conventions and the rule set for a project.
type (
	Config struct {
		RuleSet       string `yaml:"rule_set,omitempty"`
		PayloadColumn string `yaml:"payload_column,omitempty"`
		CSVDelimiter  string `yaml:"csv_delimiter,omitempty"`

		ViewPrefix  string `yaml:"view_prefix,omitempty"`
		ViewSuffix  string `yaml:"view_suffix,omitempty"`
		TablePrefix string `yaml:"table_prefix,omitempty"`
		TableSuffix string `yaml:"table_suffix,omitempty"`

		ReservedWords []string `yaml:"reserved_words,omitempty"`
	}
)

const configFileName = "sttmgen.yaml"

// ReadConfig loads the configuration file. A missing file is not an
// error: the zero Config is valid.
func ReadConfig(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	return cfg, nil
}

// DefaultConfigPath returns the config location next to the workbook.
func DefaultConfigPath(workbookPath string) string {
	return filepath.Join(filepath.Dir(workbookPath), configFileName)
}

// Options builds generation options from the file plus the legacy Config
// sheet settings (file wins over sheet, sheet wins over defaults).
func (c Config) Options(sheetSettings map[string]string) (Options, error) {
	rules, err := RuleSetByName(c.RuleSet)
	if err != nil {
		return Options{}, err
	}

	pick := func(fileVal, sheetKey string) string {
		if fileVal != "" {
			return fileVal
		}
		return sheetSettings[sheetKey]
	}

	return Options{
		Rules:              rules,
		PayloadColumn:      pick(c.PayloadColumn, "raw_value_column"),
		CSVDelimiter:       pick(c.CSVDelimiter, "csv_delimiter"),
		ViewPrefix:         pick(c.ViewPrefix, "view_prefix"),
		ViewSuffix:         pick(c.ViewSuffix, "view_suffix"),
		TablePrefix:        pick(c.TablePrefix, "table_prefix"),
		TableSuffix:        pick(c.TableSuffix, "table_suffix"),
		ExtraReservedWords: c.ReservedWords,
	}, nil
}
