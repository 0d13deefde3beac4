package sttmgen

import "strings"

/*

The Config_TableMatrix sheet is a key × table grid: one row per storage
option key, one column per target table, each cell an optional value.

	Key              | XREF_ACCOUNTS | FGAC_ORDERS
	connector        | kafka         | kafka
	changelog.mode   | upsert        | na
	topic            | ${table_name} |

A ConfigMatrix keeps the grid in sheet order so that resolved WITH(...)
options come out in the same order every run. Cell values equal to one of
the absence sentinels ("", "na", "n/a", "none", any case) are treated as
not set.
*/
type ConfigMatrix struct {
	Keys   []string // row order as authored
	Tables []string // column order as authored
	cells  map[string]map[string]string
	dups   map[string][]string
}

// TableOption is one resolved WITH(...) entry for a table.
type TableOption struct {
	Key   string
	Value string
}

const tableNameMacro = "${table_name}"

// NewConfigMatrix builds an empty matrix with the given table columns.
func NewConfigMatrix(tables []string) *ConfigMatrix {
	return &ConfigMatrix{
		Tables: tables,
		cells:  make(map[string]map[string]string),
		dups:   make(map[string][]string),
	}
}

// Set records one cell. Keys keep first-seen row order. A repeated key in
// the same table column overwrites only with a real value (last real value
// wins, the validator warns about it); a sentinel cell never erases an
// earlier real value.
func (m *ConfigMatrix) Set(key, table, value string) {
	key = strings.TrimSpace(key)
	table = strings.TrimSpace(table)
	if key == "" || table == "" {
		return
	}
	if _, seen := m.cells[key]; !seen {
		m.Keys = append(m.Keys, key)
		m.cells[key] = make(map[string]string)
	}
	value = strings.TrimSpace(value)
	if prev, ok := m.cells[key][table]; ok && !isAbsentValue(prev) {
		if isAbsentValue(value) {
			return
		}
		m.dups[table] = append(m.dups[table], key)
	}
	m.cells[key][table] = value
}

// DuplicateKeys lists keys that were set more than once with a real value
// in the given table column, in occurrence order.
func (m *ConfigMatrix) DuplicateKeys(table string) []string {
	return m.dups[table]
}

// HasTable reports whether the matrix carries a column for the table.
func (m *ConfigMatrix) HasTable(table string) bool {
	for _, t := range m.Tables {
		if t == table {
			return true
		}
	}
	return false
}

func isAbsentValue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "na", "n/a", "none":
		return true
	}
	return false
}

/*
Resolve returns the storage options for one generation unit, in matrix row
order. The logical table name (the TargetTable value from the mapping) is
preferred as the column; the emitted name is tried second so that a matrix
authored against prefixed names still resolves under the legacy rule set.
Sentinel cells are skipped and the ${table_name} macro is expanded with the
emitted name.
*/
func (m *ConfigMatrix) Resolve(logical, emitted string) []TableOption {
	if m == nil {
		return nil
	}
	col := ""
	if m.HasTable(logical) {
		col = logical
	} else if m.HasTable(emitted) {
		col = emitted
	} else {
		return nil
	}

	var opts []TableOption
	for _, key := range m.Keys {
		val := m.cells[key][col]
		if isAbsentValue(val) {
			continue
		}
		val = strings.ReplaceAll(val, tableNameMacro, emitted)
		opts = append(opts, TableOption{Key: key, Value: val})
	}
	return opts
}

// optionValue is a lookup helper for validation checks.
func optionValue(opts []TableOption, key string) string {
	for _, o := range opts {
		if o.Key == key {
			return o.Value
		}
	}
	return ""
}
