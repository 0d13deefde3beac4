package sttmgen

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

/*

The connector templater turns a filled connector workbook into one JSON
config file per connector. The workbook carries a Common sheet (one row
per connector) plus a sink and a source detail sheet joined on the
connector name; keys are the dotted connector property names, lightly
normalized because they are typed by hand into spreadsheet headers.
*/

const (
	sheetConnCommon = "Common"
	sheetConnSink   = "GCS_Sink"
	sheetConnSource = "GCS_Source"
)

// sensitiveConnectorKeys are redacted in the printed summary; the JSON
// files keep them because the deploy pipeline needs them.
var sensitiveConnectorKeys = map[string]bool{
	"gcs.credentials.config": true,
	"gcs.credentials.json":   true,
	"basic.auth.user.info":   true,
	"sasl.jaas.config":       true,
	"kafka.api.key":          true,
	"kafka.api.secret":       true,
}

// boolishConnectorKeys are normalized to the literal strings the connect
// runtime expects.
var boolishConnectorKeys = map[string]bool{
	"errors.log.enable": true,
	"errors.deadletterqueue.context.headers.enable": true,
	"value.converter.replace.null.with.default":     true,
}

// connectorKeyAliases fixes the spellings that keep showing up in
// hand-authored templates.
var connectorKeyAliases = map[string]string{
	"cloud provider":     "cloud.provider",
	"input data format":  "input.data.format",
	"output data format": "output.data.format",
	"tasks-max":          "tasks.max",
}

var (
	dotSpacing = regexp.MustCompile(`\s*\.\s*`)
	multiSpace = regexp.MustCompile(`\s{2,}`)
)

// normalizeConnectorKey collapses spaces around dots and applies the
// alias table.
func normalizeConnectorKey(key string) string {
	k := strings.TrimSpace(key)
	k = dotSpacing.ReplaceAllString(k, ".")
	k = multiSpace.ReplaceAllString(k, " ")
	if alias, ok := connectorKeyAliases[k]; ok {
		return alias
	}
	return k
}

func coerceBoolish(val string) string {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "t", "yes", "y", "1":
		return "true"
	case "false", "f", "no", "n", "0":
		return "false"
	}
	return val
}

// ConnectorSpec is one assembled connector: its name, kind and the full
// property map that becomes the JSON config.
type ConnectorSpec struct {
	Name   string
	Type   string // "sink" or "source"
	Config map[string]string
}

// ReadConnectorWorkbook assembles connector specs from the template
// workbook. Rows without a name or type are skipped.
func ReadConnectorWorkbook(path string) ([]ConnectorSpec, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open connector workbook '%s': %w", path, err)
	}
	defer f.Close()

	common, err := sheetRecords(f, sheetConnCommon)
	if err != nil {
		return nil, err
	}
	sink, err := sheetRecords(f, sheetConnSink)
	if err != nil {
		return nil, err
	}
	source, err := sheetRecords(f, sheetConnSource)
	if err != nil {
		return nil, err
	}

	var specs []ConnectorSpec
	for _, row := range common {
		name := row["name"]
		ctype := strings.ToLower(row["connector_type"])
		if name == "" || ctype == "" {
			continue
		}

		combined := make(map[string]string, len(row))
		for k, v := range row {
			combined[k] = v
		}
		details := sink
		if ctype == "source" {
			details = source
		}
		for _, d := range details {
			if d["name"] != name {
				continue
			}
			for k, v := range d {
				combined[k] = v
			}
			break
		}

		for k := range combined {
			if boolishConnectorKeys[k] {
				combined[k] = coerceBoolish(combined[k])
			}
		}

		setDefault(combined, "cloud.provider", "gcp")
		setDefault(combined, "kafka.auth.mode", "SERVICE_ACCOUNT")
		if ctype == "sink" {
			setDefault(combined, "connector.class", "GcsSink")
			setDefault(combined, "tasks.max", "1")
		} else {
			setDefault(combined, "connector.class", "GcsSource")
			setDefault(combined, "tasks.max", "5")
		}
		setDefault(combined, "status", "PAUSED")

		specs = append(specs, ConnectorSpec{Name: name, Type: ctype, Config: combined})
	}
	return specs, nil
}

// ValidateConnectors reports missing required properties as findings,
// keeping the caller's error/warning contract identical to mapping
// validation.
func ValidateConnectors(specs []ConnectorSpec, rep *Report) {
	baseRequired := []string{
		"name", "cloud.environment", "kafka.endpoint", "kafka.region",
		"kafka.service.account.id", "topics.dir", "tasks.max",
	}
	for _, spec := range specs {
		for _, k := range baseRequired {
			if spec.Config[k] == "" {
				rep.Errorf(spec.Name, "[%s] missing required field: %s", spec.Name, k)
			}
		}
		switch spec.Type {
		case "sink":
			for _, k := range []string{"topics", "gcs.bucket.name", "input.data.format", "output.data.format"} {
				if spec.Config[k] == "" {
					rep.Errorf(spec.Name, "[%s] sink missing required field: %s", spec.Name, k)
				}
			}
		case "source":
			if spec.Config["topic-regex.list"] == "" && spec.Config["topics"] == "" {
				rep.Errorf(spec.Name, "[%s] source must provide either 'topic-regex.list' or 'topics'", spec.Name)
			}
			for _, k := range []string{"gcs.bucket.name", "input.data.format", "output.data.format"} {
				if spec.Config[k] == "" {
					rep.Errorf(spec.Name, "[%s] source missing required field: %s", spec.Name, k)
				}
			}
		default:
			rep.Errorf(spec.Name, "[%s] connector_type must be 'sink' or 'source', got '%s'", spec.Name, spec.Type)
		}
	}
}

// WriteConnectorConfigs writes one <name>.json per connector into outDir
// and returns the paths written. connector_type and status are control
// fields, not connector properties, and stay out of the JSON.
func WriteConnectorConfigs(specs []ConnectorSpec, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory '%s': %w", outDir, err)
	}

	var paths []string
	for _, spec := range specs {
		config := make(map[string]string, len(spec.Config))
		for k, v := range spec.Config {
			if k == "connector_type" || k == "status" {
				continue
			}
			config[k] = v
		}

		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal connector '%s': %w", spec.Name, err)
		}
		path := filepath.Join(outDir, spec.Name+".json")
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return nil, fmt.Errorf("failed to write '%s': %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Summary renders the connector's properties with sensitive values
// masked, keys sorted, for console review.
func (s ConnectorSpec) Summary() string {
	keys := make([]string, 0, len(s.Config))
	for k := range s.Config {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s):\n", s.Name, s.Type)
	for _, k := range keys {
		v := s.Config[k]
		if sensitiveConnectorKeys[k] {
			v = "********"
		}
		fmt.Fprintf(&b, "  %s = %s\n", k, v)
	}
	return b.String()
}

// sheetRecords reads a sheet into one map per data row, keys normalized
// from the header row. A missing sheet is just empty.
func sheetRecords(f *excelize.File, sheet string) ([]map[string]string, error) {
	if !hasSheet(f.GetSheetList(), sheet) {
		return nil, nil
	}
	grid, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet '%s': %w", sheet, err)
	}
	if len(grid) == 0 {
		return nil, nil
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = normalizeConnectorKey(h)
	}

	var records []map[string]string
	for _, cells := range grid[1:] {
		rec := make(map[string]string)
		empty := true
		for i, h := range headers {
			if h == "" {
				continue
			}
			val := ""
			if i < len(cells) {
				val = normalizeCell(cells[i])
			}
			if val == "" {
				continue
			}
			empty = false
			rec[h] = val
		}
		if !empty {
			records = append(records, rec)
		}
	}
	return records, nil
}

func setDefault(m map[string]string, key, val string) {
	if m[key] == "" {
		m[key] = val
	}
}
