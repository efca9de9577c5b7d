package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

// importSchema validates the shape of JSON import files before any rows are
// accepted. Unknown extra keys are allowed so legacy exports keep working.
const importSchema = `{
	"type": "object",
	"required": ["data"],
	"properties": {
		"data": {
			"type": "array",
			"items": {
				"type": "object",
				"additionalProperties": true
			}
		}
	}
}`

// legacyAliases maps field keys found in exports from the previous tooling
// onto the canonical field names.
var legacyAliases = map[string]string{
	"料號":      FieldPartNumber,
	"站位":      FieldStation,
	"版本":      FieldVersion,
	"描述":      FieldDescription,
	"MFGID群組": FieldManufacturingGroup,
}

// Envelope is the metadata wrapper written around exported datasets.
type Envelope struct {
	ExportedAt   time.Time `json:"exported_at"`
	ExportID     string    `json:"export_id"`
	TotalRecords int       `json:"total_records"`
	Data         []Record  `json:"data"`
}

// ImportFile loads records from a JSON or YAML file. JSON files must carry a
// top-level "data" array (the export envelope shape); YAML files are a plain
// list of records. Every loaded record is normalized; invalid records are
// returned separately rather than aborting the whole import.
func ImportFile(path string) (records []Record, rejected []error, err error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var loaded []Record
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		loaded, err = parseYAML(raw)
	default:
		loaded, err = parseJSON(raw)
	}
	if err != nil {
		return nil, nil, err
	}

	for i, r := range loaded {
		r.Normalize()
		if r.Source == "" {
			r.Source = "import"
		}
		if vErr := r.Validate(); vErr != nil {
			rejected = append(rejected, fmt.Errorf("entry %d: %w", i+1, vErr))
			continue
		}
		records = append(records, r)
	}
	return records, rejected, nil
}

func parseJSON(raw []byte) ([]Record, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("import file is not valid JSON")
	}

	schemaLoader := gojsonschema.NewStringLoader(importSchema)
	documentLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("schema validation error: %w", err)
	}
	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, fmt.Sprintf("%s: %s", desc.Field(), desc.Description()))
		}
		return nil, fmt.Errorf("import file rejected: %s", strings.Join(msgs, "; "))
	}

	var records []Record
	for _, entry := range gjson.GetBytes(raw, "data").Array() {
		records = append(records, recordFromJSON(entry))
	}
	return records, nil
}

// recordFromJSON reads one entry, accepting both canonical and legacy keys.
func recordFromJSON(entry gjson.Result) Record {
	value := func(field string) string {
		if v := entry.Get(field); v.Exists() {
			return v.String()
		}
		for alias, canonical := range legacyAliases {
			if canonical == field {
				if v := entry.Get(alias); v.Exists() {
					return v.String()
				}
			}
		}
		return ""
	}

	return Record{
		PartNumber:         value(FieldPartNumber),
		Station:            value(FieldStation),
		Version:            value(FieldVersion),
		Description:        value(FieldDescription),
		ManufacturingGroup: value(FieldManufacturingGroup),
		Source:             entry.Get("source").String(),
	}
}

func parseYAML(raw []byte) ([]Record, error) {
	var records []Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("failed to parse YAML import file: %w", err)
	}
	return records, nil
}

// ExportFile writes the records to path as a JSON envelope. If the target
// file already exists, a timestamped backup is written to backupDir first.
func ExportFile(records []Record, path, backupDir string) error {
	if err := backupExisting(path, backupDir); err != nil {
		return err
	}

	envelope := Envelope{
		ExportedAt:   time.Now().UTC(),
		ExportID:     uuid.NewString(),
		TotalRecords: len(records),
		Data:         records,
	}

	raw, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}

func backupExisting(path, backupDir string) error {
	existing, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read existing export: %w", err)
	}

	if err := os.MkdirAll(backupDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := time.Now().Format("20060102_150405")
	backupPath := filepath.Join(backupDir, fmt.Sprintf("backup_%s_%s.json", stamp, uuid.NewString()[:8]))
	if err := os.WriteFile(backupPath, existing, 0644); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	return nil
}
