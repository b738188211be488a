package dynapatch

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// RecordLocation contains the deployment configuration that locates records.
// It is supplied by the hosting platform, never by the caller.
type RecordLocation struct {
	TableName  string            `json:"table_name" yaml:"table_name"`                     // DynamoDB table name
	PrimaryKey string            `json:"primary_key" yaml:"primary_key"`                   // Attribute that must appear in every filter
	IndexData  map[string]string `json:"index_data,omitempty" yaml:"index_data,omitempty"` // Secondary index metadata, carried but unused
}

// NewRecordLocation creates a RecordLocation for the table and primary key.
func NewRecordLocation(tableName, primaryKey string) RecordLocation {
	return RecordLocation{
		TableName:  tableName,
		PrimaryKey: primaryKey,
	}
}

// Validate returns an [ErrInvalidConfig] error if the table name or primary key is missing.
func (l RecordLocation) Validate() error {
	var missing []string
	if l.TableName == "" {
		missing = append(missing, "table_name")
	}
	if l.PrimaryKey == "" {
		missing = append(missing, "primary_key")
	}
	if len(missing) > 0 {
		return newError(CodeInvalidConfig, "missing "+strings.Join(missing, ", "), nil)
	}
	return nil
}

// ParseRecordLocation decodes a JSON deployment configuration and validates it.
func ParseRecordLocation(data []byte) (RecordLocation, error) {
	var loc RecordLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return loc, newError(CodeInvalidConfig, "failed to decode deployment configuration", err)
	}
	return loc, loc.Validate()
}

// LoadRecordLocationFile reads a deployment configuration file. Files ending in
// .json are decoded as JSON; anything else is decoded as YAML.
func LoadRecordLocationFile(path string) (RecordLocation, error) {
	var loc RecordLocation

	data, err := os.ReadFile(path)
	if err != nil {
		return loc, newError(CodeInvalidConfig, fmt.Sprintf("failed to read %s", path), err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		return ParseRecordLocation(data)
	}

	if err := yaml.Unmarshal(data, &loc); err != nil {
		return loc, newError(CodeInvalidConfig, fmt.Sprintf("failed to decode %s", path), err)
	}
	return loc, loc.Validate()
}
