// Package record defines the test-configuration record model, its validation
// rules, and the local dataset repository.
package record

import (
	"fmt"
	"strings"
	"time"
)

// Canonical field names. The portal's column mapping is keyed by these.
const (
	FieldPartNumber         = "part_number"
	FieldStation            = "station"
	FieldVersion            = "version"
	FieldDescription        = "description"
	FieldManufacturingGroup = "manufacturing_group"
)

// DefaultManufacturingGroup is the sentinel used when no group is supplied.
const DefaultManufacturingGroup = "DEFAULT"

// FieldOrder is the canonical field ordering used by both the create and edit
// paths when filling grid cells. Do not reorder.
var FieldOrder = []string{
	FieldPartNumber,
	FieldStation,
	FieldVersion,
	FieldDescription,
	FieldManufacturingGroup,
}

// Stations lists the accepted test station codes.
var Stations = []string{"B/I", "FT", "PT", "SHIP", "BI"}

// Record is one test-configuration entry to be synchronized into the portal.
type Record struct {
	PartNumber         string    `json:"part_number" yaml:"part_number"`
	Station            string    `json:"station" yaml:"station"`
	Version            string    `json:"version" yaml:"version"`
	Description        string    `json:"description" yaml:"description"`
	ManufacturingGroup string    `json:"manufacturing_group" yaml:"manufacturing_group"`
	CreatedAt          time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt          time.Time `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
	Source             string    `json:"source,omitempty" yaml:"source,omitempty"`
}

// Field is one (name, value) pair in grid fill order.
type Field struct {
	Name  string
	Value string
}

// Fields returns the record's values in canonical fill order. Both create and
// edit operations use this as their single source of field ordering.
func (r Record) Fields() []Field {
	values := map[string]string{
		FieldPartNumber:         r.PartNumber,
		FieldStation:            r.Station,
		FieldVersion:            r.Version,
		FieldDescription:        r.Description,
		FieldManufacturingGroup: r.ManufacturingGroup,
	}

	fields := make([]Field, 0, len(FieldOrder))
	for _, name := range FieldOrder {
		fields = append(fields, Field{Name: name, Value: values[name]})
	}
	return fields
}

// Normalize trims whitespace, uppercases the part number, and applies the
// manufacturing group default. Call before Validate.
func (r *Record) Normalize() {
	r.PartNumber = strings.ToUpper(strings.TrimSpace(r.PartNumber))
	r.Station = strings.TrimSpace(r.Station)
	r.Version = strings.TrimSpace(r.Version)
	r.Description = strings.TrimSpace(r.Description)
	r.ManufacturingGroup = strings.TrimSpace(r.ManufacturingGroup)
	if r.ManufacturingGroup == "" {
		r.ManufacturingGroup = DefaultManufacturingGroup
	}
}

// Validate checks the hard business rules. Records failing validation are
// never handed to the grid orchestrator.
func (r Record) Validate() error {
	if len(r.PartNumber) < 3 {
		return fmt.Errorf("part number must be at least 3 characters, got %q", r.PartNumber)
	}
	if !validStation(r.Station) {
		return fmt.Errorf("station must be one of %v, got %q", Stations, r.Station)
	}
	if len(r.Version) < 5 {
		return fmt.Errorf("version must be at least 5 characters, got %q", r.Version)
	}
	if len(r.Description) < 3 {
		return fmt.Errorf("description must be at least 3 characters, got %q", r.Description)
	}
	if r.ManufacturingGroup == "" {
		return fmt.Errorf("manufacturing group must not be empty")
	}
	return nil
}

func validStation(station string) bool {
	for _, s := range Stations {
		if station == s {
			return true
		}
	}
	return false
}

// String returns a short human-readable summary for logs and CLI output.
func (r Record) String() string {
	return fmt.Sprintf("%s [%s] %s", r.PartNumber, r.Station, r.Version)
}
