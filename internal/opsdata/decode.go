package opsdata

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/dashboard_data.schema.json
var schemaJSON []byte

// ErrEmptyPayload is returned when a source yields no bytes.
var ErrEmptyPayload = errors.New("opsdata: empty payload")

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects schema violations for a payload.
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("opsdata: payload failed validation:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("\n  %d. %s: %s", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Schema returns the embedded JSON Schema describing the payload.
func Schema() []byte {
	return schemaJSON
}

// Validate checks raw against the payload schema. Only the shape is checked;
// ordering and referential integrity are left to the producer.
func Validate(raw []byte) error {
	if len(raw) == 0 {
		return ErrEmptyPayload
	}
	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("opsdata: validate: %w", err)
	}
	if result.Valid() {
		return nil
	}
	vErr := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		vErr.Errors = append(vErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return vErr
}

// Decode reads a payload from r. Nil maps are replaced with empty ones so
// lookups never need a nil check.
func Decode(r io.Reader) (*Data, error) {
	var data Data
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyPayload
		}
		return nil, fmt.Errorf("opsdata: decode: %w", err)
	}
	data.normalize()
	return &data, nil
}

// Parse validates raw and decodes it.
func Parse(raw []byte) (*Data, error) {
	if err := Validate(raw); err != nil {
		return nil, err
	}
	return Decode(bytes.NewReader(raw))
}

func (d *Data) normalize() {
	if d.AvailableWeeks == nil {
		d.AvailableWeeks = []string{}
	}
	if d.WeeklySummary == nil {
		d.WeeklySummary = map[string]WeekSummary{}
	}
	if d.WeeklyEmployees == nil {
		d.WeeklyEmployees = map[string]map[string]ProviderWeek{}
	}
	if d.WeeklyUnits == nil {
		d.WeeklyUnits = map[string]map[string]ServiceLineWeek{}
	}
	if d.EmployeeTrends == nil {
		d.EmployeeTrends = map[string][]TrendPoint{}
	}
	if d.UnitTrends == nil {
		d.UnitTrends = map[string][]TrendPoint{}
	}
}
