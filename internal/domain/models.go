// Package domain provides the traffic light timing model and the panel's fixed message catalog.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidForm is returned when a form does not pass validation
var ErrInvalidForm = errors.New("invalid timing form")

// TimingConfig is the configuration record stored on the traffic light controller.
// All values are positive integers and LowerIntervalBorder < UpperIntervalBorder.
type TimingConfig struct {
	GreenLightDuration     int `json:"greenLightDuration"`
	YellowLightDuration    int `json:"yellowLightDuration"`
	YellowRedLightDuration int `json:"yellowRedLightDuration"`
	LowerIntervalBorder    int `json:"lowerIntervalBorder"`
	UpperIntervalBorder    int `json:"upperIntervalBorder"`
}

// Validate checks field positivity and interval ordering
func (c TimingConfig) Validate() error {
	if errs := FormFromConfig(c).Validate(); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

// FieldID identifies one of the five form fields
type FieldID string

const (
	FieldGreen     FieldID = "greenDuration"
	FieldYellow    FieldID = "yellowDuration"
	FieldYellowRed FieldID = "yellowRedDuration"
	FieldRedLower  FieldID = "redLower"
	FieldRedUpper  FieldID = "redUpper"
)

// FieldOrder is the order fields appear in the panel and in reports
var FieldOrder = []FieldID{FieldGreen, FieldYellow, FieldYellowRed, FieldRedLower, FieldRedUpper}

var fieldLabels = map[FieldID]string{
	FieldGreen:     "Green light duration",
	FieldYellow:    "Yellow light duration",
	FieldYellowRed: "Yellow-red light duration",
	FieldRedLower:  "Red light interval (lower border)",
	FieldRedUpper:  "Red light interval (upper border)",
}

// Label returns the human readable label of the field
func (f FieldID) Label() string {
	if label, ok := fieldLabels[f]; ok {
		return label
	}
	return string(f)
}

// Form holds the raw values the user typed, keyed the same way the panel view names its inputs.
type Form struct {
	GreenDuration     string `json:"greenDuration"`
	YellowDuration    string `json:"yellowDuration"`
	YellowRedDuration string `json:"yellowRedDuration"`
	RedLower          string `json:"redLower"`
	RedUpper          string `json:"redUpper"`
}

// UnmarshalJSON accepts each field as a JSON string or a JSON number.
// Numbers keep their literal text so validation sees what was sent.
func (f *Form) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}

	var raw struct {
		GreenDuration     json.RawMessage `json:"greenDuration"`
		YellowDuration    json.RawMessage `json:"yellowDuration"`
		YellowRedDuration json.RawMessage `json:"yellowRedDuration"`
		RedLower          json.RawMessage `json:"redLower"`
		RedUpper          json.RawMessage `json:"redUpper"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		raw  json.RawMessage
		dst  *string
	}{
		{"greenDuration", raw.GreenDuration, &f.GreenDuration},
		{"yellowDuration", raw.YellowDuration, &f.YellowDuration},
		{"yellowRedDuration", raw.YellowRedDuration, &f.YellowRedDuration},
		{"redLower", raw.RedLower, &f.RedLower},
		{"redUpper", raw.RedUpper, &f.RedUpper},
	}
	for _, field := range fields {
		value, err := formValue(field.raw)
		if err != nil {
			return fmt.Errorf("form field %s: %w", field.name, err)
		}
		*field.dst = value
	}
	return nil
}

func formValue(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	return n.String(), nil
}

// FormFromConfig renders a configuration into form values
func FormFromConfig(c TimingConfig) Form {
	return Form{
		GreenDuration:     strconv.Itoa(c.GreenLightDuration),
		YellowDuration:    strconv.Itoa(c.YellowLightDuration),
		YellowRedDuration: strconv.Itoa(c.YellowRedLightDuration),
		RedLower:          strconv.Itoa(c.LowerIntervalBorder),
		RedUpper:          strconv.Itoa(c.UpperIntervalBorder),
	}
}

// Value returns the raw value of a field
func (f Form) Value(id FieldID) string {
	switch id {
	case FieldGreen:
		return f.GreenDuration
	case FieldYellow:
		return f.YellowDuration
	case FieldYellowRed:
		return f.YellowRedDuration
	case FieldRedLower:
		return f.RedLower
	case FieldRedUpper:
		return f.RedUpper
	}
	return ""
}

// FieldError describes one invalid field
type FieldError struct {
	Field  FieldID `json:"field"`
	Label  string  `json:"label"`
	Value  string  `json:"value"`
	Reason string  `json:"reason"`
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %q (%s)", e.Label, e.Value, e.Reason)
}

// ValidationError collects all invalid fields of a form
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	return InvalidFieldsReport(e.Fields)
}

// Unwrap lets callers match ErrInvalidForm
func (e *ValidationError) Unwrap() error {
	return ErrInvalidForm
}

func positive(raw string) (int, string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, "value is required"
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, "value must be a whole number"
	}
	if n <= 0 {
		return n, "value must be greater than zero"
	}
	return n, ""
}

// Validate returns every invalid field in panel order.
// The interval borders are checked together: when lower >= upper both are reported.
func (f Form) Validate() []FieldError {
	var errs []FieldError
	add := func(id FieldID, reason string) {
		errs = append(errs, FieldError{
			Field:  id,
			Label:  id.Label(),
			Value:  f.Value(id),
			Reason: reason,
		})
	}

	for _, id := range []FieldID{FieldGreen, FieldYellow, FieldYellowRed} {
		if _, reason := positive(f.Value(id)); reason != "" {
			add(id, reason)
		}
	}

	lower, lowerReason := positive(f.RedLower)
	upper, upperReason := positive(f.RedUpper)
	ordered := lowerReason == "" && upperReason == "" && lower < upper

	switch {
	case lowerReason != "":
		add(FieldRedLower, lowerReason)
	case !ordered && upperReason == "":
		add(FieldRedLower, "lower border must be smaller than the upper border")
	}
	switch {
	case upperReason != "":
		add(FieldRedUpper, upperReason)
	case !ordered && lowerReason == "":
		add(FieldRedUpper, "upper border must be greater than the lower border")
	}

	return errs
}

// Parse validates the form and converts it into a configuration record
func (f Form) Parse() (TimingConfig, error) {
	if errs := f.Validate(); len(errs) > 0 {
		return TimingConfig{}, &ValidationError{Fields: errs}
	}

	// Validate guarantees every field parses
	atoi := func(s string) int {
		n, _ := strconv.Atoi(strings.TrimSpace(s))
		return n
	}

	return TimingConfig{
		GreenLightDuration:     atoi(f.GreenDuration),
		YellowLightDuration:    atoi(f.YellowDuration),
		YellowRedLightDuration: atoi(f.YellowRedDuration),
		LowerIntervalBorder:    atoi(f.RedLower),
		UpperIntervalBorder:    atoi(f.RedUpper),
	}, nil
}

// InvalidFieldsReport renders the toast text listing invalid fields
func InvalidFieldsReport(errs []FieldError) string {
	entries := make([]string, 0, len(errs))
	for _, e := range errs {
		entries = append(entries, fmt.Sprintf("%s: %q\n", e.Label, e.Value))
	}
	return "The following fields are invalid: " + strings.Join(entries, ", ")
}
