package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var recordValidator = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return AttendanceStatus(fl.Field().String()).Valid()
	})
	return v
}

// ValidateRecord checks the validate tags of a record struct.
func ValidateRecord(record interface{}) error {
	if err := recordValidator.Struct(record); err != nil {
		return fmt.Errorf("invalid %s: %w", recordName(record), err)
	}
	return nil
}

// DecodeRecord builds a typed record from a loosely shaped map. Unknown keys
// are rejected, every json key without omitempty must be present (null is
// allowed for pointer fields), and validate tags are enforced.
func DecodeRecord(raw map[string]interface{}, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("decode record: destination must be a non-nil struct pointer")
	}
	if missing := missingKeys(rv.Elem().Type(), raw); len(missing) > 0 {
		return fmt.Errorf("decode %s: missing keys %s", recordName(dst), strings.Join(missing, ", "))
	}
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("decode %s: %w", recordName(dst), err)
	}
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", recordName(dst), err)
	}
	return ValidateRecord(dst)
}

func missingKeys(t reflect.Type, raw map[string]interface{}) []string {
	var missing []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" || strings.Contains(opts, "omitempty") {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

func recordName(record interface{}) string {
	t := reflect.TypeOf(record)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "record"
	}
	return t.Name()
}
