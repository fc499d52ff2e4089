package codec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/stoewer/go-strcase"
)

// requiredTag marks a field that must be present (and non-null) in a payload:
//
//	ID string `zoom:"required"`
const requiredTag = "zoom"

var (
	timeType   = reflect.TypeOf(time.Time{})
	numberType = reflect.TypeOf(json.Number(""))
)

// DecodingError reports a payload that does not match its target shape. It is distinct
// from HTTP failures: the server answered, the client could not understand it.
type DecodingError struct {
	Target string
	Err    error
}

func (e *DecodingError) Error() string {
	return fmt.Sprintf("codec: decode %s: %v", e.Target, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

// Decode parses body and projects it onto a new T.
func Decode[T any](body []byte) (T, error) {
	var out T
	err := DecodeInto(body, &out)
	return out, err
}

// DecodeInto parses body and projects it onto target, which must be a pointer.
func DecodeInto(body []byte, target any) error {
	raw, err := Parse(body)
	if err != nil {
		return &DecodingError{Target: targetName(target), Err: err}
	}
	return Project(raw, target)
}

// DecodePair parses body once and projects the same raw value onto two independent
// shapes. It succeeds only if both projections succeed.
func DecodePair[A, B any](body []byte) (A, B, error) {
	var (
		a A
		b B
	)
	raw, err := Parse(body)
	if err != nil {
		return a, b, &DecodingError{Target: fmt.Sprintf("(%s, %s)", targetName(&a), targetName(&b)), Err: err}
	}
	if err := Project(raw, &a); err != nil {
		var zeroA A
		return zeroA, b, err
	}
	if err := Project(raw, &b); err != nil {
		var zeroA A
		var zeroB B
		return zeroA, zeroB, err
	}
	return a, b, nil
}

// Parse reads a JSON payload into a generic tree without interpreting keys.
func Parse(body []byte) (any, error) {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return parseTree(body)
}

// Project maps a parsed tree onto target using the wire rules: snake_case keys match
// Go field names, dates are RFC 3339.
func Project(raw any, target any) error {
	name := targetName(target)
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &DecodingError{Target: name, Err: fmt.Errorf("target must be a non-nil pointer")}
	}

	if err := checkRequired(rv.Elem().Type(), raw, ""); err != nil {
		return &DecodingError{Target: name, Err: err}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(numberToStringHook, isoTimeHook),
		Result:     target,
		TagName:    "json",
		Squash:     true,
		MatchName:  wireNameMatches,
	})
	if err != nil {
		return &DecodingError{Target: name, Err: err}
	}
	if err := dec.Decode(raw); err != nil {
		return &DecodingError{Target: name, Err: err}
	}
	return nil
}

// numberToStringHook rejects a JSON number bound to a string field.
func numberToStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from == numberType && to.Kind() == reflect.String {
		return nil, fmt.Errorf("expected string, got number %v", data)
	}
	return data, nil
}

func isoTimeHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType || from.Kind() != reflect.String || from == numberType {
		return data, nil
	}
	s := reflect.ValueOf(data).String()
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("malformed date %q: %w", s, err)
	}
	return t, nil
}

// checkRequired walks t alongside raw and fails on the first missing required field.
func checkRequired(t reflect.Type, raw any, path string) error {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Slice, reflect.Array:
		items, ok := raw.([]any)
		if !ok {
			return nil
		}
		for i, item := range items {
			if err := checkRequired(t.Elem(), item, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	case reflect.Struct:
		if t == timeType {
			return nil
		}
	default:
		return nil
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := checkRequired(field.Type, obj, path); err != nil {
				return err
			}
			continue
		}

		name := fieldWireName(field)
		val, present := lookup(obj, name)
		fieldPath := name
		if path != "" {
			fieldPath = path + "." + name
		}
		if field.Tag.Get(requiredTag) == "required" && (!present || val == nil) {
			return fmt.Errorf("missing required field %q", strcase.SnakeCase(fieldPath))
		}
		if present && val != nil {
			if err := checkRequired(field.Type, val, fieldPath); err != nil {
				return err
			}
		}
	}
	return nil
}

func fieldWireName(field reflect.StructField) string {
	if tag, _, _ := strings.Cut(field.Tag.Get("json"), ","); tag != "" {
		return tag
	}
	return field.Name
}

func lookup(obj map[string]any, fieldName string) (any, bool) {
	for k, v := range obj {
		if wireNameMatches(k, fieldName) {
			return v, true
		}
	}
	return nil, false
}

func targetName(target any) string {
	t := reflect.TypeOf(target)
	if t == nil {
		return "<nil>"
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.String()
}
