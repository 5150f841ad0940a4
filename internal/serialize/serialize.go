// Package serialize converts resource descriptors to CloudFormation properties.
package serialize

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/lex00/hedgedoc-aws-go/output"
)

// RedactedValue replaces secret values when Options.Redact is set.
const RedactedValue = "[secret]"

// ErrUnresolvedInput is returned when a descriptor holds a deferred value
// and no Resolve function was supplied.
var ErrUnresolvedInput = errors.New("serialize: deferred value without resolver")

// Options controls how deferred values are handled.
type Options struct {
	// Resolve returns the concrete value of a deferred input.
	Resolve func(output.Input) (any, error)
	// Redact replaces secret inputs with RedactedValue instead of resolving them.
	Redact bool
}

// Resource serializes a Go struct to CloudFormation resource properties.
// It handles:
// - PascalCase field names (BucketName, not bucket_name)
// - Omitting nil/zero values
// - Nested structs, slices and maps
// - Deferred values (output.Input), which are an error here; use ResourceWith
func Resource(v any) (map[string]any, error) {
	return ResourceWith(v, Options{})
}

// ResourceWith serializes v, resolving deferred values through opts.
func ResourceWith(v any, opts Options) (map[string]any, error) {
	s := &serializer{opts: opts}
	return s.structFields(reflect.ValueOf(v))
}

// Value serializes a single value, which may itself be a deferred input.
func Value(v any, opts Options) (any, error) {
	s := &serializer{opts: opts}
	return s.value(reflect.ValueOf(v))
}

// Inputs returns every deferred value reachable from v, in field order.
// It never blocks.
func Inputs(v any) []output.Input {
	var inputs []output.Input
	collectInputs(reflect.ValueOf(v), &inputs)
	return inputs
}

// Dependencies returns the sorted union of the dependencies of all
// deferred values reachable from v.
func Dependencies(v any) []string {
	return output.DependenciesOf(Inputs(v)...)
}

type serializer struct {
	opts Options
}

func (s *serializer) structFields(val reflect.Value) (map[string]any, error) {
	for val.Kind() == reflect.Ptr || val.Kind() == reflect.Interface {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}

	if val.Kind() != reflect.Struct {
		return nil, nil
	}

	result := make(map[string]any)
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := typ.Field(i)
		fieldVal := val.Field(i)

		// Skip unexported fields
		if !field.IsExported() {
			continue
		}

		name := getFieldName(field)
		if name == "-" {
			continue
		}

		if isZeroValue(fieldVal) {
			continue
		}

		serialized, err := s.value(fieldVal)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if serialized != nil {
			result[name] = serialized
		}
	}

	return result, nil
}

// getFieldName returns the JSON field name for a struct field.
func getFieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" {
		return field.Name
	}

	parts := strings.Split(tag, ",")
	name := parts[0]
	if name == "" {
		return field.Name
	}
	return name
}

// isZeroValue returns true if the value is the zero value for its type.
func isZeroValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Struct:
		// Check if it has an IsZero method
		if v.CanInterface() {
			if zeroer, ok := v.Interface().(interface{ IsZero() bool }); ok {
				return zeroer.IsZero()
			}
		}
		return false
	default:
		return false
	}
}

func asInput(v reflect.Value) (output.Input, bool) {
	if !v.IsValid() || !v.CanInterface() {
		return nil, false
	}
	in, ok := v.Interface().(output.Input)
	return in, ok
}

// value converts a reflect.Value to a JSON-compatible value.
func (s *serializer) value(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	if in, ok := asInput(v); ok {
		return s.input(in)
	}

	// Handle pointers
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return nil, nil
		}
		return s.value(v.Elem())
	}

	// Handle interfaces
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, nil
		}
		return s.value(v.Elem())
	}

	// Check if the value implements json.Marshaler
	if v.CanInterface() {
		if marshaler, ok := v.Interface().(json.Marshaler); ok {
			data, err := marshaler.MarshalJSON()
			if err != nil {
				return nil, err
			}
			var result any
			if err := json.Unmarshal(data, &result); err != nil {
				return nil, err
			}
			return result, nil
		}
	}

	switch v.Kind() {
	case reflect.Struct:
		return s.structFields(v)

	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make([]any, v.Len())
		for i := 0; i < v.Len(); i++ {
			elem, err := s.value(v.Index(i))
			if err != nil {
				return nil, err
			}
			result[i] = elem
		}
		return result, nil

	case reflect.Map:
		if v.Len() == 0 {
			return nil, nil
		}
		result := make(map[string]any)
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			val, err := s.value(iter.Value())
			if err != nil {
				return nil, err
			}
			result[key] = val
		}
		return result, nil

	case reflect.String:
		return v.String(), nil

	case reflect.Bool:
		return v.Bool(), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint(), nil

	case reflect.Float32, reflect.Float64:
		return v.Float(), nil

	default:
		// Fall back to JSON marshaling
		data, err := json.Marshal(v.Interface())
		if err != nil {
			return nil, err
		}
		var result any
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, err
		}
		return result, nil
	}
}

func (s *serializer) input(in output.Input) (any, error) {
	if s.opts.Redact && in.IsSecret() {
		return RedactedValue, nil
	}
	if s.opts.Resolve == nil {
		return nil, ErrUnresolvedInput
	}
	resolved, err := s.opts.Resolve(in)
	if err != nil {
		return nil, err
	}
	// Resolved values may themselves be descriptors (e.g. a policy
	// document built inside Apply).
	return s.value(reflect.ValueOf(resolved))
}

func collectInputs(v reflect.Value, inputs *[]output.Input) {
	if !v.IsValid() {
		return
	}
	if in, ok := asInput(v); ok {
		*inputs = append(*inputs, in)
		return
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if !v.IsNil() {
			collectInputs(v.Elem(), inputs)
		}
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if v.Type().Field(i).IsExported() {
				collectInputs(v.Field(i), inputs)
			}
		}
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			collectInputs(v.Index(i), inputs)
		}
	case reflect.Map:
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		for _, k := range keys {
			collectInputs(v.MapIndex(k), inputs)
		}
	}
}

// LogicalID converts a resource name such as "hedgedoc1-db-subnets" to a
// CloudFormation logical id ("Hedgedoc1DbSubnets"). Any character that is
// not a letter or digit starts a new word.
func LogicalID(name string) string {
	var result strings.Builder
	capitalizeNext := true

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			capitalizeNext = true
			continue
		}
		if r > unicode.MaxASCII {
			continue
		}
		if capitalizeNext {
			result.WriteRune(unicode.ToUpper(r))
			capitalizeNext = false
		} else {
			result.WriteRune(r)
		}
	}

	return result.String()
}
