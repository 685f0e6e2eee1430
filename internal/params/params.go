// Package params reads typed values out of the untyped parameter bags that
// arrive with channel action requests. Bags come from JSON-decoded tool
// arguments or HTTP bodies, so values are strings, float64 numbers, bools,
// or []interface{} slices.
package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/bytedance/gg/gconv"
)

// Bag is a read-only view of one request's parameters.
type Bag = map[string]interface{}

// ErrInvalid marks a parameter validation failure. Every error returned by
// the readers wraps it and names the offending field.
var ErrInvalid = errors.New("invalid parameter")

// Opt controls how a single field is read. The zero value means optional,
// trimmed, non-empty, any numeric value.
type Opt struct {
	// Required fails the read when the field is absent or blank.
	Required bool
	// AllowEmpty lets an empty string pass even when Required is set.
	AllowEmpty bool
	// NoTrim keeps leading/trailing whitespace on string values.
	NoTrim bool
	// Integer rejects numeric values with a fractional component.
	Integer bool
}

// Missing builds the validation error for an absent required field. Action
// builders use it directly for fields resolved through several aliases.
func Missing(name string) error {
	return fmt.Errorf("%w: missing required field %q", ErrInvalid, name)
}

func typeErr(name, want string) error {
	return fmt.Errorf("%w: field %q must be %s", ErrInvalid, name, want)
}

// String reads a text field. Absent or blank optional fields read as "".
func String(bag Bag, name string, opt Opt) (string, error) {
	v, ok := bag[name]
	if !ok || v == nil {
		if opt.Required {
			return "", Missing(name)
		}
		return "", nil
	}
	s := gconv.To[string](v)
	if !opt.NoTrim {
		s = strings.TrimSpace(s)
	}
	if s == "" && !opt.AllowEmpty {
		if opt.Required {
			return "", Missing(name)
		}
		return "", nil
	}
	return s, nil
}

// StringOrNumber reads an identifier that may be a string or a number and
// returns it unmodified. Chat targets and message ids use this shape since
// a provider may accept either a numeric id or an "@username" form.
func StringOrNumber(bag Bag, name string, opt Opt) (interface{}, error) {
	v, ok := bag[name]
	if !ok || v == nil {
		if opt.Required {
			return nil, Missing(name)
		}
		return nil, nil
	}
	switch t := v.(type) {
	case string:
		s := t
		if !opt.NoTrim {
			s = strings.TrimSpace(s)
		}
		if s == "" && !opt.AllowEmpty {
			if opt.Required {
				return nil, Missing(name)
			}
			return nil, nil
		}
		return s, nil
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return v, nil
	default:
		return nil, typeErr(name, "a string or number")
	}
}

// Float reads a numeric field. Numeric strings are accepted. A nil result
// means the field was absent.
func Float(bag Bag, name string, opt Opt) (*float64, error) {
	v, ok := bag[name]
	if !ok || v == nil {
		if opt.Required {
			return nil, Missing(name)
		}
		return nil, nil
	}
	var f float64
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			if opt.Required {
				return nil, Missing(name)
			}
			return nil, nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, typeErr(name, "a number")
		}
		f = parsed
	case float64:
		f = t
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		f = gconv.To[float64](v)
	default:
		return nil, typeErr(name, "a number")
	}
	if opt.Integer && f != math.Trunc(f) {
		return nil, typeErr(name, "an integer")
	}
	return &f, nil
}

// Int reads an integer field. Fractional values are rejected.
func Int(bag Bag, name string, opt Opt) (*int, error) {
	opt.Integer = true
	f, err := Float(bag, name, opt)
	if err != nil || f == nil {
		return nil, err
	}
	n := int(*f)
	return &n, nil
}

// Bool reads a relaxed boolean flag. true, "true", "1", "yes" and nonzero
// numbers count as set. Absent or unrecognized values read as false.
func Bool(bag Bag, name string) bool {
	v, ok := bag[name]
	if !ok || v == nil {
		return false
	}
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "1" || s == "yes"
	case float64:
		return t != 0
	default:
		return gconv.To[bool](v)
	}
}

// StringSlice reads an array field whose elements must all be strings.
// Returns nil when the field is absent.
func StringSlice(bag Bag, name string, opt Opt) ([]string, error) {
	v, ok := bag[name]
	if !ok || v == nil {
		if opt.Required {
			return nil, Missing(name)
		}
		return nil, nil
	}
	switch t := v.(type) {
	case []string:
		out := make([]string, 0, len(t))
		for _, s := range t {
			if !opt.NoTrim {
				s = strings.TrimSpace(s)
			}
			out = append(out, s)
		}
		return out, nil
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, el := range t {
			s, isStr := el.(string)
			if !isStr {
				return nil, typeErr(name, "an array of strings")
			}
			if !opt.NoTrim {
				s = strings.TrimSpace(s)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, typeErr(name, "an array of strings")
	}
}

// AnySlice returns the raw elements of an array field without element
// validation. Callers coerce as needed.
func AnySlice(bag Bag, name string) ([]interface{}, bool) {
	v, ok := bag[name].([]interface{})
	return v, ok
}

// FirstString returns the value of the first key that reads as a non-empty
// trimmed string. Used for aliased fields where caller layers supply
// different names for the same thing.
func FirstString(bag Bag, keys ...string) string {
	for _, key := range keys {
		if v, ok := bag[key]; ok && v != nil {
			if s := strings.TrimSpace(gconv.To[string](v)); s != "" {
				return s
			}
		}
	}
	return ""
}

// First returns the value of the first present key, skipping nils and
// blank strings. String values come back trimmed, numbers unmodified. The
// second result reports whether any key matched.
func First(bag Bag, keys ...string) (interface{}, bool) {
	for _, key := range keys {
		v, ok := bag[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr {
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			return s, true
		}
		return v, true
	}
	return nil, false
}
