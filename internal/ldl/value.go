package ldl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	"gopkg.in/yaml.v3"
)

// Kind is the stored type tag of a parameter value.
type Kind string

const (
	KindNull   Kind = "null"
	KindString Kind = "string"
	KindInt    Kind = "integer"
	KindFloat  Kind = "number"
	KindBool   Kind = "boolean"
	KindArray  Kind = "array"
	KindObject Kind = "object"
)

// Value is a sealed interface over the parameter value variants.
// Only Null, String, Int, Float, Bool, Array, and Object implement it.
type Value interface {
	Kind() Kind
	ldlValue() // Sealed
}

// Null represents an explicit null parameter value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) ldlValue()  {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// String is a text value.
type String string

func (String) Kind() Kind { return KindString }
func (String) ldlValue()  {}

// Int is an integral numeric value.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) ldlValue()  {}

// Float is a non-integral numeric value. Float(2) is still a Float: the
// variant comes from how the number was written, not from its magnitude.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) ldlValue()  {}

// MarshalJSON keeps a decimal point on integral floats so that the value
// decodes back as a Float.
func (f Float) MarshalJSON() ([]byte, error) {
	s, err := formatFloat(float64(f))
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) ldlValue()  {}

// Array is an ordered list of values.
type Array []Value

func (Array) Kind() Kind { return KindArray }
func (Array) ldlValue()  {}

// Object is a map of string keys to values.
// Use SortedKeys for deterministic iteration.
type Object map[string]Value

func (Object) Kind() Kind { return KindObject }
func (Object) ldlValue()  {}

// SortedKeys returns keys ordered by UTF-16 code units (RFC 8785 order).
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareUTF16)
	return keys
}

func compareUTF16(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))
	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	return len(a16) - len(b16)
}

// MarshalJSON implements json.Marshaler for Object using canonical encoding.
func (obj Object) MarshalJSON() ([]byte, error) {
	return appendCanonical(nil, obj, false)
}

// MarshalJSON implements json.Marshaler for Array using canonical encoding.
func (arr Array) MarshalJSON() ([]byte, error) {
	return appendCanonical(nil, arr, false)
}

// UnmarshalJSON implements json.Unmarshaler for Object.
// Numbers with a fraction or exponent become Float, all others Int.
func (obj *Object) UnmarshalJSON(data []byte) error {
	v, err := ParseValue(string(data))
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case Object:
		*obj = val
	case Null:
		*obj = nil
	default:
		return fmt.Errorf("expected object, got %s", v.Kind())
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	v, err := ParseValue(string(data))
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case Array:
		*arr = val
	case Null:
		*arr = nil
	default:
		return fmt.Errorf("expected array, got %s", v.Kind())
	}
	return nil
}

// ParseValue decodes JSON text into a Value.
func ParseValue(text string) (Value, error) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse value: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("parse value: trailing data after JSON value")
	}
	return fromNative(raw)
}

// FromNative converts a decoded Go value (as produced by encoding/json or
// yaml.v3 into an interface{}) into a Value.
func FromNative(v any) (Value, error) {
	return fromNative(v)
}

func fromNative(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of range: %d", val)
		}
		return Int(val), nil
	case float64:
		return Float(val), nil
	case json.Number:
		s := string(val)
		if strings.ContainsAny(s, ".eE") {
			f, err := val.Float64()
			if err != nil {
				return nil, fmt.Errorf("invalid number %s: %w", s, err)
			}
			return Float(f), nil
		}
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("number out of int64 range: %s", s)
		}
		return Int(n), nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			e, err := fromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = e
		}
		return arr, nil
	case map[string]any:
		obj := make(Object, len(val))
		for k, elem := range val {
			e, err := fromNative(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = e
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported value type: %T", v)
	}
}

// Native converts a Value back into plain Go values (string, int64, float64,
// bool, []any, map[string]any, nil).
func Native(v Value) any {
	switch val := v.(type) {
	case String:
		return string(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case Bool:
		return bool(val)
	case Array:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = Native(e)
		}
		return out
	case Object:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = Native(e)
		}
		return out
	default:
		return nil
	}
}

// UnmarshalYAML implements yaml.Unmarshaler for Object.
// The variant is taken from the resolved node tag (!!int, !!float, ...).
func (obj *Object) UnmarshalYAML(node *yaml.Node) error {
	v, err := valueFromNode(node)
	if err != nil {
		return err
	}
	switch val := v.(type) {
	case Object:
		*obj = val
	case Null:
		*obj = nil
	default:
		return fmt.Errorf("line %d: expected mapping, got %s", node.Line, v.Kind())
	}
	return nil
}

// MarshalYAML implements yaml.Marshaler for Object.
func (obj Object) MarshalYAML() (any, error) {
	return valueToNode(obj)
}

func valueFromNode(node *yaml.Node) (Value, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return valueFromNode(node.Content[0])
	case yaml.AliasNode:
		return valueFromNode(node.Alias)
	case yaml.MappingNode:
		obj := make(Object, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i].Value
			v, err := valueFromNode(node.Content[i+1])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", key, err)
			}
			obj[key] = v
		}
		return obj, nil
	case yaml.SequenceNode:
		arr := make(Array, len(node.Content))
		for i, n := range node.Content {
			v, err := valueFromNode(n)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return Null{}, nil
		case "!!bool":
			var b bool
			if err := node.Decode(&b); err != nil {
				return nil, err
			}
			return Bool(b), nil
		case "!!int":
			var n int64
			if err := node.Decode(&n); err != nil {
				return nil, err
			}
			return Int(n), nil
		case "!!float":
			var f float64
			if err := node.Decode(&f); err != nil {
				return nil, err
			}
			return Float(f), nil
		default:
			return String(node.Value), nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", node.Line)
	}
}

func valueToNode(v Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case Null, nil:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}, nil
	case Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(int64(val), 10)}, nil
	case Float:
		s, err := formatFloat(float64(val))
		if err != nil {
			return nil, err
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}, nil
	case Bool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(bool(val))}, nil
	case Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, e := range val {
			n, err := valueToNode(e)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, n)
		}
		return node, nil
	case Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.SortedKeys() {
			n, err := valueToNode(val[k])
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, n)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// formatFloat renders f as the shortest decimal that round-trips, keeping a
// fraction or exponent so the text still reads back as a Float.
func formatFloat(f float64) (string, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("non-finite number: %v", f)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s, nil
}

// Equal reports whether two values are the same variant with equal contents.
func Equal(a, b Value) bool {
	ea, errA := appendCanonical(nil, a, false)
	eb, errB := appendCanonical(nil, b, false)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(ea, eb)
}
