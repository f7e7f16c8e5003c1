package ldl

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DomainProject prefixes project content hashes. The version suffix allows a
// future change of encoding without colliding with stored hashes.
const DomainProject = "lumos/project/v1"

// EncodeValue produces the canonical text form of a value:
//   - object keys sorted by UTF-16 code units
//   - strings kept byte for byte, no HTML escaping
//   - integral floats keep a ".0" suffix
//
// This is the only encoding used for structured values in text columns.
// Document.Hash additionally NFC-normalizes strings; stored text never is.
func EncodeValue(v Value) (string, error) {
	b, err := appendCanonical(nil, v, false)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParameterText is the text stored in a parameter's default value column.
// Strings are stored as-is; every other variant uses EncodeValue.
func ParameterText(v Value) (string, error) {
	if s, ok := v.(String); ok {
		return string(s), nil
	}
	return EncodeValue(v)
}

// ParameterValue reverses ParameterText given the stored type tag.
func ParameterValue(kind Kind, text string) (Value, error) {
	if kind == KindString {
		return String(text), nil
	}
	v, err := ParseValue(text)
	if err != nil {
		return nil, fmt.Errorf("parameter of kind %s: %w", kind, err)
	}
	if kind == KindFloat {
		if n, ok := v.(Int); ok {
			v = Float(n)
		}
	}
	if v.Kind() != kind {
		return nil, fmt.Errorf("parameter tagged %s decoded as %s", kind, v.Kind())
	}
	return v, nil
}

func appendCanonical(buf []byte, v Value, nfc bool) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return append(buf, "null"...), nil
	case String:
		return appendCanonicalString(buf, string(val), nfc), nil
	case Int:
		return strconv.AppendInt(buf, int64(val), 10), nil
	case Float:
		s, err := formatFloat(float64(val))
		if err != nil {
			return nil, err
		}
		return append(buf, s...), nil
	case Bool:
		return strconv.AppendBool(buf, bool(val)), nil
	case Array:
		buf = append(buf, '[')
		for i, e := range val {
			if i > 0 {
				buf = append(buf, ',')
			}
			var err error
			if buf, err = appendCanonical(buf, e, nfc); err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
		}
		return append(buf, ']'), nil
	case Object:
		buf = append(buf, '{')
		for i, k := range val.SortedKeys() {
			if i > 0 {
				buf = append(buf, ',')
			}
			buf = appendCanonicalString(buf, k, nfc)
			buf = append(buf, ':')
			var err error
			if buf, err = appendCanonical(buf, val[k], nfc); err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
		}
		return append(buf, '}'), nil
	default:
		return nil, fmt.Errorf("unknown value type: %T", v)
	}
}

// appendCanonicalString escapes only the quote, the backslash, and control
// characters below U+0020, as RFC 8785 requires. With nfc set the string is
// NFC-normalized first.
func appendCanonicalString(buf []byte, s string, nfc bool) []byte {
	if nfc {
		s = norm.NFC.String(s)
	}
	buf = append(buf, '"')
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == '"':
			buf = append(buf, '\\', '"')
		case r == '\\':
			buf = append(buf, '\\', '\\')
		case r == '\b':
			buf = append(buf, '\\', 'b')
		case r == '\f':
			buf = append(buf, '\\', 'f')
		case r == '\n':
			buf = append(buf, '\\', 'n')
		case r == '\r':
			buf = append(buf, '\\', 'r')
		case r == '\t':
			buf = append(buf, '\\', 't')
		case r < 0x20:
			buf = append(buf, fmt.Sprintf(`\u%04x`, r)...)
		default:
			buf = append(buf, s[i:i+size]...)
		}
		i += size
	}
	return append(buf, '"')
}

// Hash computes the content hash of a document: SHA-256 over the domain
// prefix, a zero byte, and the canonical encoding of the document with
// NFC-normalized strings, so documents differing only in normalization hash
// alike.
func (d *Document) Hash() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	v, err := ParseValue(string(raw))
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}
	canonical, err := appendCanonical(nil, v, true)
	if err != nil {
		return "", fmt.Errorf("hash document: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(DomainProject))
	h.Write([]byte{0x00})
	h.Write(canonical)
	return hex.EncodeToString(h.Sum(nil)), nil
}
