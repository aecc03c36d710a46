package scheme

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"
)

type SchemeJSON struct {
	Name     string `json:"name,omitempty"`
	Type     string `json:"type"`
	Width    int    `json:"width,omitempty"`
	Nullable bool   `json:"nullable,omitempty"`

	// Constraint helpers
	Exact    string   `json:"exact,omitempty"`
	Prefix   string   `json:"prefix,omitempty"`
	Suffix   string   `json:"suffix,omitempty"`
	Pattern  string   `json:"pattern,omitempty"`
	Enum     []string `json:"enum,omitempty"`
	RangeMin int64    `json:"rangeMin,omitempty"`
	RangeMax int64    `json:"rangeMax,omitempty"`
	DateFrom string   `json:"dateFrom,omitempty"`
	DateTo   string   `json:"dateTo,omitempty"`

	// Extra metadata for UI or other purposes
	Extra map[string]any `json:"extra,omitempty"`
}

// PacketSchemeJSON is the document form of a SchemeFields.
type PacketSchemeJSON struct {
	Strict bool         `json:"strict,omitempty"`
	Fields []SchemeJSON `json:"fields"`
}

// Registry of custom scheme builders.
// Key: type name (case-sensitive), Value: builder function.
var customSchemeBuilders = map[string]func(SchemeJSON) Scheme{}

// RegisterSchemeType registers a custom Scheme builder for a given type name.
//
// Usage:
//
//	scheme.RegisterSchemeType("deviceID", func(js scheme.SchemeJSON) scheme.Scheme {
//	    return scheme.SString.Pattern("^dev-[0-9]+$")
//	})
//
// Panics if the type name is empty or already registered.
func RegisterSchemeType(typeName string, builder func(SchemeJSON) Scheme) {
	if typeName == "" {
		panic("cannot register empty type name")
	}
	if _, exists := customSchemeBuilders[typeName]; exists {
		panic("scheme type already registered: " + typeName)
	}
	customSchemeBuilders[typeName] = builder
}

// UnregisterSchemeType removes a previously registered custom Scheme builder.
// If the type name is not found, the function does nothing.
func UnregisterSchemeType(typeName string) {
	delete(customSchemeBuilders, typeName)
}

// BuildScheme constructs a Scheme instance from a SchemeJSON definition.
//
// Built-in types:
//
//   - "bool"    → SBool / SNullBool
//   - "int8"    → SInt8 / SNullInt8
//   - "int16"   → SInt16 with optional Range
//   - "int32"   → SInt32 with optional Range
//   - "int64"   → SInt64 with optional Range
//   - "date"    → SDate with optional DateFrom/DateTo (RFC3339)
//   - "float32" → SFloat32 / SNullFloat32
//   - "float64" → SFloat64 / SNullFloat64
//   - "string"  → SString with optional width, exact, prefix, suffix, pattern
//   - "enum"    → SEnum
//   - "bytes"   → SBytes / SVariableBytes
//   - "any"     → SAny
//
// Unknown types are looked up in the custom registry (see RegisterSchemeType).
func BuildScheme(js SchemeJSON) (Scheme, error) {
	switch js.Type {
	case "bool":
		if js.Nullable {
			return SNullBool, nil
		}
		return SBool, nil
	case "int8":
		if js.Nullable {
			return SNullInt8, nil
		}
		return SInt8, nil
	case "int16":
		s := SInt16
		s.Nullable = js.Nullable
		if js.RangeMin != 0 || js.RangeMax != 0 {
			return s.Range(int16(js.RangeMin), int16(js.RangeMax)), nil
		}
		return s, nil
	case "int32":
		s := SInt32
		s.Nullable = js.Nullable
		if js.RangeMin != 0 || js.RangeMax != 0 {
			return s.Range(int32(js.RangeMin), int32(js.RangeMax)), nil
		}
		return s, nil
	case "int64":
		s := SInt64
		s.Nullable = js.Nullable
		if js.RangeMin != 0 || js.RangeMax != 0 {
			return s.Range(js.RangeMin, js.RangeMax), nil
		}
		return s, nil
	case "date":
		if js.DateFrom == "" || js.DateTo == "" {
			return SAnyDate(js.Nullable), nil
		}
		from, err := time.Parse(time.RFC3339, js.DateFrom)
		if err != nil {
			return nil, fmt.Errorf("scheme: %q dateFrom: %w", js.Name, err)
		}
		to, err := time.Parse(time.RFC3339, js.DateTo)
		if err != nil {
			return nil, fmt.Errorf("scheme: %q dateTo: %w", js.Name, err)
		}
		return SDate(js.Nullable, from, to), nil
	case "float32":
		if js.Nullable {
			return SNullFloat32, nil
		}
		return SFloat32, nil
	case "float64":
		if js.Nullable {
			return SNullFloat64, nil
		}
		return SFloat64, nil
	case "string":
		s := SString
		if js.Nullable {
			s = s.Optional()
		}
		if js.Width > 0 {
			s = s.WithWidth(js.Width)
		}
		switch {
		case js.Exact != "":
			return s.Match(js.Exact), nil
		case js.Prefix != "":
			return s.Prefix(js.Prefix), nil
		case js.Suffix != "":
			return s.Suffix(js.Suffix), nil
		case js.Pattern != "":
			return s.Pattern(js.Pattern), nil
		}
		return s, nil
	case "enum":
		return SEnum(js.Enum, js.Nullable), nil
	case "bytes":
		return SchemeBytes{Width: js.Width, Nullable: js.Nullable}, nil
	case "any":
		return SAny, nil
	default:
		if builder, ok := customSchemeBuilders[js.Type]; ok {
			return builder(js), nil
		}
		return nil, fmt.Errorf("scheme: field %q type %q: %w", js.Name, js.Type, ErrUnknownType)
	}
}

// BuildFields turns a packet scheme document into SchemeFields.
func BuildFields(doc PacketSchemeJSON) (SchemeFields, error) {
	out := SchemeFields{Strict: doc.Strict, Fields: make([]NamedField, 0, len(doc.Fields))}
	for i, js := range doc.Fields {
		if js.Name == "" {
			return SchemeFields{}, fmt.Errorf("scheme: field %d has no name", i)
		}
		s, err := BuildScheme(js)
		if err != nil {
			return SchemeFields{}, err
		}
		out.Fields = append(out.Fields, SF(js.Name, s))
	}
	return out, nil
}

// ParseSchemeJSON decodes a packet scheme document.
func ParseSchemeJSON(data []byte) (SchemeFields, error) {
	var doc PacketSchemeJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return SchemeFields{}, fmt.Errorf("scheme: parse: %w", err)
	}
	return BuildFields(doc)
}

// LoadSchemeFile reads and parses a packet scheme document from disk.
func LoadSchemeFile(path string) (SchemeFields, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SchemeFields{}, fmt.Errorf("scheme: read %s: %w", path, err)
	}
	return ParseSchemeJSON(data)
}
