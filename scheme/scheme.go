package scheme

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/quickwritereader/packetkv/packet"
)

var (
	ErrConstraint       = errors.New("scheme: constraint failed")
	ErrUnknownField     = errors.New("scheme: field not declared")
	ErrUnknownType      = errors.New("scheme: unknown type")
	ErrUnsupportedValue = errors.New("scheme: unsupported value")
)

// Scheme checks and decodes the field stored under one key.
type Scheme interface {
	Validate(p *packet.Packet, key string) error
	Decode(p *packet.Packet, key string) (any, error)
}

// Encoder is implemented by schemes that can write a Go value into a packet.
type Encoder interface {
	Encode(p *packet.Packet, key string, v any) error
}

type Nullable interface {
	IsNullable() bool
}

type SchemeGeneric struct {
	ValidateFunc func(p *packet.Packet, key string) error
	DecodeFunc   func(p *packet.Packet, key string) (any, error)
	EncodeFunc   func(p *packet.Packet, key string, v any) error
	Nullable     bool
}

func (f SchemeGeneric) Validate(p *packet.Packet, key string) error {
	return f.ValidateFunc(p, key)
}
func (f SchemeGeneric) Decode(p *packet.Packet, key string) (any, error) {
	return f.DecodeFunc(p, key)
}
func (f SchemeGeneric) Encode(p *packet.Packet, key string, v any) error {
	if f.EncodeFunc == nil {
		return fmt.Errorf("scheme: field %q: %w", key, ErrUnsupportedValue)
	}
	return f.EncodeFunc(p, key, v)
}
func (f SchemeGeneric) IsNullable() bool { return f.Nullable }

// fetch returns the raw field. A missing field yields nil, nil when nullable.
// width < 0 accepts any length.
func fetch(p *packet.Packet, key string, width int, nullable bool) ([]byte, error) {
	raw, err := p.Get(key)
	if err != nil {
		if nullable && errors.Is(err, packet.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("scheme: field %q: %w", key, err)
	}
	if width >= 0 && len(raw) != width {
		return nil, fmt.Errorf("scheme: field %q: width %d, expected %d: %w", key, len(raw), width, packet.ErrTypeMismatch)
	}
	return raw, nil
}

func validateWidth(p *packet.Packet, key string, width int, nullable bool) error {
	_, err := fetch(p, key, width, nullable)
	return err
}

// SchemeAny accepts any field and decodes it as raw bytes.
type SchemeAny struct{}

func (s SchemeAny) Validate(p *packet.Packet, key string) error {
	return validateWidth(p, key, -1, false)
}

func (s SchemeAny) Decode(p *packet.Packet, key string) (any, error) {
	raw, err := fetch(p, key, -1, false)
	if err != nil {
		return nil, err
	}
	return slices.Clone(raw), nil
}

func (s SchemeAny) Encode(p *packet.Packet, key string, v any) error {
	return SchemeBytes{Width: -1}.Encode(p, key, v)
}

// SchemeString matches a string field. Width <= 0 means any length.
type SchemeString struct {
	Width    int
	Nullable bool
}

func (s SchemeString) width() int {
	if s.Width <= 0 {
		return -1
	}
	return s.Width
}

func (s SchemeString) Validate(p *packet.Packet, key string) error {
	return validateWidth(p, key, s.width(), s.IsNullable())
}

func (s SchemeString) Decode(p *packet.Packet, key string) (any, error) {
	raw, err := fetch(p, key, s.width(), s.IsNullable())
	if err != nil || raw == nil {
		return nil, err
	}
	return string(raw), nil
}

func (s SchemeString) Encode(p *packet.Packet, key string, v any) error {
	str, err := toString(v)
	if err != nil {
		return fmt.Errorf("scheme: field %q: %w", key, err)
	}
	return p.PutString(key, str)
}

func (s SchemeString) IsNullable() bool { return s.Nullable }

// Optional returns a copy of s that accepts a missing field.
func (s SchemeString) Optional() SchemeString {
	s.Nullable = true
	return s
}

type SchemeBytes struct {
	Width    int
	Nullable bool
}

func (s SchemeBytes) width() int {
	if s.Width <= 0 {
		return -1
	}
	return s.Width
}

func (s SchemeBytes) Validate(p *packet.Packet, key string) error {
	return validateWidth(p, key, s.width(), s.IsNullable())
}

func (s SchemeBytes) Decode(p *packet.Packet, key string) (any, error) {
	raw, err := fetch(p, key, s.width(), s.IsNullable())
	if err != nil || raw == nil {
		return nil, err
	}
	return slices.Clone(raw), nil
}

func (s SchemeBytes) Encode(p *packet.Packet, key string, v any) error {
	switch b := v.(type) {
	case []byte:
		return p.Put(key, b)
	case string:
		return p.PutString(key, b)
	default:
		return fmt.Errorf("scheme: field %q: %T as bytes: %w", key, v, ErrUnsupportedValue)
	}
}

func (s SchemeBytes) IsNullable() bool { return s.Nullable }

func decodeScalar[T packet.Scalar](p *packet.Packet, key string, nullable bool) (any, error) {
	if nullable && !p.Has(key) {
		return nil, nil
	}
	v, err := packet.GetValue[T](p, key)
	if err != nil {
		return nil, fmt.Errorf("scheme: field %q: %w", key, err)
	}
	return v, nil
}

func validateScalar[T packet.Scalar](p *packet.Packet, key string, nullable bool) error {
	_, err := decodeScalar[T](p, key, nullable)
	return err
}

func encodeInt[T ~int8 | ~int16 | ~int32 | ~int64](p *packet.Packet, key string, v any) error {
	n, err := toInt64(v)
	if err != nil {
		return fmt.Errorf("scheme: field %q: %w", key, err)
	}
	if int64(T(n)) != n {
		return fmt.Errorf("scheme: field %q: %d overflows %T: %w", key, n, T(0), ErrUnsupportedValue)
	}
	return packet.PutValue(p, key, T(n))
}

func encodeFloat[T ~float32 | ~float64](p *packet.Packet, key string, v any) error {
	f, err := toFloat64(v)
	if err != nil {
		return fmt.Errorf("scheme: field %q: %w", key, err)
	}
	return packet.PutValue(p, key, T(f))
}

// Primitives
type SchemeBool struct{ Nullable bool }

func (s SchemeBool) Validate(p *packet.Packet, key string) error {
	return validateScalar[bool](p, key, s.Nullable)
}
func (s SchemeBool) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[bool](p, key, s.Nullable)
}
func (s SchemeBool) Encode(p *packet.Packet, key string, v any) error {
	b, err := toBool(v)
	if err != nil {
		return fmt.Errorf("scheme: field %q: %w", key, err)
	}
	return packet.PutValue(p, key, b)
}
func (s SchemeBool) IsNullable() bool { return s.Nullable }

type SchemeInt8 struct{ Nullable bool }

func (s SchemeInt8) Validate(p *packet.Packet, key string) error {
	return validateScalar[int8](p, key, s.Nullable)
}
func (s SchemeInt8) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[int8](p, key, s.Nullable)
}
func (s SchemeInt8) Encode(p *packet.Packet, key string, v any) error {
	return encodeInt[int8](p, key, v)
}
func (s SchemeInt8) IsNullable() bool { return s.Nullable }

type SchemeInt16 struct{ Nullable bool }

func (s SchemeInt16) Validate(p *packet.Packet, key string) error {
	return validateScalar[int16](p, key, s.Nullable)
}
func (s SchemeInt16) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[int16](p, key, s.Nullable)
}
func (s SchemeInt16) Encode(p *packet.Packet, key string, v any) error {
	return encodeInt[int16](p, key, v)
}
func (s SchemeInt16) IsNullable() bool { return s.Nullable }

type SchemeInt32 struct{ Nullable bool }

func (s SchemeInt32) Validate(p *packet.Packet, key string) error {
	return validateScalar[int32](p, key, s.Nullable)
}
func (s SchemeInt32) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[int32](p, key, s.Nullable)
}
func (s SchemeInt32) Encode(p *packet.Packet, key string, v any) error {
	return encodeInt[int32](p, key, v)
}
func (s SchemeInt32) IsNullable() bool { return s.Nullable }

type SchemeInt64 struct{ Nullable bool }

func (s SchemeInt64) Validate(p *packet.Packet, key string) error {
	return validateScalar[int64](p, key, s.Nullable)
}
func (s SchemeInt64) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[int64](p, key, s.Nullable)
}
func (s SchemeInt64) Encode(p *packet.Packet, key string, v any) error {
	return encodeInt[int64](p, key, v)
}
func (s SchemeInt64) IsNullable() bool { return s.Nullable }

type SchemeFloat32 struct{ Nullable bool }

func (s SchemeFloat32) Validate(p *packet.Packet, key string) error {
	return validateScalar[float32](p, key, s.Nullable)
}
func (s SchemeFloat32) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[float32](p, key, s.Nullable)
}
func (s SchemeFloat32) Encode(p *packet.Packet, key string, v any) error {
	return encodeFloat[float32](p, key, v)
}
func (s SchemeFloat32) IsNullable() bool { return s.Nullable }

type SchemeFloat64 struct{ Nullable bool }

func (s SchemeFloat64) Validate(p *packet.Packet, key string) error {
	return validateScalar[float64](p, key, s.Nullable)
}
func (s SchemeFloat64) Decode(p *packet.Packet, key string) (any, error) {
	return decodeScalar[float64](p, key, s.Nullable)
}
func (s SchemeFloat64) Encode(p *packet.Packet, key string, v any) error {
	return encodeFloat[float64](p, key, v)
}
func (s SchemeFloat64) IsNullable() bool { return s.Nullable }

var (
	SBool        Scheme       = SchemeBool{}
	SInt8        Scheme       = SchemeInt8{}
	SInt16       SchemeInt16  = SchemeInt16{}
	SInt32       SchemeInt32  = SchemeInt32{}
	SInt64       SchemeInt64  = SchemeInt64{}
	SFloat32     Scheme       = SchemeFloat32{}
	SFloat64     Scheme       = SchemeFloat64{}
	SNullBool    Scheme       = SchemeBool{Nullable: true}
	SNullInt8    Scheme       = SchemeInt8{Nullable: true}
	SNullInt16   Scheme       = SchemeInt16{Nullable: true}
	SNullInt32   Scheme       = SchemeInt32{Nullable: true}
	SNullInt64   Scheme       = SchemeInt64{Nullable: true}
	SNullFloat32 Scheme       = SchemeFloat32{Nullable: true}
	SNullFloat64 Scheme       = SchemeFloat64{Nullable: true}
	SString      SchemeString = SchemeString{Width: -1}
	SAny                      = SchemeAny{}
)

func SBytes(width int) Scheme { return SchemeBytes{Width: width} }

func SVariableBytes() Scheme {
	return SchemeBytes{Width: -1}
}

func SStringExact(expected string) Scheme {
	return SString.Match(expected)
}

func SStringLen(width int) Scheme {
	return SString.WithWidth(width)
}

// CheckFunc wraps s with a predicate on the decoded string.
func (s SchemeString) CheckFunc(msgError string, test func(payloadStr string) bool) Scheme {
	check := func(p *packet.Packet, key string) (any, error) {
		raw, err := fetch(p, key, s.width(), s.IsNullable())
		if err != nil || raw == nil {
			return nil, err
		}
		if !test(string(raw)) {
			return nil, fmt.Errorf("scheme: field %q: %s, got '%s': %w", key, msgError, raw, ErrConstraint)
		}
		return string(raw), nil
	}
	return SchemeGeneric{
		ValidateFunc: func(p *packet.Packet, key string) error {
			_, err := check(p, key)
			return err
		},
		DecodeFunc: check,
		EncodeFunc: func(p *packet.Packet, key string, v any) error {
			str, err := toString(v)
			if err != nil {
				return fmt.Errorf("scheme: field %q: %w", key, err)
			}
			if !test(str) {
				return fmt.Errorf("scheme: field %q: %s, got '%s': %w", key, msgError, str, ErrConstraint)
			}
			return p.PutString(key, str)
		},
		Nullable: s.IsNullable(),
	}
}

func (s SchemeString) Match(expected string) Scheme {
	return s.CheckFunc(fmt.Sprintf("expected %s", expected), func(payloadStr string) bool {
		return payloadStr == expected
	})
}

func (s SchemeString) Prefix(prefix string) Scheme {
	return s.CheckFunc(fmt.Sprintf("expected prefix %s", prefix), func(payloadStr string) bool {
		return strings.HasPrefix(payloadStr, prefix)
	})
}

func (s SchemeString) Suffix(suffix string) Scheme {
	return s.CheckFunc(fmt.Sprintf("expected suffix %s", suffix), func(payloadStr string) bool {
		return strings.HasSuffix(payloadStr, suffix)
	})
}

func (s SchemeString) WithWidth(n int) SchemeString {
	s.Width = n
	return s
}

func (s SchemeString) Pattern(expr string) Scheme {
	re := regexp.MustCompile(expr)
	return s.CheckFunc(fmt.Sprintf("expected match for %s", expr), func(payloadStr string) bool {
		return re.MatchString(payloadStr)
	})
}

// SEnum accepts only one of the listed strings.
func SEnum(values []string, nullable bool) Scheme {
	s := SString
	s.Nullable = nullable
	return s.CheckFunc(fmt.Sprintf("expected one of %v", values), func(payloadStr string) bool {
		return slices.Contains(values, payloadStr)
	})
}

func intRange[T ~int16 | ~int32 | ~int64](nullable bool, lo, hi T) Scheme {
	check := func(p *packet.Packet, key string) (any, error) {
		if nullable && !p.Has(key) {
			return nil, nil
		}
		val, err := packet.GetValue[T](p, key)
		if err != nil {
			return nil, fmt.Errorf("scheme: field %q: %w", key, err)
		}
		if val < lo || val > hi {
			return nil, fmt.Errorf("scheme: field %q: expected %d <= x <= %d, got %d: %w", key, lo, hi, val, ErrConstraint)
		}
		return val, nil
	}
	return SchemeGeneric{
		ValidateFunc: func(p *packet.Packet, key string) error {
			_, err := check(p, key)
			return err
		},
		DecodeFunc: check,
		EncodeFunc: func(p *packet.Packet, key string, v any) error {
			if err := encodeInt[T](p, key, v); err != nil {
				return err
			}
			_, err := check(p, key)
			return err
		},
		Nullable: nullable,
	}
}

func (s SchemeInt16) Range(min, max int16) Scheme {
	return intRange(s.Nullable, min, max)
}

func (s SchemeInt32) Range(min, max int32) Scheme {
	return intRange(s.Nullable, min, max)
}

func (s SchemeInt64) Range(min, max int64) Scheme {
	return intRange(s.Nullable, min, max)
}

// DateRange stores a time as Unix seconds and decodes it to a UTC time.Time.
func (s SchemeInt64) DateRange(from, to time.Time) Scheme {
	lo, hi := from.Unix(), to.Unix()
	check := func(p *packet.Packet, key string) (any, error) {
		if s.Nullable && !p.Has(key) {
			return nil, nil
		}
		val, err := p.GetInt64(key)
		if err != nil {
			return nil, fmt.Errorf("scheme: field %q: %w", key, err)
		}
		if val < lo || val > hi {
			return nil, fmt.Errorf("scheme: field %q: timestamp expected %d <= x <= %d, got %d: %w", key, lo, hi, val, ErrConstraint)
		}
		return time.Unix(val, 0).UTC(), nil
	}
	return SchemeGeneric{
		ValidateFunc: func(p *packet.Packet, key string) error {
			_, err := check(p, key)
			return err
		},
		DecodeFunc: check,
		EncodeFunc: func(p *packet.Packet, key string, v any) error {
			var sec int64
			switch t := v.(type) {
			case time.Time:
				sec = t.Unix()
			case string:
				parsed, err := time.Parse(time.RFC3339, t)
				if err != nil {
					return fmt.Errorf("scheme: field %q: %w", key, err)
				}
				sec = parsed.Unix()
			default:
				n, err := toInt64(v)
				if err != nil {
					return fmt.Errorf("scheme: field %q: %w", key, err)
				}
				sec = n
			}
			if sec < lo || sec > hi {
				return fmt.Errorf("scheme: field %q: timestamp %d out of range: %w", key, sec, ErrConstraint)
			}
			return p.PutInt64(key, sec)
		},
		Nullable: s.Nullable,
	}
}

// SDate is an int64 Unix timestamp limited to [from, to].
func SDate(nullable bool, from, to time.Time) Scheme {
	return SchemeInt64{Nullable: nullable}.DateRange(from, to)
}

// SAnyDate accepts every timestamp.
func SAnyDate(nullable bool) Scheme {
	return SDate(nullable, time.Unix(math.MinInt64/2, 0), time.Unix(math.MaxInt64/2, 0))
}
