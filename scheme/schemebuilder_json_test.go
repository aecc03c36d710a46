package scheme

import (
	"testing"

	"github.com/quickwritereader/packetkv/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildScheme_Primitives(t *testing.T) {
	cases := []struct {
		js   SchemeJSON
		want Scheme
	}{
		{SchemeJSON{Type: "bool"}, SBool},
		{SchemeJSON{Type: "bool", Nullable: true}, SNullBool},
		{SchemeJSON{Type: "int8"}, SInt8},
		{SchemeJSON{Type: "int16"}, SInt16},
		{SchemeJSON{Type: "int32", Nullable: true}, SchemeInt32{Nullable: true}},
		{SchemeJSON{Type: "int64"}, SInt64},
		{SchemeJSON{Type: "float32"}, SFloat32},
		{SchemeJSON{Type: "float64", Nullable: true}, SNullFloat64},
		{SchemeJSON{Type: "string"}, SString},
		{SchemeJSON{Type: "string", Width: 4}, SStringLen(4)},
		{SchemeJSON{Type: "string", Nullable: true}, SString.Optional()},
		{SchemeJSON{Type: "bytes", Width: 3}, SBytes(3)},
		{SchemeJSON{Type: "any"}, SAny},
	}
	for _, tc := range cases {
		built, err := BuildScheme(tc.js)
		require.NoError(t, err)
		assert.EqualValues(t, tc.want, built, "type %s", tc.js.Type)
	}
}

func TestBuildScheme_UnknownType(t *testing.T) {
	_, err := BuildScheme(SchemeJSON{Name: "x", Type: "tuple"})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestBuildScheme_CustomType(t *testing.T) {
	RegisterSchemeType("deviceID", func(js SchemeJSON) Scheme {
		return SString.Prefix("dev-")
	})
	defer UnregisterSchemeType("deviceID")

	assert.Panics(t, func() {
		RegisterSchemeType("deviceID", func(SchemeJSON) Scheme { return SAny })
	})

	fields, err := ParseSchemeJSON([]byte(`{"fields":[{"name":"id","type":"deviceID"}]}`))
	require.NoError(t, err)

	p := packet.New()
	require.NoError(t, p.PutString("id", "dev-17"))
	assert.NoError(t, fields.ValidatePacket(p))

	q := packet.New()
	require.NoError(t, q.PutString("id", "host-17"))
	assert.ErrorIs(t, fields.ValidatePacket(q), ErrConstraint)
}

func TestParseSchemeJSON_RoundTrip(t *testing.T) {
	doc := []byte(`{
		"strict": true,
		"fields": [
			{"name": "type", "type": "int32", "rangeMin": 1, "rangeMax": 9999},
			{"name": "key1", "type": "string", "suffix": " "},
			{"name": "zone", "type": "enum", "enum": ["eu-west", "us-east"], "nullable": true},
			{"name": "seen", "type": "date", "dateFrom": "2020-01-01T00:00:00Z", "dateTo": "2030-01-01T00:00:00Z"}
		]
	}`)
	fields, err := ParseSchemeJSON(doc)
	require.NoError(t, err)
	assert.True(t, fields.Strict)
	assert.Equal(t, []string{"type", "key1", "zone", "seen"}, fields.Names())

	p, err := fields.EncodePacket(map[string]any{
		"type": 6654,
		"key1": " bla bla bla ",
		"seen": "2024-05-01T12:00:00Z",
	})
	require.NoError(t, err)

	out, err := fields.DecodePacket(p)
	require.NoError(t, err)
	zone, ok := out.Get("zone")
	assert.True(t, ok)
	assert.Nil(t, zone)

	_, err = fields.EncodePacket(map[string]any{"type": 6654, "key1": "x ", "zone": "mars", "seen": "2024-05-01T12:00:00Z"})
	assert.ErrorIs(t, err, ErrConstraint)
}

func TestParseSchemeJSON_Errors(t *testing.T) {
	_, err := ParseSchemeJSON([]byte(`{"fields":[{"type":"int32"}]}`))
	assert.Error(t, err)

	_, err = ParseSchemeJSON([]byte(`{"fields":[{"name":"d","type":"date","dateFrom":"yesterday","dateTo":"now"}]}`))
	assert.Error(t, err)

	_, err = ParseSchemeJSON([]byte(`not json`))
	assert.Error(t, err)
}
