package scheme

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	pack "github.com/quickwritereader/packetkv/packable"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func samplePacket(t *testing.T) *packet.Packet {
	t.Helper()
	p, err := pack.Pack(
		pack.KV("type", pack.PackInt32(6654)),
		pack.KV("key1", pack.PackString(" bla bla bla ")),
		pack.KV("level", pack.PackInt16(3)),
		pack.KV("ratio", pack.PackFloat32(3.14)),
		pack.KV("ts", pack.PackInt64(1_700_000_000)),
		pack.KV("ok", pack.PackBool(true)),
		pack.KV("user", pack.PackByteArray([]byte("alice"))),
	)
	require.NoError(t, err)
	return p
}

func sampleFields() SchemeFields {
	return SFields(
		SF("type", SInt32.Range(0, 10000)),
		SF("key1", SString.Prefix(" bla")),
		SF("level", SInt16),
		SF("ratio", SFloat32),
		SF("ts", SDate(false, time.Unix(0, 0), time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))),
		SF("ok", SBool),
		SF("user", SBytes(len("alice"))),
		SF("comment", SString.Optional()),
	)
}

func TestValidatePacket(t *testing.T) {
	p := samplePacket(t)
	assert.NoError(t, sampleFields().ValidatePacket(p))
}

func TestValidatePacket_Failures(t *testing.T) {
	p := samplePacket(t)

	cases := []struct {
		name   string
		fields SchemeFields
		want   error
	}{
		{"width mismatch", SFields(SF("user", SBytes(len("alice")+1))), packet.ErrTypeMismatch},
		{"wrong scalar", SFields(SF("type", SInt64)), packet.ErrTypeMismatch},
		{"missing", SFields(SF("absent", SInt32)), packet.ErrKeyNotFound},
		{"range", SFields(SF("type", SInt32.Range(0, 100))), ErrConstraint},
		{"exact", SFields(SF("key1", SStringExact("nope"))), ErrConstraint},
		{"enum", SFields(SF("key1", SEnum([]string{"a", "b"}, false))), ErrConstraint},
		{"pattern", SFields(SF("key1", SString.Pattern(`^\d+$`))), ErrConstraint},
		{"date", SFields(SF("ts", SDate(false, time.Unix(0, 0), time.Unix(1000, 0)))), ErrConstraint},
		{"strict", SFieldsStrict(SF("type", SInt32)), ErrUnknownField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.fields.ValidatePacket(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestDecodePacket_NamedValuesInOrder(t *testing.T) {
	p := samplePacket(t)
	out, err := sampleFields().DecodePacket(p)
	require.NoError(t, err)

	assert.Equal(t, sampleFields().Names(), out.Keys())
	v, _ := out.Get("type")
	assert.Equal(t, int32(6654), v)
	v, _ = out.Get("key1")
	assert.Equal(t, " bla bla bla ", v)
	v, _ = out.Get("level")
	assert.Equal(t, int16(3), v)
	v, _ = out.Get("ratio")
	assert.Equal(t, float32(3.14), v)
	v, _ = out.Get("ts")
	assert.Equal(t, time.Unix(1_700_000_000, 0).UTC(), v)
	v, _ = out.Get("ok")
	assert.Equal(t, true, v)
	v, _ = out.Get("user")
	assert.Equal(t, []byte("alice"), v)
	v, ok := out.Get("comment")
	assert.True(t, ok)
	assert.Nil(t, v)

	js, err := out.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(js), `"type":6654`)
}

func TestDecodePacket_StrictAcceptsDeclaredKeys(t *testing.T) {
	p := samplePacket(t)
	fields := sampleFields()
	fields.Strict = true
	_, err := fields.DecodePacket(p)
	assert.NoError(t, err)
}

func TestEncodePacket_FromJSONValues(t *testing.T) {
	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{
		"type": 6654,
		"key1": " bla bla bla ",
		"level": 3,
		"ratio": 3.14,
		"ts": "2023-11-14T22:13:20Z",
		"ok": true,
		"user": "alice"
	}`), &values))

	p, err := sampleFields().EncodePacket(values)
	require.NoError(t, err)
	assert.True(t, p.Finalized())

	want := samplePacket(t)
	for _, name := range []string{"type", "key1", "level", "ratio", "ts", "ok", "user"} {
		got, err := p.Get(name)
		require.NoError(t, err)
		expected, err := want.Get(name)
		require.NoError(t, err)
		assert.Equalf(t, expected, got, "field %s", name)
	}
	assert.False(t, p.Has("comment"))
}

func TestEncodePacket_Rejects(t *testing.T) {
	_, err := sampleFields().EncodePacket(map[string]any{"type": 1 << 20})
	assert.ErrorIs(t, err, ErrConstraint)

	_, err = SFields(SF("n", SInt8)).EncodePacket(map[string]any{"n": 300})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = SFields(SF("n", SInt32)).EncodePacket(map[string]any{"n": 1.5})
	assert.ErrorIs(t, err, ErrUnsupportedValue)

	_, err = SFieldsStrict(SF("n", SInt32)).EncodePacket(map[string]any{"n": 1, "other": 2})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = SFields(SF("n", SInt32)).EncodePacket(map[string]any{})
	assert.ErrorIs(t, err, packet.ErrKeyNotFound)
}
