package usage

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/quickwritereader/packetkv/packable"
	"github.com/quickwritereader/packetkv/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJson = `{"meta":{"version":"1.0.0","author":"Copilot","timestamp":"2025-12-15T11:21:00Z"},"users":[{"id":1,"name":"Alice","roles":["admin","editor","viewer"],"settings":{"theme":"dark","notifications":true}},{"id":2,"name":"Bob","roles":["viewer"],"settings":{"theme":"light","notifications":false}}],"data":{"matrix":[[1,2,3],[4,5,6]],"nested":{"alpha":{"beta":{"gamma":"deep value"}}},"ratio":0.25,"missing":null}}`

var api = jsoniter.Config{UseNumber: true}.Froze()

// flatten walks a decoded JSON document and emits one field per leaf, keyed
// by its dotted path. Nulls are skipped.
func flatten(prefix string, v any, emit func(key string, value packet.Packable)) {
	join := func(k string) string {
		if prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch n := v.(type) {
	case map[string]any:
		for k, child := range n {
			flatten(join(k), child, emit)
		}
	case []any:
		for i, child := range n {
			flatten(join(strconv.Itoa(i)), child, emit)
		}
	case string:
		emit(prefix, packable.PackString(n))
	case bool:
		emit(prefix, packable.PackBool(n))
	case json.Number:
		if i, err := n.Int64(); err == nil {
			emit(prefix, packable.PackInt64(i))
		} else if f, err := n.Float64(); err == nil {
			emit(prefix, packable.PackFloat64(f))
		}
	}
}

func TestUsage_FlattenedDocument(t *testing.T) {
	var doc map[string]any
	require.NoError(t, api.UnmarshalFromString(testJson, &doc))

	var fields []packable.Field
	flatten("", doc, func(key string, value packet.Packable) {
		fields = append(fields, packable.KV(key, value))
	})
	p, err := packable.Pack(fields...)
	require.NoError(t, err)

	res, err := p.Bytes()
	require.NoError(t, err)
	fmt.Fprintln(os.Stdout, "Minified Json size:", len(testJson),
		"\nPacket byte size:", len(res), "fields:", p.NumKeys())

	got, err := packet.FromBytes(res)
	require.NoError(t, err)
	assert.Equal(t, len(fields), got.NumKeys())

	name, err := got.GetString("users.1.name")
	require.NoError(t, err)
	assert.Equal(t, "Bob", name)

	role, err := got.GetString("users.0.roles.2")
	require.NoError(t, err)
	assert.Equal(t, "viewer", role)

	cell, err := got.GetInt64("data.matrix.1.2")
	require.NoError(t, err)
	assert.Equal(t, int64(6), cell)

	ratio, err := packet.GetValue[float64](got, "data.ratio")
	require.NoError(t, err)
	assert.Equal(t, 0.25, ratio)

	notify, err := packet.GetValue[bool](got, "users.1.settings.notifications")
	require.NoError(t, err)
	assert.False(t, notify)

	deep, err := got.GetString("data.nested.alpha.beta.gamma")
	require.NoError(t, err)
	assert.Equal(t, "deep value", deep)

	assert.False(t, got.Has("data.missing"))
}
