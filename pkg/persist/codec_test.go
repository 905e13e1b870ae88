package persist

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	Day  int64 `json:"day"`
	Cost int64 `json:"cost"`
}

type testState struct {
	Sections [][]testEntry `json:"sections"`
	LastDay  int64         `json:"last_day"`
}

func sampleState() testState {
	entries := make([]testEntry, 0, 64)
	for i := range 64 {
		entries = append(entries, testEntry{Day: int64(i * 3), Cost: 7})
	}

	return testState{Sections: [][]testEntry{entries, {{Day: 0, Cost: 2}}}, LastDay: 189}
}

func TestCodecs_RoundTrip(t *testing.T) {
	t.Parallel()

	for _, name := range CodecNames() {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			codec, err := CodecByName(name)
			require.NoError(t, err)

			var buf bytes.Buffer

			original := sampleState()
			require.NoError(t, codec.Encode(&buf, original))

			var decoded testState

			require.NoError(t, codec.Decode(&buf, &decoded))
			assert.Equal(t, original, decoded)
		})
	}
}

func TestCodec_Extensions(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ".json", NewJSONCodec().Extension())
	assert.Equal(t, ".gob", NewGobCodec().Extension())
	assert.Equal(t, ".gob.lz4", NewLZ4Codec().Extension())
	assert.Equal(t, ".json.lz4", (&LZ4Codec{Inner: &JSONCodec{}}).Extension())
}

func TestLZ4Codec_Compresses(t *testing.T) {
	t.Parallel()

	var plain, packed bytes.Buffer

	flat := make([]testEntry, 512)
	for i := range flat {
		flat[i] = testEntry{Day: 1000, Cost: 7}
	}

	state := testState{Sections: [][]testEntry{flat, flat}, LastDay: 1000}
	require.NoError(t, NewGobCodec().Encode(&plain, state))
	require.NoError(t, NewLZ4Codec().Encode(&packed, state))

	assert.Less(t, packed.Len(), plain.Len())
}

func TestJSONCodec_Compact(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, (&JSONCodec{}).Encode(&buf, testState{LastDay: 1}))
	assert.LessOrEqual(t, strings.Count(buf.String(), "\n"), 1)
}

func TestJSONCodec_DecodeErrors(t *testing.T) {
	t.Parallel()

	var decoded testState

	err := NewJSONCodec().Decode(strings.NewReader("not valid json{{{"), &decoded)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "json decode")

	err = NewJSONCodec().Decode(strings.NewReader(`{"last_day":1,"extra":true}`), &decoded)
	require.Error(t, err)
}

func TestCodecByName_Unknown(t *testing.T) {
	t.Parallel()

	_, err := CodecByName("zstd")
	require.ErrorIs(t, err, ErrUnknownCodec)
	assert.Equal(t, []string{"gob", "json", "lz4"}, CodecNames())
}
