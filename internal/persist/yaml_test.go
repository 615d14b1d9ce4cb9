package persist

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYAMLRoundTrip(t *testing.T) {
	fixedClock(t)
	g, v := sample()
	want := Serialize(g, v)

	data, err := MarshalYAML(want)
	require.NoError(t, err)
	text := string(data)
	assert.True(t, strings.HasPrefix(text, "cards:\n"), "keys keep the JSON order:\n%s", text)
	assert.NotContains(t, text, "{", "block style only")
	assert.Contains(t, text, "startCardId:")

	js, err := YAMLToJSON(data)
	require.NoError(t, err)
	got, err := Import(js)
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("YAML round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestYAMLToJSONRejects(t *testing.T) {
	for _, in := range []string{"- a\n- b\n", "just text", "cards: [\n"} {
		_, err := YAMLToJSON([]byte(in))
		assert.ErrorIs(t, err, ErrMalformedData, in)
	}
}
