package bridge

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDescriptor(t *testing.T) {
	exposures := map[string]Exposure{
		"limit":    Value(10),
		"labels":   Value([]string{"a", "b"}),
		"announce": NamedScript("announce", `function () { this.bump(); }`),
	}

	desc, dropped := Build("/dash", exposures, []string{"save", "bump"})
	require.Empty(t, dropped)

	assert.Equal(t, "/dash", desc.Path)
	assert.Equal(t, []string{"bump", "save"}, desc.Endpoints, "endpoints sorted")
	assert.JSONEq(t, "10", string(desc.Values["limit"]))
	assert.JSONEq(t, `["a","b"]`, string(desc.Values["labels"]))
	assert.Equal(t, `function () { $page.bump(); }`, desc.Scripts["announce"])
}

func TestBuildDropsUnserializableValue(t *testing.T) {
	exposures := map[string]Exposure{
		"ok":  Value("fine"),
		"bad": Value(make(chan int)),
	}

	desc, dropped := Build("/", exposures, nil)
	require.Len(t, dropped, 1)

	var serr *SerializationError
	require.ErrorAs(t, dropped[0], &serr)
	assert.Equal(t, "bad", serr.Name)

	_, present := desc.Values["bad"]
	assert.False(t, present, "dropped exposure still in descriptor")
	assert.Contains(t, desc.Values, "ok")
}

func TestDescriptorJSONShape(t *testing.T) {
	desc, dropped := Build("/", map[string]Exposure{"n": Value(1)}, []string{"go"})
	require.Empty(t, dropped)

	raw, err := desc.JSON()
	require.NoError(t, err)

	var decoded struct {
		Path      string                     `json:"path"`
		Values    map[string]json.RawMessage `json:"values"`
		Scripts   map[string]string          `json:"scripts"`
		Endpoints []string                   `json:"endpoints"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "/", decoded.Path)
	assert.Equal(t, []string{"go"}, decoded.Endpoints)
}

func TestRewriteSelfRefs(t *testing.T) {
	src := `function () { return this.count + this.step; }`
	assert.Equal(t, `function () { return $page.count + $page.step; }`, RewriteSelfRefs(src))
}

func TestScriptConstructors(t *testing.T) {
	s := Script("function () {}")
	assert.Equal(t, KindScript, s.Kind)
	assert.Empty(t, s.Name)

	n := NamedScript("go", "function () {}")
	assert.Equal(t, "go", n.Name)

	v := Value(3)
	assert.Equal(t, KindValue, v.Kind)
}
