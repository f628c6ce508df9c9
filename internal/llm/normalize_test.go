package llm

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain object", `{"a":1}`, `{"a":1}`},
		{"plain array", `[1,2,3]`, `[1,2,3]`},
		{"surrounding whitespace", "  \n{\"a\":1}\n\t", `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1]\n```", `[1]`},
		{"upper-case tag", "```JSON\n{\"a\":1}\n```", `{"a":1}`},
		{"fence without newline", "```json{\"a\":1}```", `{"a":1}`},
		{"leading prose", `Here you go: {"a":1}`, `{"a":1}`},
		{"trailing prose", `{"a":1} hope that helps`, `{"a":1}`},
		{"prose on both sides", "Sure!\n[{\"a\":1}]\nEnjoy.", `[{"a":1}]`},
		{"array before object", `[{"a":1},{"b":2}]`, `[{"a":1},{"b":2}]`},
		{"object containing array", `{"items":[1,2]}`, `{"items":[1,2]}`},
		{"array wins over trailing braces", `[1,2] and {note}`, `[1,2]`},
		{"earlier array beats later object", `[1,2] and {"x":1}`, `[1,2]`},
		{"no json at all", "  sorry, I can't help  ", "sorry, I can't help"},
		{"unbalanced only", "} nope {", "} nope {"},
		{"escapes untouched", `{"a":"line\nbreak \"q\""}`, `{"a":"line\nbreak \"q\""}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"```json\n{\"a\":[1,2]}\n```",
		"prefix [1,{\"b\":2}] suffix",
		"no json",
		`{"x":"}"}`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestNormalize_WrappedValidJSONRoundTrips(t *testing.T) {
	type week struct {
		Week    int      `json:"week"`
		Title   string   `json:"title"`
		Lessons []string `json:"lessons"`
	}
	want := []week{
		{Week: 1, Title: "Basics", Lessons: []string{"Intro", "Setup {env}"}},
		{Week: 2, Title: "Deeper", Lessons: []string{"[Arrays]"}},
	}
	raw, err := json.Marshal(want)
	require.NoError(t, err)

	wrappers := []string{
		"%s",
		"```json\n%s\n```",
		"Here is your plan:\n%s\nGood luck!",
		"```\n%s\n```\n",
	}
	for _, w := range wrappers {
		text := fmt.Sprintf(w, raw)
		var got []week
		require.NoError(t, json.Unmarshal([]byte(Normalize(text)), &got), "wrapper %q", w)
		assert.Equal(t, want, got)
	}
}

func TestLooksLikeJSON(t *testing.T) {
	assert.True(t, looksLikeJSON(`{}`))
	assert.True(t, looksLikeJSON(`[]`))
	assert.False(t, looksLikeJSON(`"str"`))
	assert.False(t, looksLikeJSON(``))
	assert.False(t, looksLikeJSON(`hello {}`))
}
