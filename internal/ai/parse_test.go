package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title     string `json:"title"`
	Frequency string `json:"frequency"`
}

func TestDecodeJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
	}{
		{"plain", `{"title":"Stretch","frequency":"daily"}`},
		{"fenced", "```json\n{\"title\":\"Stretch\",\"frequency\":\"daily\"}\n```"},
		{"bare fence", "```\n{\"title\":\"Stretch\",\"frequency\":\"daily\"}\n```"},
		{"prose around", "Sure! Here it is:\n{\"title\":\"Stretch\",\"frequency\":\"daily\"}\nHope that helps."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got sample
			require.NoError(t, DecodeJSON(tc.in, &got))
			assert.Equal(t, sample{Title: "Stretch", Frequency: "daily"}, got)
		})
	}
}

func TestDecodeJSON_Failures(t *testing.T) {
	var got sample
	assert.ErrorIs(t, DecodeJSON("", &got), ErrNoJSON)
	assert.ErrorIs(t, DecodeJSON("I cannot help with that.", &got), ErrNoJSON)
	assert.ErrorIs(t, DecodeJSON("{not json at all}", &got), ErrNoJSON)
}
