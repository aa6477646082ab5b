package assertion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type member struct {
	ID      string `json:"id"`
	Name    string
	private int
}

func TestLookup(t *testing.T) {
	payload := map[string]any{
		"list": []any{"a", map[string]any{"k": "v"}},
		"typed": map[string]int{
			"n": 1,
		},
		"member":  member{ID: "m1", Name: "luca"},
		"members": []*member{{ID: "m2"}},
		"nothing": nil,
	}

	tests := []struct {
		path  string
		want  any
		found bool
	}{
		{"", payload, true},
		{"list.0", "a", true},
		{"list.1.k", "v", true},
		{"list.2", nil, false},
		{"list.x", nil, false},
		{"typed.n", 1, true},
		{"typed.m", nil, false},
		{"member.id", "m1", true},
		{"member.Name", "luca", true},
		{"member.private", nil, false},
		{"members.0.id", "m2", true},
		{"nothing", nil, true},
		{"nothing.deeper", nil, false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, found := Lookup(payload, tt.path)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
