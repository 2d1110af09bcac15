package counsellor

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpret_Fallback(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"Sure, here are some options!",
		`{"message": "cut off`,
		`["message", "hi"]`,
		`"just a string"`,
		`42`,
		`null`,
		``,
	}
	for _, raw := range inputs {
		t.Run(raw, func(t *testing.T) {
			got := Interpret(raw)
			assert.True(t, got.Fallback)
			assert.Equal(t, raw, got.Message)
			assert.Equal(t, FallbackReasoning, got.Reasoning)
			assert.Equal(t, []WireAction{{Type: "none", Payload: map[string]any{}}}, got.Actions)
		})
	}
}

func TestInterpret_FallbackActionEncoding(t *testing.T) {
	t.Parallel()
	out, err := json.Marshal(Interpret("Sure, here are some options!").Actions)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"none","payload":{}}]`, string(out))
}

func TestInterpret_FencedMatchesPlain(t *testing.T) {
	t.Parallel()
	plain := `{"message":"Hi","actions":[],"reasoning":"ok"}`
	fenced := "```json\n" + plain + "\n```"
	bare := "```\n" + plain + "\n```"

	want := Interpret(plain)
	assert.False(t, want.Fallback)
	assert.Equal(t, "Hi", want.Message)
	assert.Equal(t, "ok", want.Reasoning)
	assert.Empty(t, cmp.Diff(want, Interpret(fenced)))
	assert.Empty(t, cmp.Diff(want, Interpret(bare)))
}

func TestInterpret_Fields(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want Interpretation
	}{
		{
			name: "singular action object",
			raw:  `{"message":"m","actions":{"type":"create_task","payload":{"title":"X"}},"reasoning":"r"}`,
			want: Interpretation{Message: "m", Reasoning: "r", Actions: []WireAction{
				{Type: "create_task", Payload: map[string]any{"title": "X"}},
			}},
		},
		{
			name: "missing actions and reasoning",
			raw:  `{"message":"only a message"}`,
			want: Interpretation{Message: "only a message", Actions: []WireAction{}},
		},
		{
			name: "null actions",
			raw:  `{"message":"m","actions":null}`,
			want: Interpretation{Message: "m", Actions: []WireAction{}},
		},
		{
			name: "scalar actions",
			raw:  `{"message":"m","actions":"shortlist"}`,
			want: Interpretation{Message: "m", Actions: []WireAction{}},
		},
		{
			name: "missing payload",
			raw:  `{"actions":[{"type":"none"}]}`,
			want: Interpretation{Actions: []WireAction{{Type: "none", Payload: map[string]any{}}}},
		},
		{
			name: "non-string message kept as JSON",
			raw:  `{"message":{"text":"hi"},"actions":[]}`,
			want: Interpretation{Message: `{"text":"hi"}`, Actions: []WireAction{}},
		},
		{
			name: "non-object elements become unknown",
			raw:  `{"actions":["lock_university",5]}`,
			want: Interpretation{Actions: []WireAction{
				{Type: TypeUnknown, Payload: map[string]any{}},
				{Type: TypeUnknown, Payload: map[string]any{}},
			}},
		},
		{
			name: "null element dropped",
			raw:  `{"actions":[null,{"type":"shortlist_university","payload":{"university_id":3}}]}`,
			want: Interpretation{Actions: []WireAction{
				{Type: "shortlist_university", Payload: map[string]any{"university_id": float64(3)}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.raw)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Interpret() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
