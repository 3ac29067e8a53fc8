package clipdex

import (
	"encoding/json"
	"testing"
)

func TestItem_String(t *testing.T) {
	it := Item{
		"id":      "7",
		"frame":   float64(120),
		"score":   0.25,
		"flag":    true,
		"nothing": nil,
		"loc":     map[string]any{"movie": "m"},
	}

	tests := []struct {
		key, want string
	}{
		{"id", "7"},
		{"frame", "120"},
		{"score", "0.25"},
		{"flag", "true"},
		{"nothing", ""},
		{"missing", ""},
		{"loc", "map[movie:m]"},
	}
	for _, tc := range tests {
		if got := it.String(tc.key); got != tc.want {
			t.Errorf("String(%q) = %q, want %q", tc.key, got, tc.want)
		}
	}
}

func TestResults_Decode(t *testing.T) {
	res := Results{
		{"id": "1", "caption": "a dog", "location": map[string]any{"movie": "trailer_01", "frame_pos": float64(120)}},
		{"id": "2", "caption": "a car"},
	}

	type entry struct {
		ID       string `json:"id"`
		Caption  string `json:"caption"`
		Location struct {
			Movie    string `json:"movie"`
			FramePos int    `json:"frame_pos"`
		} `json:"location"`
	}
	var out []entry
	if err := res.Decode(&out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(out) != 2 || out[0].Location.FramePos != 120 || out[1].Caption != "a car" {
		t.Errorf("decoded = %+v", out)
	}

	var wrong []int
	if err := res.Decode(&wrong); err == nil {
		t.Error("expected error decoding objects into ints")
	}
}

func TestTextQuery_MarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		q    TextQuery
		want string
	}{
		{"nil subquery", TextQuery{Query: "cats", Embedding: true}, `{"subquery":"","query":"cats","embedding":true}`},
		{"narrowed", TextQuery{Query: "dog", SubQuery: Results{{"id": "3"}, {"id": "1"}}},
			`{"subquery":[{"id":"3"},{"id":"1"}],"query":"dog","embedding":false}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := json.Marshal(tc.q)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(raw) != tc.want {
				t.Errorf("json = %s, want %s", raw, tc.want)
			}
		})
	}
}
