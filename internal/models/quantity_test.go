package models

import (
	"encoding/json"
	"testing"
)

func TestQuantity_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{"number", `{"quantity": 5}`, 5},
		{"numeric string", `{"quantity": "12"}`, 12},
		{"float", `{"quantity": 3.7}`, 3},
		{"null", `{"quantity": null}`, 0},
		{"empty string", `{"quantity": ""}`, 0},
		{"garbage", `{"quantity": "lots"}`, 0},
		{"absent", `{}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r Request
			if err := json.Unmarshal([]byte(tt.in), &r); err != nil {
				t.Fatalf("decode must never fail: %v", err)
			}
			if r.Quantity.Int() != tt.want {
				t.Errorf("got %d, want %d", r.Quantity.Int(), tt.want)
			}
		})
	}
}

func TestQuantity_MarshalsAsNumber(t *testing.T) {
	data, err := json.Marshal(Request{ID: "r1", Quantity: 4})
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	if q, ok := raw["quantity"].(float64); !ok || q != 4 {
		t.Errorf("quantity should marshal as a plain number, got %v", raw["quantity"])
	}
}
