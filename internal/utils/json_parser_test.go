package utils

import (
	"reflect"
	"testing"
)

func TestParseAIJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    map[string]interface{}
		wantErr bool
	}{
		{
			name:  "Pure JSON",
			input: `{"brand": "Bosch", "maxPrice": 600}`,
			want: map[string]interface{}{
				"brand":    "Bosch",
				"maxPrice": float64(600),
			},
		},
		{
			name: "JSON in markdown code block",
			input: "```json\n" +
				`{"type": "front", "minCapacityKg": 8}` + "\n```",
			want: map[string]interface{}{
				"type":          "front",
				"minCapacityKg": float64(8),
			},
		},
		{
			name:  "JSON with surrounding prose",
			input: `Here are the extracted filters: {"maxPrice": 500, "brandFlexible": true} — hope that helps.`,
			want: map[string]interface{}{
				"maxPrice":      float64(500),
				"brandFlexible": true,
			},
		},
		{
			name:  "Trailing comma",
			input: `{"brand": "LG", "type": "top",}`,
			want: map[string]interface{}{
				"brand": "LG",
				"type":  "top",
			},
		},
		{
			name:  "Unquoted keys",
			input: `{brand: "Samsung", maxPrice: 700}`,
			want: map[string]interface{}{
				"brand":    "Samsung",
				"maxPrice": float64(700),
			},
		},
		{
			name:  "Nested braces inside strings",
			input: `{"note": "shape is {boxy}", "type": "front"}`,
			want: map[string]interface{}{
				"note": "shape is {boxy}",
				"type": "front",
			},
		},
		{
			name:    "Empty input",
			input:   "",
			wantErr: true,
		},
		{
			name:    "No JSON at all",
			input:   "sorry, I could not extract anything",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got map[string]interface{}
			err := ParseAIJSON(tt.input, &got)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAIJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseAIJSON() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseAIJSONIntoStruct(t *testing.T) {
	type filter struct {
		Brand    *string  `json:"brand"`
		MaxPrice *float64 `json:"maxPrice"`
	}

	var got filter
	input := "The filters are:\n```json\n{\"brand\": \"Bosch\", \"maxPrice\": 600}\n```"
	if err := ParseAIJSON(input, &got); err != nil {
		t.Fatalf("ParseAIJSON() error = %v", err)
	}
	if got.Brand == nil || *got.Brand != "Bosch" {
		t.Errorf("Brand = %v, want Bosch", got.Brand)
	}
	if got.MaxPrice == nil || *got.MaxPrice != 600 {
		t.Errorf("MaxPrice = %v, want 600", got.MaxPrice)
	}
}
