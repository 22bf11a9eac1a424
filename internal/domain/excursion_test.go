package domain

import (
	"encoding/json"
	"testing"
)

func TestTextUnmarshal(t *testing.T) {
	testCases := []struct {
		input    string
		expected Text
	}{
		{`"3500 руб"`, "3500 руб"},
		{`null`, ""},
		{`3500`, "3500"},
		{`12.5`, "12.5"},
		{`true`, "true"},
		{`{"a": 1}`, ""},
		{`["x"]`, ""},
	}

	for _, tc := range testCases {
		var got Text
		if err := json.Unmarshal([]byte(tc.input), &got); err != nil {
			t.Errorf("Unmarshal(%s) returned error: %v", tc.input, err)
			continue
		}
		if got != tc.expected {
			t.Errorf("Unmarshal(%s) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestRawExcursionMissingFields(t *testing.T) {
	var raw RawExcursion
	if err := json.Unmarshal([]byte(`{"title": "Гагра", "price": null, "images": null}`), &raw); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if raw.Title != "Гагра" {
		t.Errorf("Expected Title to be 'Гагра', got %q", raw.Title)
	}
	if raw.Price != "" {
		t.Errorf("Expected empty Price, got %q", raw.Price)
	}
	if raw.Images != nil {
		t.Errorf("Expected nil Images, got %v", raw.Images)
	}
	if raw.Content != nil {
		t.Errorf("Expected nil Content, got %v", raw.Content)
	}
}

func TestCategoryValid(t *testing.T) {
	testCases := []struct {
		input    Category
		expected bool
	}{
		{CategorySochi, true},
		{CategoryAbkhazia, true},
		{"", false},
		{"all", false},
	}

	for _, tc := range testCases {
		if got := tc.input.Valid(); got != tc.expected {
			t.Errorf("Category(%q).Valid() = %v, want %v", tc.input, got, tc.expected)
		}
	}
}

func TestContentIsEmpty(t *testing.T) {
	if !(Content{}).IsEmpty() {
		t.Error("Expected zero Content to be empty")
	}
	if (Content{Paragraphs: []string{"Маршрут"}}).IsEmpty() {
		t.Error("Expected Content with a paragraph not to be empty")
	}
}

func TestNestedRecordsAreTolerant(t *testing.T) {
	input := `{
		"title": "Озеро Рица",
		"images": [
			{"url": "https://hostaotdykh.ru/a.jpg", "is_main": 1},
			{"url": "https://hostaotdykh.ru/b.jpg", "is_main": "false"},
			"https://hostaotdykh.ru/c.jpg"
		],
		"pickup_points": [{"location": "Адлер", "price": 2500, "child_age": null}],
		"additional_costs": [{"price": 500, "description": "обед"}, null]
	}`

	var r RawExcursion
	if err := json.Unmarshal([]byte(input), &r); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	if len(r.Images) != 3 {
		t.Fatalf("got %d images, want 3", len(r.Images))
	}
	if !r.Images[0].IsMain || r.Images[1].IsMain {
		t.Errorf("is_main = %v, %v; want true, false", r.Images[0].IsMain, r.Images[1].IsMain)
	}
	if r.Images[2] != (Image{}) {
		t.Errorf("non-object image = %+v, want zero value", r.Images[2])
	}
	if got := r.PickupPoints[0]; got.Location != "Адлер" || got.Price != "2500" || got.ChildAge != "" {
		t.Errorf("pickup = %+v", got)
	}
	if got := r.AdditionalCosts[0]; got.Price != "500" || got.Description != "обед" {
		t.Errorf("cost = %+v", got)
	}
	if r.AdditionalCosts[1] != (AdditionalCost{}) {
		t.Errorf("null cost = %+v, want zero value", r.AdditionalCosts[1])
	}
}

func TestTextBool(t *testing.T) {
	testCases := []struct {
		input    Text
		expected bool
	}{
		{"true", true}, {"TRUE", true}, {"1", true}, {"2.5", true}, {"yes", true},
		{"false", false}, {"0", false}, {"0.0", false}, {"", false}, {"main", false},
	}
	for _, tc := range testCases {
		if got := tc.input.Bool(); got != tc.expected {
			t.Errorf("Text(%q).Bool() = %v, want %v", tc.input, got, tc.expected)
		}
	}
}
