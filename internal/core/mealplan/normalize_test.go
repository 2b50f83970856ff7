package mealplan

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestCanonicalID(t *testing.T) {
	t.Run("deterministic", func(t *testing.T) {
		a := CanonicalID("https://example.com/recipes/1")
		b := CanonicalID("https://example.com/recipes/1")
		if a == "" || a != b {
			t.Fatalf("expected stable non-empty id, got %q and %q", a, b)
		}
	})

	t.Run("distinct sources differ", func(t *testing.T) {
		if CanonicalID("pasta") == CanonicalID("pizza") {
			t.Fatal("different sources produced the same id")
		}
	})

	t.Run("empty source", func(t *testing.T) {
		if got := CanonicalID(""); got != "" {
			t.Fatalf("expected empty id for empty source, got %q", got)
		}
	})
}

func TestNormalizeFieldUnions(t *testing.T) {
	catalogRecord := map[string]interface{}{
		"name":          "Greek Salad",
		"url":           "https://example.com/greek-salad",
		"img_src":       "https://img.example.com/greek.jpg",
		"calories":      420.0,
		"protein_grams": 12.0,
		"carbs_grams":   30.0,
		"fat_grams":     28.0,
		"cook_time":     "15 min",
		"servings":      2.0,
		"ingredients":   "feta, olives; cucumber\ntomato",
		"directions":    "Chop everything.\nToss with dressing.",
	}
	favoriteRecord := map[string]interface{}{
		"name":         "Greek Salad",
		"url":          "https://example.com/greek-salad",
		"image":        "https://img.example.com/greek.jpg",
		"calories":     "420",
		"protein":      12,
		"carbs":        30,
		"fat":          28,
		"cookTime":     "15 min",
		"yield":        "2",
		"ingredients":  []interface{}{"feta", "olives", "cucumber", "tomato"},
		"instructions": []interface{}{"Chop everything.", "Toss with dressing."},
	}

	fromCatalog := Normalize(catalogRecord, "")
	fromFavorite := Normalize(favoriteRecord, "")
	if fromCatalog == nil || fromFavorite == nil {
		t.Fatal("expected both records to normalize")
	}

	// 同一道菜從兩個來源進來必須得到同一個 ID
	if fromCatalog.ID != fromFavorite.ID {
		t.Fatalf("cross-source ids differ: %q vs %q", fromCatalog.ID, fromFavorite.ID)
	}
	if fromCatalog.Calories != 420 || fromFavorite.Calories != 420 {
		t.Fatalf("calories mismatch: %v vs %v", fromCatalog.Calories, fromFavorite.Calories)
	}
	if fromCatalog.Protein != fromFavorite.Protein {
		t.Fatalf("protein mismatch: %v vs %v", fromCatalog.Protein, fromFavorite.Protein)
	}
	if fromCatalog.Image != fromFavorite.Image {
		t.Fatalf("image mismatch: %q vs %q", fromCatalog.Image, fromFavorite.Image)
	}
	if fromCatalog.Servings != 2 || fromFavorite.Servings != 2 {
		t.Fatalf("servings mismatch: %d vs %d", fromCatalog.Servings, fromFavorite.Servings)
	}
	wantIngredients := []string{"feta", "olives", "cucumber", "tomato"}
	if !reflect.DeepEqual(fromCatalog.Ingredients, wantIngredients) {
		t.Fatalf("ingredients = %v, want %v", fromCatalog.Ingredients, wantIngredients)
	}
}

func TestNormalizeExplicitIDWins(t *testing.T) {
	r := Normalize(map[string]interface{}{
		"name": "Pad Thai",
		"url":  "https://example.com/pad-thai",
	}, "doc-123")
	if r.ID != "doc-123" {
		t.Fatalf("ID = %q, want explicit doc-123", r.ID)
	}
}

func TestNormalizeEmptyRecord(t *testing.T) {
	if r := Normalize(nil, ""); r != nil {
		t.Fatalf("expected nil for nil record, got %+v", r)
	}
	if r := Normalize(map[string]interface{}{}, "x"); r != nil {
		t.Fatalf("expected nil for empty record, got %+v", r)
	}
}

func TestNormalizePermissiveNumbers(t *testing.T) {
	r := Normalize(map[string]interface{}{
		"name":          "Mystery Stew",
		"calories":      "not a number",
		"protein_grams": json.Number("33.5"),
		"servings":      "zero",
	}, "")
	if r.Calories != 0 {
		t.Fatalf("unparseable calories should become 0, got %v", r.Calories)
	}
	if r.Protein != 33.5 {
		t.Fatalf("protein = %v, want 33.5", r.Protein)
	}
	if r.Servings != 1 {
		t.Fatalf("unparseable servings should fall back to 1, got %d", r.Servings)
	}
	if r.ID != CanonicalID("Mystery Stew") {
		t.Fatal("missing url should fall back to name for id derivation")
	}
	if r.Tags == nil || len(r.Tags) != 0 {
		t.Fatalf("tags should be an empty list, got %v", r.Tags)
	}
}

func TestSplitInstructions(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want []string
	}{
		{
			name: "newline separated",
			in:   "Boil water.\nAdd pasta.\nDrain.",
			want: []string{"Boil water.", "Add pasta.", "Drain."},
		},
		{
			name: "sentence separated",
			in:   "Boil water. Add pasta. Drain",
			want: []string{"Boil water", "Add pasta", "Drain"},
		},
		{
			name: "single block stays whole",
			in:   "Microwave on high",
			want: []string{"Microwave on high"},
		},
		{
			name: "already a list",
			in:   []interface{}{"Step one", "Step two"},
			want: []string{"Step one", "Step two"},
		},
		{
			name: "non-string",
			in:   42,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitInstructions(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("splitInstructions(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitBeforeNumbering(t *testing.T) {
	got := splitBeforeNumbering("1. Mix the dry ingredients 2. Fold in eggs 3. Bake")
	want := []string{"1. Mix the dry ingredients ", "2. Fold in eggs ", "3. Bake"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("splitBeforeNumbering = %q, want %q", got, want)
	}

	if got := splitBeforeNumbering("no markers here"); !reflect.DeepEqual(got, []string{"no markers here"}) {
		t.Fatalf("unmarked text should stay whole, got %q", got)
	}
}
