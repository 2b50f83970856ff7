package search

import (
	"testing"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
)

func boolClause(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	query, ok := body["query"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing query clause in %v", body)
	}
	clause, ok := query["bool"].(map[string]interface{})
	if !ok {
		t.Fatalf("missing bool clause in %v", query)
	}
	return clause
}

func TestInteractiveQueryFullText(t *testing.T) {
	body := InteractiveQuery(InteractiveParams{Query: "chicken soup"})
	clause := boolClause(t, body)

	must := clause["must"].([]interface{})
	if len(must) != 1 {
		t.Fatalf("must has %d clauses, want 1", len(must))
	}
	mm, ok := must[0].(map[string]interface{})["multi_match"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected multi_match, got %v", must[0])
	}
	if mm["query"] != "chicken soup" {
		t.Errorf("query = %v", mm["query"])
	}
	if mm["fuzziness"] != "AUTO" {
		t.Errorf("fuzziness = %v, want AUTO", mm["fuzziness"])
	}
}

func TestInteractiveQueryEmptyMatchesAll(t *testing.T) {
	clause := boolClause(t, InteractiveQuery(InteractiveParams{}))
	must := clause["must"].([]interface{})
	if _, ok := must[0].(map[string]interface{})["match_all"]; !ok {
		t.Fatalf("empty query should fall back to match_all, got %v", must[0])
	}
}

func TestInteractiveQueryAllergenExpansion(t *testing.T) {
	clause := boolClause(t, InteractiveQuery(InteractiveParams{
		Exclude: []string{"dairy", "anchovies"},
	}))
	mustNot := clause["must_not"].([]interface{})

	// dairy 展開成類別食材清單，未知詞彙按字面排除
	if len(mustNot) != len(AllergenMap["dairy"])+1 {
		t.Fatalf("must_not has %d clauses, want %d", len(mustNot), len(AllergenMap["dairy"])+1)
	}
	found := false
	for _, c := range mustNot {
		match := c.(map[string]interface{})["match"].(map[string]interface{})
		if match["ingredients"] == "anchovies" {
			found = true
		}
	}
	if !found {
		t.Error("literal exclusion term missing from must_not")
	}
}

func TestInteractiveQueryRangeFilters(t *testing.T) {
	minProtein := 20.0
	maxCalories := 800.0
	clause := boolClause(t, InteractiveQuery(InteractiveParams{
		MinProtein:  &minProtein,
		MaxCalories: &maxCalories,
	}))
	filters := clause["filter"].([]interface{})
	if len(filters) != 2 {
		t.Fatalf("filter has %d clauses, want 2", len(filters))
	}
	first := filters[0].(map[string]interface{})["range"].(map[string]interface{})
	bounds, ok := first["protein_grams"].(map[string]interface{})
	if !ok {
		t.Fatalf("first filter should be protein_grams, got %v", first)
	}
	if bounds["gte"] != 20.0 {
		t.Errorf("protein gte = %v, want 20", bounds["gte"])
	}
}

func TestTargetProximityQuery(t *testing.T) {
	targets := mealplan.SlotTargets{Calories: 666, Protein: 17, Carbs: 100, Fat: 23}
	body := TargetProximityQuery(targets, 30)

	if body["size"] != 30 {
		t.Fatalf("size = %v, want 30", body["size"])
	}

	fs := body["query"].(map[string]interface{})["function_score"].(map[string]interface{})
	if fs["score_mode"] != "multiply" || fs["boost_mode"] != "multiply" {
		t.Errorf("score/boost mode = %v/%v, want multiply", fs["score_mode"], fs["boost_mode"])
	}

	functions := fs["functions"].([]interface{})
	if len(functions) != 4 {
		t.Fatalf("got %d decay functions, want 4", len(functions))
	}

	wantScales := map[string]float64{
		"calories":      100,
		"protein_grams": 10,
		"carbs_grams":   20,
		"fat_grams":     10,
	}
	for _, fn := range functions {
		gauss := fn.(map[string]interface{})["gauss"].(map[string]interface{})
		for field, raw := range gauss {
			params := raw.(map[string]interface{})
			scale, ok := wantScales[field]
			if !ok {
				t.Fatalf("unexpected decay field %q", field)
			}
			if params["scale"] != scale {
				t.Errorf("%s scale = %v, want %v", field, params["scale"], scale)
			}
			delete(wantScales, field)
		}
	}
	if len(wantScales) != 0 {
		t.Fatalf("missing decay fields: %v", wantScales)
	}
}
