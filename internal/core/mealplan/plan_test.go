package mealplan

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// 測試替身：四個儲存介面各一個可程式化的假實作

type stubProfiles struct {
	profile *Profile
	err     error
}

func (s *stubProfiles) GetProfile(ctx context.Context, uid string) (*Profile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.profile, nil
}

type stubFavorites struct {
	records []map[string]interface{}
	err     error
}

func (s *stubFavorites) ListFavorites(ctx context.Context, uid string) ([]map[string]interface{}, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

type stubCatalog struct {
	hits     []map[string]interface{}
	err      error
	lastSize int
}

func (s *stubCatalog) TargetProximity(ctx context.Context, targets SlotTargets, size int) ([]map[string]interface{}, error) {
	s.lastSize = size
	if s.err != nil {
		return nil, s.err
	}
	if len(s.hits) > size {
		return s.hits[:size], nil
	}
	return s.hits, nil
}

type stubPlans struct {
	doc    *PlanDocument
	getErr error
	putErr error
	puts   int
}

func (s *stubPlans) GetPlan(ctx context.Context, uid string) (*PlanDocument, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.doc, nil
}

func (s *stubPlans) PutPlan(ctx context.Context, uid string, doc *PlanDocument) error {
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.doc = doc
	return nil
}

func catalogHits(n int) []map[string]interface{} {
	hits := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		hits = append(hits, map[string]interface{}{
			"name":          fmt.Sprintf("Catalog Dish %d", i),
			"url":           fmt.Sprintf("https://example.com/dish/%d", i),
			"calories":      500.0,
			"protein_grams": 20.0,
		})
	}
	return hits
}

func newTestService(profiles PreferenceStore, favorites FavoriteStore, catalog CatalogSearcher, plans PlanStore) *Service {
	svc := NewService(profiles, favorites, catalog, plans, rand.New(rand.NewSource(1)))
	svc.now = func() time.Time {
		// 2025-03-12 是週三，對應的週起點為 2025-03-10
		return time.Date(2025, 3, 12, 10, 0, 0, 0, time.UTC)
	}
	return svc
}

func gridIDs(grid PlanGrid) map[string]int {
	counts := make(map[string]int)
	for _, day := range Days {
		for _, meal := range Meals {
			r := grid[day][meal]
			if r != nil {
				counts[r.ID]++
			}
		}
	}
	return counts
}

func TestGeneratePlanFillsAllSlots(t *testing.T) {
	favorites := &stubFavorites{records: []map[string]interface{}{
		{"_id": "fav-1", "name": "Fav Curry", "calories": 600.0},
		{"_id": "fav-2", "name": "Fav Soup", "calories": 300.0},
	}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1", Macros: map[string]interface{}{"calories": 2100.0}}},
		favorites,
		&stubCatalog{hits: catalogHits(40)},
		&stubPlans{},
	)

	grid, err := svc.GeneratePlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := gridIDs(grid)
	total := 0
	for id, n := range counts {
		total += n
		if n != 1 {
			t.Errorf("recipe %s appears %d times with a full pool", id, n)
		}
	}
	if total != PlanSlots {
		t.Fatalf("filled %d slots, want %d", total, PlanSlots)
	}
	if counts["fav-1"] != 1 || counts["fav-2"] != 1 {
		t.Error("favorites missing from generated plan")
	}
}

func TestGeneratePlanPadsSmallPool(t *testing.T) {
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{hits: catalogHits(5)},
		&stubPlans{},
	)

	grid, err := svc.GeneratePlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := gridIDs(grid)
	if len(counts) != 5 {
		t.Fatalf("expected 5 distinct recipes, got %d", len(counts))
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	if total != PlanSlots {
		t.Fatalf("filled %d slots, want %d", total, PlanSlots)
	}
}

func TestGeneratePlanEmptyPool(t *testing.T) {
	// 沒有收藏且型錄故障：型錄失敗被吞掉，整體以空池失敗
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{err: errors.New("connection refused")},
		&stubPlans{},
	)

	_, err := svc.GeneratePlan(context.Background(), "u1")
	if !errors.Is(err, common.ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestGeneratePlanUnknownUser(t *testing.T) {
	svc := newTestService(
		&stubProfiles{err: common.ErrUserNotFound},
		&stubFavorites{},
		&stubCatalog{},
		&stubPlans{},
	)

	_, err := svc.GeneratePlan(context.Background(), "ghost")
	if !errors.Is(err, common.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestBuildPoolFavoritesFirstAndDeduped(t *testing.T) {
	// 收藏與型錄包含同一道菜（同 URL）時只能出現一次
	sharedURL := "https://example.com/dish/0"
	favorites := &stubFavorites{records: []map[string]interface{}{
		{"_id": CanonicalID(sharedURL), "name": "Catalog Dish 0", "url": sharedURL},
	}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		favorites,
		&stubCatalog{hits: catalogHits(10)},
		&stubPlans{},
	)

	pool, err := svc.BuildPool(context.Background(), "u1", 10, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool) != 10 {
		t.Fatalf("pool size = %d, want 10", len(pool))
	}
	if pool[0].ID != CanonicalID(sharedURL) {
		t.Error("favorite should lead the pool")
	}
	seen := make(map[string]bool)
	for _, r := range pool {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s in pool", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestBuildPoolRespectsExclusions(t *testing.T) {
	excluded := CanonicalID("https://example.com/dish/0")
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{hits: catalogHits(10)},
		&stubPlans{},
	)

	pool, err := svc.BuildPool(context.Background(), "u1", 5, map[string]bool{excluded: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range pool {
		if r.ID == excluded {
			t.Fatal("excluded id made it into the pool")
		}
	}
}

func TestBuildPoolDropsUnidentifiedHits(t *testing.T) {
	// url 與名稱皆缺的命中推不出標準 ID，不可進入候選池
	hits := append([]map[string]interface{}{
		{"calories": 500.0, "protein_grams": 20.0},
	}, catalogHits(3)...)
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{hits: hits},
		&stubPlans{},
	)

	pool, err := svc.BuildPool(context.Background(), "u1", 4, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pool) != 3 {
		t.Fatalf("pool size = %d, want 3 (id-less hit dropped)", len(pool))
	}
	for _, r := range pool {
		if r.ID == "" {
			t.Fatal("id-less recipe made it into the pool")
		}
	}
}

func TestBuildPoolFetchSizeCapped(t *testing.T) {
	catalog := &stubCatalog{hits: catalogHits(100)}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		catalog,
		&stubPlans{},
	)

	if _, err := svc.BuildPool(context.Background(), "u1", 21, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// needed*3 = 63，低於上限
	if catalog.lastSize != 63 {
		t.Errorf("fetch size = %d, want 63", catalog.lastSize)
	}

	if _, err := svc.BuildPool(context.Background(), "u1", 50, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.lastSize != 100 {
		t.Errorf("fetch size = %d, want capped at 100", catalog.lastSize)
	}
}

func TestCurrentPlanFreshReturnsStored(t *testing.T) {
	stored := &PlanDocument{WeekStart: "2025-03-10", Plan: NewEmptyGrid()}
	plans := &stubPlans{doc: stored}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		plans,
	)

	doc, err := svc.CurrentPlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc != stored {
		t.Error("fresh plan should be returned as stored")
	}
	if plans.puts != 0 {
		t.Error("fresh plan must not be rewritten")
	}
}

func TestCurrentPlanStaleRegenerates(t *testing.T) {
	plans := &stubPlans{doc: &PlanDocument{WeekStart: "2025-03-03", Plan: NewEmptyGrid()}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{hits: catalogHits(30)},
		plans,
	)

	doc, err := svc.CurrentPlan(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.WeekStart != "2025-03-10" {
		t.Fatalf("regenerated week_start = %q, want 2025-03-10", doc.WeekStart)
	}
	if plans.puts != 1 {
		t.Fatalf("expected one overwrite, got %d", plans.puts)
	}
}

func TestCurrentPlanMissing(t *testing.T) {
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		&stubPlans{getErr: common.ErrPlanNotFound},
	)

	_, err := svc.CurrentPlan(context.Background(), "u1")
	if !errors.Is(err, common.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestUpsertSlotCreatesPlanWhenMissing(t *testing.T) {
	plans := &stubPlans{getErr: common.ErrPlanNotFound}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		plans,
	)

	doc, err := svc.UpsertSlot(context.Background(), "u1", "monday", "LUNCH", map[string]interface{}{
		"name": "Ramen",
		"url":  "https://example.com/ramen",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.WeekStart != "2025-03-10" {
		t.Fatalf("week_start = %q, want current week", doc.WeekStart)
	}
	item := doc.Plan["Monday"]["Lunch"]
	if item == nil || item.Name != "Ramen" {
		t.Fatalf("slot not written, got %+v", item)
	}
	if plans.puts != 1 {
		t.Fatalf("expected one write, got %d", plans.puts)
	}
}

func TestUpsertSlotReusesExistingKeys(t *testing.T) {
	grid := NewEmptyGrid()
	plans := &stubPlans{doc: &PlanDocument{WeekStart: "2025-03-10", Plan: grid}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		plans,
	)

	doc, err := svc.UpsertSlot(context.Background(), "u1", "TUESDAY", "dinner", map[string]interface{}{
		"name": "Tacos",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(doc.Plan) != len(Days) {
		t.Fatalf("day keys grew to %d, existing key not reused", len(doc.Plan))
	}
	if doc.Plan["Tuesday"]["Dinner"] == nil {
		t.Fatal("existing Tuesday/Dinner slot not updated")
	}
	if doc.WeekStart != "2025-03-10" {
		t.Fatalf("week_start changed to %q", doc.WeekStart)
	}
}

func TestUpsertSlotRejectsEmptyItem(t *testing.T) {
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		&stubPlans{getErr: common.ErrPlanNotFound},
	)

	_, err := svc.UpsertSlot(context.Background(), "u1", "Monday", "Lunch", map[string]interface{}{})
	if !errors.Is(err, common.ErrInvalidItem) {
		t.Fatalf("expected ErrInvalidItem, got %v", err)
	}
}

func TestUpsertSlotHealsMalformedPlan(t *testing.T) {
	plans := &stubPlans{getErr: common.WrapError(common.ErrMalformedPlan, errors.New("bad json"))}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		plans,
	)

	doc, err := svc.UpsertSlot(context.Background(), "u1", "Friday", "Breakfast", map[string]interface{}{
		"name": "Oatmeal",
	})
	if err != nil {
		t.Fatalf("expected self-heal, got %v", err)
	}
	if doc.Plan["Friday"]["Breakfast"] == nil {
		t.Fatal("slot not written into rebuilt plan")
	}
}

func TestClearSlot(t *testing.T) {
	grid := NewEmptyGrid()
	grid["Monday"]["Lunch"] = &Recipe{ID: "r1", Name: "Ramen"}
	plans := &stubPlans{doc: &PlanDocument{WeekStart: "2025-03-10", Plan: grid}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		plans,
	)

	doc, err := svc.ClearSlot(context.Background(), "u1", "monday", "lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Plan["Monday"]["Lunch"] != nil {
		t.Fatal("slot should be cleared")
	}
	if plans.puts != 1 {
		t.Fatalf("expected one write, got %d", plans.puts)
	}
}

func TestClearSlotMissingKeys(t *testing.T) {
	plans := &stubPlans{doc: &PlanDocument{WeekStart: "2025-03-10", Plan: NewEmptyGrid()}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		plans,
	)

	_, err := svc.ClearSlot(context.Background(), "u1", "Funday", "Lunch")
	if !errors.Is(err, common.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound for unknown day, got %v", err)
	}

	_, err = svc.ClearSlot(context.Background(), "u1", "Monday", "Brunch")
	if !errors.Is(err, common.ErrSlotNotFound) {
		t.Fatalf("expected ErrSlotNotFound for unknown meal, got %v", err)
	}
}

func TestClearSlotNoPlan(t *testing.T) {
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{},
		&stubPlans{getErr: common.ErrPlanNotFound},
	)

	_, err := svc.ClearSlot(context.Background(), "u1", "Monday", "Lunch")
	if !errors.Is(err, common.ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}
}

func TestSuggestReplacementsExcludesSameDay(t *testing.T) {
	favURL := "https://example.com/dish/1"
	grid := NewEmptyGrid()
	grid["Monday"]["Breakfast"] = &Recipe{ID: CanonicalID("https://example.com/dish/0")}
	grid["Monday"]["Lunch"] = &Recipe{ID: CanonicalID(favURL)}

	favorites := &stubFavorites{records: []map[string]interface{}{
		// 已排在週一，不可再被建議
		{"_id": CanonicalID(favURL), "name": "Catalog Dish 1", "url": favURL},
		{"_id": "fav-free", "name": "Free Favorite"},
	}}
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		favorites,
		&stubCatalog{hits: catalogHits(10)},
		&stubPlans{doc: &PlanDocument{WeekStart: "2025-03-10", Plan: grid}},
	)

	suggestions, err := svc.SuggestReplacements(context.Background(), "u1", "Monday", "Lunch")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(suggestions) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(suggestions))
	}
	if suggestions[0].ID != "fav-free" {
		t.Error("unused favorite should be suggested first")
	}
	banned := map[string]bool{
		CanonicalID("https://example.com/dish/0"): true,
		CanonicalID(favURL):                       true,
	}
	for _, s := range suggestions {
		if banned[s.ID] {
			t.Fatalf("suggestion %s is already planned on the same day", s.ID)
		}
	}
}

func TestSuggestReplacementsWithoutPlan(t *testing.T) {
	svc := newTestService(
		&stubProfiles{profile: &Profile{UID: "u1"}},
		&stubFavorites{},
		&stubCatalog{hits: catalogHits(2)},
		&stubPlans{getErr: common.ErrPlanNotFound},
	)

	suggestions, err := svc.SuggestReplacements(context.Background(), "u1", "Monday", "Lunch")
	if err != nil {
		t.Fatalf("no plan should not be an error here, got %v", err)
	}
	// 型錄只有兩道菜，湊不滿三個不是錯誤
	if len(suggestions) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(suggestions))
	}
}

func TestRecommend(t *testing.T) {
	t.Run("no macros", func(t *testing.T) {
		svc := newTestService(
			&stubProfiles{profile: &Profile{UID: "u1"}},
			&stubFavorites{},
			&stubCatalog{},
			&stubPlans{},
		)
		_, err := svc.Recommend(context.Background(), "u1", 10)
		if !errors.Is(err, common.ErrNoMacroData) {
			t.Fatalf("expected ErrNoMacroData, got %v", err)
		}
	})

	t.Run("catalog error propagates", func(t *testing.T) {
		svc := newTestService(
			&stubProfiles{profile: &Profile{UID: "u1", Macros: map[string]interface{}{"calories": 2000.0}}},
			&stubFavorites{},
			&stubCatalog{err: errors.New("es down")},
			&stubPlans{},
		)
		_, err := svc.Recommend(context.Background(), "u1", 10)
		if err == nil {
			t.Fatal("expected catalog error to propagate")
		}
	})

	t.Run("default size", func(t *testing.T) {
		catalog := &stubCatalog{hits: catalogHits(30)}
		svc := newTestService(
			&stubProfiles{profile: &Profile{UID: "u1", Macros: map[string]interface{}{"calories": 2000.0}}},
			&stubFavorites{},
			catalog,
			&stubPlans{},
		)
		results, err := svc.Recommend(context.Background(), "u1", 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if catalog.lastSize != DefaultRecommendationSize {
			t.Errorf("size = %d, want default %d", catalog.lastSize, DefaultRecommendationSize)
		}
		if len(results) != DefaultRecommendationSize {
			t.Errorf("got %d results, want %d", len(results), DefaultRecommendationSize)
		}
	})
}
