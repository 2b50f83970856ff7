package mealplan

import (
	"context"
	"errors"
	"strings"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// findKeyFold 在既有鍵中做去空白、不分大小寫的比對
func findKeyFold[V any](m map[string]V, want string) (string, bool) {
	want = strings.TrimSpace(want)
	for key := range m {
		if strings.EqualFold(strings.TrimSpace(key), want) {
			return key, true
		}
	}
	return "", false
}

// canonicalKey 在固定清單中找不分大小寫的對應；沒有就退回首字大寫的字面值，
// 允許臨時的日／餐標籤但優先沿用既有寫法
func canonicalKey(canonical []string, want string) string {
	want = strings.TrimSpace(want)
	for _, key := range canonical {
		if strings.EqualFold(key, want) {
			return key
		}
	}
	return titleCase(want)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	lower := strings.ToLower(s)
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// UpsertSlot 新增或取代菜單中單一格的食譜，回傳更新後的整份文件。
// 沒有菜單時從全空的 21 格開始；儲存格式異常時重建空格繼續（自我修復）。
// 寫入為全文件覆寫，week_start 保留原值。
func (s *Service) UpsertSlot(ctx context.Context, uid, day, meal string, raw map[string]interface{}) (*PlanDocument, error) {
	doc, err := s.plans.GetPlan(ctx, uid)
	switch {
	case err == nil:
	case errors.Is(err, common.ErrPlanNotFound), errors.Is(err, common.ErrMalformedPlan):
		doc = &PlanDocument{
			WeekStart: CurrentWeekStart(s.now()),
			Plan:      NewEmptyGrid(),
		}
	default:
		return nil, err
	}

	if doc.Plan == nil {
		doc.Plan = NewEmptyGrid()
	}
	if doc.WeekStart == "" {
		doc.WeekStart = CurrentWeekStart(s.now())
	}

	dayKey, ok := findKeyFold(doc.Plan, day)
	if !ok {
		dayKey = canonicalKey(Days, day)
	}
	if doc.Plan[dayKey] == nil {
		doc.Plan[dayKey] = emptyDay()
	}

	block := doc.Plan[dayKey]
	mealKey, ok := findKeyFold(block, meal)
	if !ok {
		mealKey = canonicalKey(Meals, meal)
	}

	item := Normalize(raw, stringValue(raw["id"]))
	if item == nil {
		return nil, common.ErrInvalidItem
	}

	block[mealKey] = item
	if err := s.plans.PutPlan(ctx, uid, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// ClearSlot 清空菜單中的單一格。與 UpsertSlot 不同，這裡不做自我修復：
// 沒有菜單或格式異常時直接回報，靜默重建會吞掉呼叫端想編輯的內容。
func (s *Service) ClearSlot(ctx context.Context, uid, day, meal string) (*PlanDocument, error) {
	doc, err := s.plans.GetPlan(ctx, uid)
	if err != nil {
		return nil, err
	}

	dayKey, ok := findKeyFold(doc.Plan, day)
	if !ok {
		return nil, common.ErrSlotNotFound
	}
	block := doc.Plan[dayKey]
	if block == nil {
		return nil, common.ErrSlotNotFound
	}
	mealKey, ok := findKeyFold(block, meal)
	if !ok {
		return nil, common.ErrSlotNotFound
	}

	block[mealKey] = nil
	if err := s.plans.PutPlan(ctx, uid, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SuggestReplacements 為單一格建議至多 3 個替換食譜：收藏優先、型錄遞補，
// 並排除同一天已排入的食譜，避免把已在菜單上的項目建議成自己的替代品。
// 找不到足夠的建議不是錯誤。meal 參數保留給介面對稱，排除範圍是整天。
func (s *Service) SuggestReplacements(ctx context.Context, uid, day, meal string) ([]*Recipe, error) {
	used := make(map[string]bool)

	doc, err := s.plans.GetPlan(ctx, uid)
	switch {
	case err == nil:
		if dayKey, ok := findKeyFold(doc.Plan, day); ok {
			for _, r := range doc.Plan[dayKey] {
				if r != nil && r.ID != "" {
					used[r.ID] = true
				}
			}
		}
	case errors.Is(err, common.ErrPlanNotFound):
		// 尚無菜單，沒有需要排除的項目
	default:
		return nil, err
	}

	favorites, err := s.favoriteRecipes(ctx, uid)
	if err != nil {
		return nil, err
	}

	suggestions := make([]*Recipe, 0, 3)
	seen := make(map[string]bool)
	for _, fav := range favorites {
		if fav.ID == "" || used[fav.ID] || seen[fav.ID] {
			continue
		}
		suggestions = append(suggestions, fav)
		seen[fav.ID] = true
		if len(suggestions) >= 3 {
			return suggestions, nil
		}
	}

	macros, err := s.lenientMacros(ctx, uid)
	if err != nil {
		return nil, err
	}

	exclude := make(map[string]bool, len(used)+len(seen))
	for id := range used {
		exclude[id] = true
	}
	for id := range seen {
		exclude[id] = true
	}

	fallbacks, err := s.fallbackRecipes(ctx, macros, 3-len(suggestions), exclude)
	if err != nil {
		return nil, err
	}
	for _, fb := range fallbacks {
		if fb.ID == "" || seen[fb.ID] {
			continue
		}
		suggestions = append(suggestions, fb)
		seen[fb.ID] = true
		if len(suggestions) >= 3 {
			break
		}
	}
	return suggestions, nil
}
