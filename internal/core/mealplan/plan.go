package mealplan

import (
	"context"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// GeneratePlan 產生整週菜單格：收藏優先、型錄遞補，
// 洗牌後依固定的日與餐順序逐格填入。
// 候選不足 21 個時以重複取樣補齊（只有型錄枯竭時才會出現重複）。
func (s *Service) GeneratePlan(ctx context.Context, uid string) (PlanGrid, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}

	pool, err := s.buildPool(ctx, uid, profile.Macros, PlanSlots, nil)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, common.ErrEmptyPool
	}

	s.mu.Lock()
	for len(pool) < PlanSlots {
		pool = append(pool, pool[s.rng.Intn(len(pool))])
	}
	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	s.mu.Unlock()

	grid := make(PlanGrid, len(Days))
	idx := 0
	for _, day := range Days {
		grid[day] = make(map[string]*Recipe, len(Meals))
		for _, meal := range Meals {
			// 取模是防禦性的，步驟補齊後不應觸發
			grid[day][meal] = pool[idx%len(pool)]
			idx++
		}
	}
	return grid, nil
}

// CurrentPlan 取得本週菜單。儲存的 week_start 與本週不符時重生並覆寫；
// 完全沒有菜單時回傳 common.ErrPlanNotFound，由呼叫端決定是否產生。
func (s *Service) CurrentPlan(ctx context.Context, uid string) (*PlanDocument, error) {
	doc, err := s.plans.GetPlan(ctx, uid)
	if err != nil {
		return nil, err
	}
	if doc.WeekStart == CurrentWeekStart(s.now()) {
		return doc, nil
	}
	return s.RegeneratePlan(ctx, uid)
}

// RegeneratePlan 重新產生整份菜單並覆寫儲存
func (s *Service) RegeneratePlan(ctx context.Context, uid string) (*PlanDocument, error) {
	grid, err := s.GeneratePlan(ctx, uid)
	if err != nil {
		return nil, err
	}

	doc := &PlanDocument{
		WeekStart: CurrentWeekStart(s.now()),
		Plan:      grid,
	}
	if err := s.plans.PutPlan(ctx, uid, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// SavePlan 儲存呼叫端提供的菜單格（手動編輯），week_start 設為本週
func (s *Service) SavePlan(ctx context.Context, uid string, grid PlanGrid) (*PlanDocument, error) {
	doc := &PlanDocument{
		WeekStart: CurrentWeekStart(s.now()),
		Plan:      grid,
	}
	if err := s.plans.PutPlan(ctx, uid, doc); err != nil {
		return nil, err
	}
	return doc, nil
}
