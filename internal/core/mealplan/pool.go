package mealplan

import (
	"context"

	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// maxFetchSize 型錄遞補查詢的筆數上限
const maxFetchSize = 100

// favoriteRecipes 讀取使用者收藏並逐筆正規化，文件 ID 即標準 ID
func (s *Service) favoriteRecipes(ctx context.Context, uid string) ([]*Recipe, error) {
	records, err := s.favorites.ListFavorites(ctx, uid)
	if err != nil {
		return nil, err
	}

	favorites := make([]*Recipe, 0, len(records))
	for _, record := range records {
		r := Normalize(record, stringValue(record["_id"]))
		if r != nil {
			favorites = append(favorites, r)
		}
	}
	return favorites, nil
}

// fallbackRecipes 從型錄取得符合營養目標的遞補食譜。
// 多抓 needed*3 筆（上限 100）吸收之後去重的損耗。
// 型錄故障視為零筆遞補並記 warn，讓純收藏的結果仍能成立；
// 這是錯誤傳遞策略裡唯一允許吞掉上游失敗的地方。
func (s *Service) fallbackRecipes(ctx context.Context, macros map[string]interface{}, needed int, exclude map[string]bool) ([]*Recipe, error) {
	if needed <= 0 {
		return nil, nil
	}

	targets, err := PerSlotTargets(macros, MealsPerDay)
	if err != nil {
		return nil, err
	}

	fetch := needed * 3
	if fetch > maxFetchSize {
		fetch = maxFetchSize
	}

	hits, err := s.catalog.TargetProximity(ctx, targets, fetch)
	if err != nil {
		common.LogWarn("型錄搜尋失敗，僅以收藏組菜單",
			zap.Error(err),
			zap.Int("needed", needed),
		)
		return nil, nil
	}

	seen := make(map[string]bool, len(exclude))
	for id := range exclude {
		seen[id] = true
	}

	results := make([]*Recipe, 0, needed)
	for _, hit := range hits {
		source := firstString(hit, "url", "name")
		id := CanonicalID(source)
		// 沒有 url 也沒有名稱的命中無法去重也無法呈現，直接丟棄
		if id == "" || seen[id] {
			continue
		}

		r := Normalize(hit, id)
		if r == nil {
			continue
		}
		results = append(results, r)
		seen[id] = true

		if len(results) >= needed {
			break
		}
	}
	return results, nil
}

// BuildPool 組出候選清單：收藏優先，不足再以型錄遞補，全程以標準 ID 去重。
// 找不到足夠的食譜不是錯誤，回傳實際找到的數量即可。
func (s *Service) BuildPool(ctx context.Context, uid string, needed int, exclude map[string]bool) ([]*Recipe, error) {
	macros, err := s.lenientMacros(ctx, uid)
	if err != nil {
		return nil, err
	}
	return s.buildPool(ctx, uid, macros, needed, exclude)
}

func (s *Service) buildPool(ctx context.Context, uid string, macros map[string]interface{}, needed int, exclude map[string]bool) ([]*Recipe, error) {
	favorites, err := s.favoriteRecipes(ctx, uid)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, needed)
	for id := range exclude {
		seen[id] = true
	}

	pool := make([]*Recipe, 0, needed)
	for _, fav := range favorites {
		if fav.ID == "" || seen[fav.ID] {
			continue
		}
		pool = append(pool, fav)
		seen[fav.ID] = true
	}

	if len(pool) < needed {
		fallbacks, err := s.fallbackRecipes(ctx, macros, needed-len(pool), seen)
		if err != nil {
			return nil, err
		}
		for _, fb := range fallbacks {
			if fb.ID == "" || seen[fb.ID] {
				continue
			}
			pool = append(pool, fb)
			seen[fb.ID] = true
		}
	}
	return pool, nil
}
