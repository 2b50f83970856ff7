package mealplan

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// DefaultRecommendationSize 單次推薦的預設筆數
const DefaultRecommendationSize = 10

// PreferenceStore 使用者偏好檔（營養目標）的外部儲存
type PreferenceStore interface {
	// GetProfile 取得偏好檔；不存在時回傳 common.ErrUserNotFound
	GetProfile(ctx context.Context, uid string) (*Profile, error)
}

// FavoriteStore 使用者收藏的外部儲存，記錄以收藏時的原始格式保存
type FavoriteStore interface {
	// ListFavorites 回傳原始收藏記錄，文件 ID 放在 "_id" 欄位
	ListFavorites(ctx context.Context, uid string) ([]map[string]interface{}, error)
}

// CatalogSearcher 型錄搜尋引擎；排序機制對核心而言是黑盒
type CatalogSearcher interface {
	// TargetProximity 依單餐營養目標做鄰近度排序，回傳原始命中記錄
	TargetProximity(ctx context.Context, targets SlotTargets, size int) ([]map[string]interface{}, error)
}

// PlanStore 整份菜單文件的外部儲存，寫入為全文件覆寫
type PlanStore interface {
	// GetPlan 取得菜單；不存在回傳 common.ErrPlanNotFound，
	// 格式無法解析回傳 common.ErrMalformedPlan
	GetPlan(ctx context.Context, uid string) (*PlanDocument, error)
	PutPlan(ctx context.Context, uid string, doc *PlanDocument) error
}

// Service 菜單推薦與組裝核心。所有狀態都在外部儲存，
// 這裡只透過注入的介面存取，不持有全域服務把手。
type Service struct {
	profiles  PreferenceStore
	favorites FavoriteStore
	catalog   CatalogSearcher
	plans     PlanStore

	now func() time.Time

	mu  sync.Mutex // 保護 rng
	rng *rand.Rand
}

// NewService 建立菜單服務；rng 為 nil 時以目前時間做種
func NewService(profiles PreferenceStore, favorites FavoriteStore, catalog CatalogSearcher, plans PlanStore, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		profiles:  profiles,
		favorites: favorites,
		catalog:   catalog,
		plans:     plans,
		now:       time.Now,
		rng:       rng,
	}
}

// Recommend 依使用者目前的營養目標回傳前 size 名型錄食譜
func (s *Service) Recommend(ctx context.Context, uid string, size int) ([]*Recipe, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if err != nil {
		return nil, err
	}
	if len(profile.Macros) == 0 {
		return nil, common.ErrNoMacroData
	}

	targets, err := PerSlotTargets(profile.Macros, MealsPerDay)
	if err != nil {
		return nil, err
	}

	if size <= 0 {
		size = DefaultRecommendationSize
	}

	// 單次推薦不吞型錄錯誤，直接回報給呼叫端
	hits, err := s.catalog.TargetProximity(ctx, targets, size)
	if err != nil {
		return nil, err
	}

	results := make([]*Recipe, 0, len(hits))
	for _, hit := range hits {
		if r := Normalize(hit, ""); r != nil {
			results = append(results, r)
		}
	}
	return results, nil
}

// lenientMacros 取得使用者營養目標；沒有偏好檔時回傳 nil（後續走預設值）
func (s *Service) lenientMacros(ctx context.Context, uid string) (map[string]interface{}, error) {
	profile, err := s.profiles.GetProfile(ctx, uid)
	if errors.Is(err, common.ErrUserNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile.Macros, nil
}
