package store

import (
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// PlanStore 保存使用者的當週菜單文件
type PlanStore struct {
	client *redis.Client
}

func NewPlanStore(client *redis.Client) *PlanStore {
	return &PlanStore{client: client}
}

// GetPlan 讀取菜單文件。鍵不存在回傳 ErrPlanNotFound，
// 內容無法解析成菜單結構回傳 ErrMalformedPlan。
func (s *PlanStore) GetPlan(ctx context.Context, uid string) (*mealplan.PlanDocument, error) {
	raw, err := s.client.Get(ctx, planKey(uid)).Bytes()
	if err == redis.Nil {
		return nil, common.ErrPlanNotFound
	}
	if err != nil {
		return nil, common.WrapError(common.ErrUpstream, err)
	}

	var doc mealplan.PlanDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, common.WrapError(common.ErrMalformedPlan, err)
	}
	return &doc, nil
}

// PutPlan 整份覆寫菜單文件
func (s *PlanStore) PutPlan(ctx context.Context, uid string, doc *mealplan.PlanDocument) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return common.WrapError(common.ErrMalformedPlan, err)
	}
	if err := s.client.Set(ctx, planKey(uid), payload, 0).Err(); err != nil {
		return common.WrapError(common.ErrUpstream, err)
	}
	return nil
}
