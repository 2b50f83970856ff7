package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// UserStore 管理使用者偏好檔文件
type UserStore struct {
	client *redis.Client
}

func NewUserStore(client *redis.Client) *UserStore {
	return &UserStore{client: client}
}

// GetProfile 讀取使用者文件並抽出巨量營養素欄位。
// 文件不存在視為使用者不存在。
func (s *UserStore) GetProfile(ctx context.Context, uid string) (*mealplan.Profile, error) {
	doc, err := s.GetUserDoc(ctx, uid)
	if err != nil {
		return nil, err
	}

	profile := &mealplan.Profile{UID: uid, Attrs: doc}
	if macros, ok := doc["macros"].(map[string]interface{}); ok {
		profile.Macros = macros
	}
	return profile, nil
}

// GetUserDoc 讀取整份使用者文件
func (s *UserStore) GetUserDoc(ctx context.Context, uid string) (map[string]interface{}, error) {
	raw, err := s.client.Get(ctx, userKey(uid)).Bytes()
	if err == redis.Nil {
		return nil, common.ErrUserNotFound
	}
	if err != nil {
		return nil, common.WrapError(common.ErrUpstream, err)
	}

	var doc map[string]interface{}
	if err := common.ParseJSONBytes(raw, &doc); err != nil {
		return nil, common.WrapError(common.ErrUpstream, err)
	}
	return doc, nil
}

// SetMacros 覆寫使用者文件的 macros 欄位，文件不存在時新建
func (s *UserStore) SetMacros(ctx context.Context, uid string, macros map[string]interface{}) error {
	doc, err := s.GetUserDoc(ctx, uid)
	if err != nil {
		if !errors.Is(err, common.ErrUserNotFound) {
			return err
		}
		doc = map[string]interface{}{}
	}
	doc["macros"] = macros

	payload, err := json.Marshal(doc)
	if err != nil {
		return common.WrapError(common.ErrUpstream, err)
	}
	if err := s.client.Set(ctx, userKey(uid), payload, 0).Err(); err != nil {
		return common.WrapError(common.ErrUpstream, err)
	}
	return nil
}
