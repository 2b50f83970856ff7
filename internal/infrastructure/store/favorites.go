package store

import (
	"context"
	"encoding/json"
	"sort"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// FavoriteStore 以 hash 保存使用者收藏：欄位是文件 ID，值是原始食譜 JSON
type FavoriteStore struct {
	client *redis.Client
}

func NewFavoriteStore(client *redis.Client) *FavoriteStore {
	return &FavoriteStore{client: client}
}

// ListFavorites 回傳所有收藏，並把文件 ID 注入 "_id" 欄位。
// 單筆解析失敗只記警告不中斷整體列表。
func (s *FavoriteStore) ListFavorites(ctx context.Context, uid string) ([]map[string]interface{}, error) {
	entries, err := s.client.HGetAll(ctx, favoritesKey(uid)).Result()
	if err != nil {
		return nil, common.WrapError(common.ErrUpstream, err)
	}
	return decodeFavorites(uid, entries), nil
}

// decodeFavorites 將 hash 內容轉成收藏列表。
// hash 迭代順序每次都不同，先對文件 ID 排序讓重複請求得到同樣的順序。
func decodeFavorites(uid string, entries map[string]string) []map[string]interface{} {
	ids := make([]string, 0, len(entries))
	for id := range entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	favorites := make([]map[string]interface{}, 0, len(entries))
	for _, id := range ids {
		var record map[string]interface{}
		if err := common.ParseJSONBytes([]byte(entries[id]), &record); err != nil {
			common.LogWarn("收藏紀錄格式異常，跳過",
				zap.String("uid", uid),
				zap.String("favorite_id", id),
				zap.Error(err),
			)
			continue
		}
		record["_id"] = id
		favorites = append(favorites, record)
	}
	return favorites
}

// AddFavorite 寫入一筆收藏並回傳文件 ID。
// ID 取自 url 或名稱的正規化雜湊，兩者皆缺時隨機生成。
func (s *FavoriteStore) AddFavorite(ctx context.Context, uid string, record map[string]interface{}) (string, error) {
	source, _ := record["url"].(string)
	if source == "" {
		source, _ = record["recipe_name"].(string)
	}
	if source == "" {
		source, _ = record["name"].(string)
	}

	id := mealplan.CanonicalID(source)
	if id == "" {
		id = uuid.New().String()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", common.WrapError(common.ErrInvalidItem, err)
	}
	if err := s.client.HSet(ctx, favoritesKey(uid), id, payload).Err(); err != nil {
		return "", common.WrapError(common.ErrUpstream, err)
	}
	return id, nil
}

// RemoveFavorite 依文件 ID 刪除收藏
func (s *FavoriteStore) RemoveFavorite(ctx context.Context, uid string, favoriteID string) error {
	removed, err := s.client.HDel(ctx, favoritesKey(uid), favoriteID).Result()
	if err != nil {
		return common.WrapError(common.ErrUpstream, err)
	}
	if removed == 0 {
		return common.ErrNotFound
	}
	return nil
}

// RemoveFavoriteByURL 依來源網址刪除收藏，網址先轉成文件 ID 再刪
func (s *FavoriteStore) RemoveFavoriteByURL(ctx context.Context, uid string, url string) error {
	id := mealplan.CanonicalID(url)
	if id == "" {
		return common.ErrInvalidRequest
	}
	return s.RemoveFavorite(ctx, uid, id)
}
