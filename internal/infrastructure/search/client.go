package search

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/ahmed-mgd/gaga-recipes/internal/core/mealplan"
	"github.com/ahmed-mgd/gaga-recipes/internal/infrastructure/config"
	"github.com/ahmed-mgd/gaga-recipes/internal/pkg/common"
)

// Client Elasticsearch REST 客戶端
type Client struct {
	http  *resty.Client
	index string
}

// NewClient 創建型錄搜尋客戶端
func NewClient(cfg *config.ElasticsearchConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")

	if cfg.APIKey != "" {
		client.SetHeader("Authorization", fmt.Sprintf("ApiKey %s", cfg.APIKey))
	}

	return &Client{
		http:  client,
		index: cfg.Index,
	}
}

// esResponse 只取用得到的欄位，其餘響應內容忽略
type esResponse struct {
	Hits struct {
		Hits []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search 送出查詢並回傳命中記錄的 _source 清單。
// 連線或狀態碼異常一律包成 UPSTREAM_UNAVAILABLE，由呼叫端決定重試。
func (c *Client) Search(ctx context.Context, body map[string]interface{}) ([]map[string]interface{}, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("/%s/_search", c.index))

	if err != nil {
		common.LogError("Failed to reach Elasticsearch",
			zap.Error(err),
			zap.String("index", c.index),
		)
		return nil, common.WrapError(common.ErrUpstream, fmt.Errorf("elasticsearch request failed: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		common.LogError("Elasticsearch returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("index", c.index),
			zap.String("response", resp.String()),
		)
		return nil, common.WrapError(common.ErrUpstream, fmt.Errorf("elasticsearch error (status %d)", resp.StatusCode()))
	}

	var parsed esResponse
	if err := common.ParseJSONBytes(resp.Body(), &parsed); err != nil {
		return nil, common.WrapError(common.ErrUpstream, fmt.Errorf("failed to parse elasticsearch response: %w", err))
	}

	sources := make([]map[string]interface{}, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		sources = append(sources, hit.Source)
	}

	common.LogDebug("型錄搜尋完成",
		zap.Int("hits", len(sources)),
		zap.String("index", c.index),
	)
	return sources, nil
}

// TargetProximity 實作 mealplan.CatalogSearcher
func (c *Client) TargetProximity(ctx context.Context, targets mealplan.SlotTargets, size int) ([]map[string]interface{}, error) {
	return c.Search(ctx, TargetProximityQuery(targets, size))
}

// Ping 檢查搜尋引擎連線
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/")
	if err != nil {
		return common.WrapError(common.ErrUpstream, fmt.Errorf("elasticsearch ping failed: %w", err))
	}
	if resp.StatusCode() != http.StatusOK {
		return common.WrapError(common.ErrUpstream, fmt.Errorf("elasticsearch ping returned status %d", resp.StatusCode()))
	}
	return nil
}
